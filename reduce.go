// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package bufferedmatrix

import (
	"fmt"
	"math"

	"github.com/bmbolstad/bufferedmatrix/internal/heap"
)

// Range is the result of a column or global range reduction.
type Range struct {
	Min float64
	Max float64
}

// forEachColumn visits every column exactly once, handing f a
// rows-length slice of that column's values. In column-mode it first
// visits the columns currently resident in the cache (oldest first),
// then loads the remaining columns in ascending order, so each column
// is read from disk at most once per sweep; in row-mode it walks the
// columns in ascending order through per-cell reads, matching the
// bulk-access contract's row-mode fallback.
func (m *Matrix) forEachColumn(f func(col int, data []float64) error) error {
	if !m.rowsSet {
		return ErrRowsNotSet
	}
	if !m.colMode {
		buf := make([]float64, m.rows)
		for col := 0; col < m.cols; col++ {
			for row := 0; row < m.rows; row++ {
				v, ok := m.getRowMode(row, col)
				if !ok {
					return fmt.Errorf("bufferedmatrix: reduce cell (%d,%d): %w", row, col, ErrOutOfRange)
				}
				buf[row] = v
			}
			if err := f(col, buf); err != nil {
				return err
			}
		}
		return nil
	}
	done := make([]bool, m.cols)
	for _, col := range append([]int(nil), m.cache.Columns()...) {
		buf, _ := m.cache.Locate(col)
		done[col] = true
		if err := f(col, buf); err != nil {
			return err
		}
	}
	for col := 0; col < m.cols; col++ {
		if done[col] {
			continue
		}
		if err := m.loadColumnIntoCache(col); err != nil {
			return err
		}
		buf, _ := m.cache.Locate(col)
		if err := f(col, buf); err != nil {
			return err
		}
	}
	return nil
}

// welford accumulates a running mean and sum-of-squared-deviations
// over a stream of values, per Welford's one-pass algorithm.
type welford struct {
	n    int64
	mean float64
	m2   float64
}

func (w *welford) add(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

func (w *welford) variance() float64 {
	if w.n < 2 {
		return math.NaN()
	}
	return w.m2 / float64(w.n-1)
}

// Min returns the smallest value in the matrix. anyFinite is false
// when the matrix is empty or every cell is NaN/ignored, matching the
// "no finite arguments" diagnostic the binding layer surfaces; the
// returned value is then +Inf (the identity element for min), not NaN,
// so a caller that ignores anyFinite still gets a well-ordered result.
func (m *Matrix) Min(ignoreNA bool) (value float64, anyFinite bool, err error) {
	value = math.Inf(1)
	err = m.forEachColumn(func(_ int, data []float64) error {
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					value, anyFinite = math.NaN(), true
					return errStopReduce
				}
				continue
			}
			anyFinite = true
			if v < value {
				value = v
			}
		}
		return nil
	})
	if err == errStopReduce {
		err = nil
	}
	return value, anyFinite, err
}

// Max is the Min symmetric: the no-finite-arguments sentinel is -Inf.
func (m *Matrix) Max(ignoreNA bool) (value float64, anyFinite bool, err error) {
	value = math.Inf(-1)
	err = m.forEachColumn(func(_ int, data []float64) error {
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					value, anyFinite = math.NaN(), true
					return errStopReduce
				}
				continue
			}
			anyFinite = true
			if v > value {
				value = v
			}
		}
		return nil
	})
	if err == errStopReduce {
		err = nil
	}
	return value, anyFinite, err
}

// errStopReduce is a private sentinel used to short-circuit
// forEachColumn once a NaN has poisoned a non-ignoring reduction; it
// never escapes this file.
var errStopReduce = fmt.Errorf("bufferedmatrix: reduction stopped early")

// Sum adds every cell with straightforward (non-Kahan) accumulation.
// With ignoreNA false, any NaN cell poisons the result to NaN.
func (m *Matrix) Sum(ignoreNA bool) (float64, error) {
	var sum float64
	var sawNaN bool
	err := m.forEachColumn(func(_ int, data []float64) error {
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					sawNaN = true
					return errStopReduce
				}
				continue
			}
			sum += v
		}
		return nil
	})
	if err == errStopReduce {
		err = nil
	}
	if sawNaN {
		return math.NaN(), err
	}
	return sum, err
}

// Mean returns Sum divided by the count of values actually summed.
func (m *Matrix) Mean(ignoreNA bool) (float64, error) {
	var sum float64
	var n int64
	var sawNaN bool
	err := m.forEachColumn(func(_ int, data []float64) error {
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					sawNaN = true
					return errStopReduce
				}
				continue
			}
			sum += v
			n++
		}
		return nil
	})
	if err == errStopReduce {
		err = nil
	}
	if sawNaN || n == 0 {
		return math.NaN(), err
	}
	return sum / float64(n), err
}

// Variance is the sample variance (n-1 denominator), computed with a
// single-pass Welford update to avoid catastrophic cancellation.
func (m *Matrix) Variance(ignoreNA bool) (float64, error) {
	var w welford
	var sawNaN bool
	err := m.forEachColumn(func(_ int, data []float64) error {
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					sawNaN = true
					return errStopReduce
				}
				continue
			}
			w.add(v)
		}
		return nil
	})
	if err == errStopReduce {
		err = nil
	}
	if sawNaN {
		return math.NaN(), err
	}
	return w.variance(), err
}

// compactNonNaN copies the non-NaN elements of data into a reusable
// scratch buffer and returns the used prefix.
func compactNonNaN(data []float64, scratch []float64) []float64 {
	n := 0
	for _, v := range data {
		if !math.IsNaN(v) {
			scratch[n] = v
			n++
		}
	}
	return scratch[:n]
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return heap.NthSmallest(values, n/2)
	}
	lo := heap.NthSmallest(values, n/2-1)
	hi := heap.NthSmallest(values, n/2)
	return (lo + hi) / 2
}

// ColSums returns the sum of each column.
func (m *Matrix) ColSums(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.cols)
	err := m.forEachColumn(func(col int, data []float64) error {
		var sum float64
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					out[col] = math.NaN()
					return nil
				}
				continue
			}
			sum += v
		}
		out[col] = sum
		return nil
	})
	return out, err
}

// ColMeans returns the mean of each column.
func (m *Matrix) ColMeans(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.cols)
	err := m.forEachColumn(func(col int, data []float64) error {
		var sum float64
		var n int
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					out[col] = math.NaN()
					return nil
				}
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			out[col] = math.NaN()
		} else {
			out[col] = sum / float64(n)
		}
		return nil
	})
	return out, err
}

// ColVars returns the sample variance of each column.
func (m *Matrix) ColVars(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.cols)
	err := m.forEachColumn(func(col int, data []float64) error {
		var w welford
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					out[col] = math.NaN()
					return nil
				}
				continue
			}
			w.add(v)
		}
		out[col] = w.variance()
		return nil
	})
	return out, err
}

// ColMax returns the maximum of each column (NaN if every cell in the
// column was NaN/ignored).
func (m *Matrix) ColMax(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.cols)
	err := m.forEachColumn(func(col int, data []float64) error {
		best := math.Inf(-1)
		anyFinite := false
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					out[col] = math.NaN()
					return nil
				}
				continue
			}
			anyFinite = true
			if v > best {
				best = v
			}
		}
		if !anyFinite {
			out[col] = math.NaN()
		} else {
			out[col] = best
		}
		return nil
	})
	return out, err
}

// ColMin is the ColMax symmetric.
func (m *Matrix) ColMin(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.cols)
	err := m.forEachColumn(func(col int, data []float64) error {
		best := math.Inf(1)
		anyFinite := false
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					out[col] = math.NaN()
					return nil
				}
				continue
			}
			anyFinite = true
			if v < best {
				best = v
			}
		}
		if !anyFinite {
			out[col] = math.NaN()
		} else {
			out[col] = best
		}
		return nil
	})
	return out, err
}

// ColMedians returns the median of each column, computed with a
// bounded order-statistic selection over a non-NaN compaction buffer
// rather than a full sort.
func (m *Matrix) ColMedians(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.cols)
	scratch := make([]float64, m.rows)
	err := m.forEachColumn(func(col int, data []float64) error {
		if !ignoreNA {
			for _, v := range data {
				if math.IsNaN(v) {
					out[col] = math.NaN()
					return nil
				}
			}
		}
		out[col] = median(compactNonNaN(data, scratch))
		return nil
	})
	return out, err
}

// ColRanges returns the (min, max) pair of each column.
func (m *Matrix) ColRanges(ignoreNA bool) ([]Range, error) {
	out := make([]Range, m.cols)
	err := m.forEachColumn(func(col int, data []float64) error {
		lo, hi := math.Inf(1), math.Inf(-1)
		anyFinite := false
		for _, v := range data {
			if math.IsNaN(v) {
				if !ignoreNA {
					out[col] = Range{math.NaN(), math.NaN()}
					return nil
				}
				continue
			}
			anyFinite = true
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if !anyFinite {
			out[col] = Range{math.NaN(), math.NaN()}
		} else {
			out[col] = Range{lo, hi}
		}
		return nil
	})
	return out, err
}

// rowAccumulator applies a per-row Welford/sum pass across every
// column in a single forEachColumn sweep, as described for row
// reductions: one full-matrix pass with a length-rows accumulator.
func (m *Matrix) rowAccumulator(visit func(row int, v float64)) error {
	return m.forEachColumn(func(_ int, data []float64) error {
		for row, v := range data {
			visit(row, v)
		}
		return nil
	})
}

// RowSums returns the sum of each row.
func (m *Matrix) RowSums(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.rows)
	poisoned := make([]bool, m.rows)
	err := m.rowAccumulator(func(row int, v float64) {
		if poisoned[row] {
			return
		}
		if math.IsNaN(v) {
			if !ignoreNA {
				poisoned[row] = true
				out[row] = math.NaN()
			}
			return
		}
		out[row] += v
	})
	return out, err
}

// RowMeans returns the mean of each row.
func (m *Matrix) RowMeans(ignoreNA bool) ([]float64, error) {
	sums := make([]float64, m.rows)
	counts := make([]int64, m.rows)
	poisoned := make([]bool, m.rows)
	err := m.rowAccumulator(func(row int, v float64) {
		if poisoned[row] {
			return
		}
		if math.IsNaN(v) {
			if !ignoreNA {
				poisoned[row] = true
			}
			return
		}
		sums[row] += v
		counts[row]++
	})
	out := make([]float64, m.rows)
	for row := range out {
		if poisoned[row] || counts[row] == 0 {
			out[row] = math.NaN()
		} else {
			out[row] = sums[row] / float64(counts[row])
		}
	}
	return out, err
}

// RowVars returns the sample variance of each row.
func (m *Matrix) RowVars(ignoreNA bool) ([]float64, error) {
	ws := make([]welford, m.rows)
	poisoned := make([]bool, m.rows)
	err := m.rowAccumulator(func(row int, v float64) {
		if poisoned[row] {
			return
		}
		if math.IsNaN(v) {
			if !ignoreNA {
				poisoned[row] = true
			}
			return
		}
		ws[row].add(v)
	})
	out := make([]float64, m.rows)
	for row := range out {
		if poisoned[row] {
			out[row] = math.NaN()
		} else {
			out[row] = ws[row].variance()
		}
	}
	return out, err
}

// RowMax returns the maximum of each row.
func (m *Matrix) RowMax(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.rows)
	anyFinite := make([]bool, m.rows)
	poisoned := make([]bool, m.rows)
	for row := range out {
		out[row] = math.Inf(-1)
	}
	err := m.rowAccumulator(func(row int, v float64) {
		if poisoned[row] {
			return
		}
		if math.IsNaN(v) {
			if !ignoreNA {
				poisoned[row] = true
				out[row] = math.NaN()
			}
			return
		}
		anyFinite[row] = true
		if v > out[row] {
			out[row] = v
		}
	})
	for row := range out {
		if !poisoned[row] && !anyFinite[row] {
			out[row] = math.NaN()
		}
	}
	return out, err
}

// RowMin is the RowMax symmetric.
func (m *Matrix) RowMin(ignoreNA bool) ([]float64, error) {
	out := make([]float64, m.rows)
	anyFinite := make([]bool, m.rows)
	poisoned := make([]bool, m.rows)
	for row := range out {
		out[row] = math.Inf(1)
	}
	err := m.rowAccumulator(func(row int, v float64) {
		if poisoned[row] {
			return
		}
		if math.IsNaN(v) {
			if !ignoreNA {
				poisoned[row] = true
				out[row] = math.NaN()
			}
			return
		}
		anyFinite[row] = true
		if v < out[row] {
			out[row] = v
		}
	})
	for row := range out {
		if !poisoned[row] && !anyFinite[row] {
			out[row] = math.NaN()
		}
	}
	return out, err
}

// RowMedians returns the median of each row. In both column-mode and
// row-mode it first materializes a full row-major copy of the matrix
// (rows*cols values) to gather each row's values across every column.
func (m *Matrix) RowMedians(ignoreNA bool) ([]float64, error) {
	if !m.rowsSet {
		return nil, ErrRowsNotSet
	}
	rowsMajor := make([][]float64, m.rows)
	for row := range rowsMajor {
		rowsMajor[row] = make([]float64, 0, m.cols)
	}
	err := m.forEachColumn(func(_ int, data []float64) error {
		for row, v := range data {
			rowsMajor[row] = append(rowsMajor[row], v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]float64, m.rows)
	for row, values := range rowsMajor {
		if !ignoreNA {
			hasNaN := false
			for _, v := range values {
				if math.IsNaN(v) {
					hasNaN = true
					break
				}
			}
			if hasNaN {
				out[row] = math.NaN()
				continue
			}
		}
		scratch := make([]float64, len(values))
		out[row] = median(compactNonNaN(values, scratch))
	}
	return out, nil
}
