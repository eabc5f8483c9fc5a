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
	"math"
	"testing"
)

func newTestMatrix(t *testing.T, maxRows, maxCols int) *Matrix {
	t.Helper()
	m, err := New(Config{
		MaxRows:   maxRows,
		MaxCols:   maxCols,
		Prefix:    "t-",
		Directory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	return m
}

func fillAppend(t *testing.T, m *Matrix, rows, cols int, f func(i, j int) float64) {
	t.Helper()
	if err := m.SetRows(rows); err != nil {
		t.Fatalf("SetRows: %s", err)
	}
	for c := 0; c < cols; c++ {
		if err := m.AppendColumn(); err != nil {
			t.Fatalf("AppendColumn %d: %s", c, err)
		}
	}
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if err := m.Set(r, c, f(r, c)); err != nil {
				t.Fatalf("Set(%d,%d): %s", r, c, err)
			}
		}
	}
}

// Scenario 1: full readback of A[i,j] = i+j.
func TestScenarioReadback(t *testing.T) {
	m := newTestMatrix(t, 5, 3)
	fillAppend(t, m, 5, 5, func(i, j int) float64 { return float64(i + j) })

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			v, ok := m.Get(i, j)
			if !ok {
				t.Fatalf("Get(%d,%d) missing", i, j)
			}
			if want := float64(i + j); v != want {
				t.Fatalf("Get(%d,%d) = %v, want %v", i, j, v, want)
			}
		}
	}
}

// Scenario 2: forced evictions still produce correct col_sums/sum.
func TestScenarioColSumsWithEviction(t *testing.T) {
	m := newTestMatrix(t, 5, 2)
	fillAppend(t, m, 5, 5, func(i, j int) float64 { return float64(i + j) })

	sums, err := m.ColSums(false)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 15, 20, 25, 30}
	for j, v := range sums {
		if v != want[j] {
			t.Fatalf("ColSums()[%d] = %v, want %v", j, v, want[j])
		}
	}
	sum, err := m.Sum(false)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 100 {
		t.Fatalf("Sum() = %v, want 100", sum)
	}
}

// Scenario 3: NaN handling in col_means.
func TestScenarioColMeansWithNaN(t *testing.T) {
	m := newTestMatrix(t, 3, 3)
	if err := m.SetRows(3); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		if err := m.AppendColumn(); err != nil {
			t.Fatal(err)
		}
	}
	cols := [][]float64{
		{1, math.NaN(), 3},
		{math.NaN(), 5, 6},
		{7, 8, 9},
	}
	for c, col := range cols {
		for r, v := range col {
			if err := m.Set(r, c, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	means, err := m.ColMeans(true)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 5.5, 8}
	for j, v := range means {
		if v != want[j] {
			t.Fatalf("ColMeans(true)[%d] = %v, want %v", j, v, want[j])
		}
	}

	means, err = m.ColMeans(false)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(means[0]) || !math.IsNaN(means[1]) || means[2] != 8 {
		t.Fatalf("ColMeans(false) = %v, want {NaN, NaN, 8}", means)
	}
}

// Scenario 4: element-wise apply.
func TestScenarioApply(t *testing.T) {
	m := newTestMatrix(t, 4, 2)
	fillAppend(t, m, 4, 2, func(i, j int) float64 { return float64(j*4 + i + 1) })

	if err := m.Apply(func(x float64) float64 { return x + 1 }); err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{2, 3, 4, 5}, {6, 7, 8, 9}}
	for c := 0; c < 2; c++ {
		for r := 0; r < 4; r++ {
			v, _ := m.Get(r, c)
			if v != want[c][r] {
				t.Fatalf("Get(%d,%d) = %v, want %v", r, c, v, want[c][r])
			}
		}
	}
}

// Scenario 5: read-only blocks mutation, and is reversible.
func TestScenarioReadOnlyToggle(t *testing.T) {
	m := newTestMatrix(t, 2, 2)
	fillAppend(t, m, 2, 2, func(i, j int) float64 { return 0 })

	if err := m.SetReadOnly(true); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 0, 99); err != ErrReadOnly {
		t.Fatalf("Set in read-only = %v, want ErrReadOnly", err)
	}
	if v, _ := m.Get(0, 0); v != 0 {
		t.Fatalf("value changed despite read-only, got %v", v)
	}
	if err := m.SetReadOnly(false); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 0, 99); err != nil {
		t.Fatalf("Set after disabling read-only: %s", err)
	}
	if v, _ := m.Get(0, 0); v != 99 {
		t.Fatalf("Get(0,0) = %v, want 99", v)
	}
}

// Scenario 6: row_sums with forced column-cache evictions.
func TestScenarioRowSumsWithEviction(t *testing.T) {
	m := newTestMatrix(t, 10, 2)
	fillAppend(t, m, 10, 10, func(i, j int) float64 { return float64(j) })

	sums, err := m.RowSums(false)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range sums {
		if v != 45 {
			t.Fatalf("RowSums()[%d] = %v, want 45", i, v)
		}
	}
}

// Cache capacity invariant: never more than min(cols, max_cols)
// distinct columns resident.
func TestCacheCapacityInvariant(t *testing.T) {
	m := newTestMatrix(t, 4, 3)
	fillAppend(t, m, 4, 8, func(i, j int) float64 { return float64(i * j) })
	if got, want := m.cache.Len(), 3; got != want {
		t.Fatalf("cache.Len() = %d, want %d", got, want)
	}
}

// Round-trip: set then get in the same mode returns what was written.
func TestRoundTrip(t *testing.T) {
	m := newTestMatrix(t, 4, 4)
	fillAppend(t, m, 4, 4, func(i, j int) float64 { return 0 })
	if err := m.Set(2, 3, math.NaN()); err != nil {
		t.Fatal(err)
	}
	v, ok := m.Get(2, 3)
	if !ok || !math.IsNaN(v) {
		t.Fatalf("Get(2,3) = (%v, %v), want (NaN, true)", v, ok)
	}
	if err := m.Set(1, 1, 3.5); err != nil {
		t.Fatal(err)
	}
	if v, ok := m.Get(1, 1); !ok || v != 3.5 {
		t.Fatalf("Get(1,1) = (%v, %v), want (3.5, true)", v, ok)
	}
}

// Mode equivalence: row_mode_on -> row_mode_off is a no-op on values.
func TestRowModeRoundTrip(t *testing.T) {
	m := newTestMatrix(t, 4, 2)
	fillAppend(t, m, 8, 4, func(i, j int) float64 { return float64(i*10 + j) })

	if err := m.SetRowMode(true); err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 4; c++ {
			v, ok := m.Get(r, c)
			if !ok || v != float64(r*10+c) {
				t.Fatalf("row-mode Get(%d,%d) = (%v,%v), want %v", r, c, v, ok, r*10+c)
			}
		}
	}
	if err := m.SetRowMode(false); err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 4; c++ {
			v, ok := m.Get(r, c)
			if !ok || v != float64(r*10+c) {
				t.Fatalf("post row-mode Get(%d,%d) = (%v,%v), want %v", r, c, v, ok, r*10+c)
			}
		}
	}
}

// Append zero-fill: new columns read back as 0.0 everywhere.
func TestAppendZeroFill(t *testing.T) {
	m := newTestMatrix(t, 4, 2)
	if err := m.SetRows(4); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendColumn(); err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 4; r++ {
		v, ok := m.Get(r, 0)
		if !ok || v != 0 {
			t.Fatalf("Get(%d,0) = (%v,%v), want (0,true)", r, v, ok)
		}
	}
}

// Copy equivalence.
func TestCopyValues(t *testing.T) {
	src := newTestMatrix(t, 3, 3)
	fillAppend(t, src, 3, 3, func(i, j int) float64 { return float64(i*3 + j) })

	dst := newTestMatrix(t, 3, 3)
	fillAppend(t, dst, 3, 3, func(i, j int) float64 { return 0 })

	if err := CopyValues(dst, src); err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sv, _ := src.Get(r, c)
			dv, _ := dst.Get(r, c)
			if sv != dv {
				t.Fatalf("(%d,%d): src=%v dst=%v", r, c, sv, dv)
			}
		}
	}
}

func TestCopyValuesRejectsDimensionMismatch(t *testing.T) {
	src := newTestMatrix(t, 3, 3)
	fillAppend(t, src, 3, 3, func(i, j int) float64 { return 0 })
	dst := newTestMatrix(t, 2, 2)
	fillAppend(t, dst, 2, 2, func(i, j int) float64 { return 0 })

	if err := CopyValues(dst, src); err != ErrDimensionMismatch {
		t.Fatalf("CopyValues = %v, want ErrDimensionMismatch", err)
	}
}

func TestSetRowsTwiceFails(t *testing.T) {
	m := newTestMatrix(t, 2, 2)
	if err := m.SetRows(2); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRows(3); err != ErrRowsAlreadySet {
		t.Fatalf("second SetRows = %v, want ErrRowsAlreadySet", err)
	}
}

func TestGetOutOfRange(t *testing.T) {
	m := newTestMatrix(t, 2, 2)
	fillAppend(t, m, 2, 2, func(i, j int) float64 { return 0 })
	if _, ok := m.Get(5, 0); ok {
		t.Fatal("expected miss for out-of-range row")
	}
	if _, ok := m.Get(0, 5); ok {
		t.Fatal("expected miss for out-of-range column")
	}
}

func TestFlatIndexRoundTrip(t *testing.T) {
	m := newTestMatrix(t, 3, 3)
	fillAppend(t, m, 3, 3, func(i, j int) float64 { return 0 })
	if err := m.SetFlat(1*3+2, 7); err != nil { // col 1, row 2
		t.Fatal(err)
	}
	v, ok := m.Get(2, 1)
	if !ok || v != 7 {
		t.Fatalf("Get(2,1) = (%v,%v), want (7,true) after SetFlat", v, ok)
	}
	got, ok := m.GetFlat(1*3 + 2)
	if !ok || got != 7 {
		t.Fatalf("GetFlat = (%v,%v), want (7,true)", got, ok)
	}
}

func TestBulkGetColumnsAndRows(t *testing.T) {
	m := newTestMatrix(t, 5, 2)
	fillAppend(t, m, 5, 5, func(i, j int) float64 { return float64(i + j) })

	out := [][]float64{make([]float64, 5), make([]float64, 5)}
	if err := m.GetColumns([]int{1, 3}, out); err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 5; r++ {
		if out[0][r] != float64(r+1) || out[1][r] != float64(r+3) {
			t.Fatalf("GetColumns mismatch at row %d: %v", r, out)
		}
	}

	rowsOut := [][]float64{make([]float64, 5), make([]float64, 5)}
	if err := m.GetRowSet([]int{0, 4}, rowsOut); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 5; c++ {
		if rowsOut[0][c] != float64(c) || rowsOut[1][c] != float64(4+c) {
			t.Fatalf("GetRowSet mismatch at col %d: %v", c, rowsOut)
		}
	}
}

func TestResizeBufferShrinkAndGrow(t *testing.T) {
	m := newTestMatrix(t, 4, 4)
	fillAppend(t, m, 4, 6, func(i, j int) float64 { return float64(i + 10*j) })

	if err := m.ResizeBuffer(4, 2); err != nil {
		t.Fatal(err)
	}
	if m.cache.Cap() != 2 {
		t.Fatalf("cache cap after shrink = %d, want 2", m.cache.Cap())
	}
	if err := m.ResizeBuffer(4, 5); err != nil {
		t.Fatal(err)
	}
	if m.cache.Cap() != 5 {
		t.Fatalf("cache cap after grow = %d, want 5", m.cache.Cap())
	}
	// values must survive the resize
	for j := 0; j < 6; j++ {
		for i := 0; i < 4; i++ {
			v, ok := m.Get(i, j)
			if !ok || v != float64(i+10*j) {
				t.Fatalf("Get(%d,%d) = (%v,%v) after resize, want %v", i, j, v, ok, i+10*j)
			}
		}
	}
}

func TestColMedians(t *testing.T) {
	m := newTestMatrix(t, 5, 5)
	if err := m.SetRows(5); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendColumn(); err != nil {
		t.Fatal(err)
	}
	vals := []float64{5, 1, 4, 2, 3}
	for r, v := range vals {
		if err := m.Set(r, 0, v); err != nil {
			t.Fatal(err)
		}
	}
	medians, err := m.ColMedians(false)
	if err != nil {
		t.Fatal(err)
	}
	if medians[0] != 3 {
		t.Fatalf("ColMedians()[0] = %v, want 3", medians[0])
	}
}

// Regression: resizing the buffer must not lose a pending row-window
// clash. Without reconciling first, resizeRowBuffer's flush-then-reload
// overlays the column cache's stale copy back over the just-flushed
// window value.
func TestResizeBufferReconcilesOutstandingClash(t *testing.T) {
	m := newTestMatrix(t, 3, 2)
	if err := m.SetRows(3); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		if err := m.AppendColumn(); err != nil {
			t.Fatal(err)
		}
	}
	// Bring column 1 into the column cache while still in column-mode.
	if _, ok := m.Get(0, 1); !ok {
		t.Fatal("expected column 1 to be readable")
	}
	if err := m.SetRowMode(true); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 1, 99); err != nil {
		t.Fatal(err)
	}
	if err := m.ResizeBuffer(3, 2); err != nil {
		t.Fatal(err)
	}
	v, ok := m.Get(0, 1)
	if !ok || v != 99 {
		t.Fatalf("Get(0,1) after ResizeBuffer = (%v,%v), want (99,true)", v, ok)
	}
}

// Regression: a second clash recorded against a different cached
// column must not silently discard an unreconciled earlier clash.
func TestSecondClashReconcilesFirst(t *testing.T) {
	m := newTestMatrix(t, 3, 3)
	if err := m.SetRows(3); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		if err := m.AppendColumn(); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.SetRowMode(true); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 0, 11); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(0, 1, 22); err != nil {
		t.Fatal(err)
	}
	// Column 0 is the oldest cache entry; appending a 4th column forces
	// its eviction and write-back. If the clash on (0,0) was dropped
	// when (0,1) was recorded, the write-back persists the stale
	// pre-clash value instead of 11.
	if err := m.AppendColumn(); err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, 3)
	if err := m.store.ReadWhole(m.paths[0], buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 11 {
		t.Fatalf("column 0 row 0 on disk = %v, want 11 (clash lost)", buf[0])
	}
}

func TestVarianceRequiresTwoValues(t *testing.T) {
	m := newTestMatrix(t, 1, 1)
	if err := m.SetRows(1); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendColumn(); err != nil {
		t.Fatal(err)
	}
	v, err := m.Variance(false)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(v) {
		t.Fatalf("Variance() with one value = %v, want NaN", v)
	}
}
