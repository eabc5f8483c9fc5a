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

import "fmt"

// GetColumns fills out (rows x len(indices), column-major: out[col] is
// that column's rows) with the requested columns. In row-mode it
// falls through to per-cell Get. In column-mode each requested column
// is brought into the cache (if not already resident) and copied out,
// so a column referenced twice in indices is not reloaded while it is
// still resident; one evicted in between is loaded again.
func (m *Matrix) GetColumns(indices []int, out [][]float64) error {
	if err := m.checkColumns(indices, out); err != nil {
		return err
	}
	if !m.colMode {
		for k, col := range indices {
			for row := 0; row < m.rows; row++ {
				v, ok := m.getRowMode(row, col)
				if !ok {
					return fmt.Errorf("bufferedmatrix: get column %d row %d: %w", col, row, ErrOutOfRange)
				}
				out[k][row] = v
			}
		}
		return nil
	}
	for k, col := range indices {
		if err := m.loadColumnIntoCache(col); err != nil {
			return err
		}
		buf, _ := m.cache.Locate(col)
		copy(out[k], buf)
	}
	return nil
}

// SetColumns is the write symmetric of GetColumns.
func (m *Matrix) SetColumns(indices []int, in [][]float64) error {
	if m.readOnly {
		return ErrReadOnly
	}
	if err := m.checkColumns(indices, in); err != nil {
		return err
	}
	if !m.colMode {
		for k, col := range indices {
			for row := 0; row < m.rows; row++ {
				if err := m.setRowMode(row, col, in[k][row]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for k, col := range indices {
		if err := m.loadColumnIntoCache(col); err != nil {
			return err
		}
		buf, _ := m.cache.Locate(col)
		copy(buf, in[k])
	}
	return nil
}

func (m *Matrix) checkColumns(indices []int, bufs [][]float64) error {
	if !m.rowsSet {
		return ErrRowsNotSet
	}
	if len(indices) != len(bufs) {
		return ErrDimensionMismatch
	}
	for k, col := range indices {
		if col < 0 || col >= m.cols {
			return ErrOutOfRange
		}
		if len(bufs[k]) != m.rows {
			return ErrDimensionMismatch
		}
	}
	return nil
}

// GetRowSet fills out (len(rowIndices) x cols, row-major: out[k] holds
// one requested row across every column) with the requested rows. In
// row-mode it falls through to per-cell Get. In column-mode it first
// drains every currently cached column, extracting the requested rows
// directly from the cache, then streams each remaining column off
// disk exactly once, so no on-disk column is ever read twice.
func (m *Matrix) GetRowSet(rowIndices []int, out [][]float64) error {
	if err := m.checkRowSet(rowIndices, out); err != nil {
		return err
	}
	if !m.colMode {
		for k, row := range rowIndices {
			for col := 0; col < m.cols; col++ {
				v, ok := m.getRowMode(row, col)
				if !ok {
					return fmt.Errorf("bufferedmatrix: get row %d col %d: %w", row, col, ErrOutOfRange)
				}
				out[k][col] = v
			}
		}
		return nil
	}
	cached := make(map[int]bool, m.cache.Len())
	for _, col := range m.cache.Columns() {
		buf, _ := m.cache.Locate(col)
		for k, row := range rowIndices {
			out[k][col] = buf[row]
		}
		cached[col] = true
	}
	scratch := make([]float64, m.rows)
	for col := 0; col < m.cols; col++ {
		if cached[col] {
			continue
		}
		if err := m.store.ReadWhole(m.paths[col], scratch); err != nil {
			return fmt.Errorf("bufferedmatrix: read column %d: %w", col, err)
		}
		for k, row := range rowIndices {
			out[k][col] = scratch[row]
		}
	}
	return nil
}

// SetRowSet is the write symmetric of GetRowSet: cached columns are
// updated in place, and every remaining column is read, patched, and
// written back exactly once.
func (m *Matrix) SetRowSet(rowIndices []int, in [][]float64) error {
	if m.readOnly {
		return ErrReadOnly
	}
	if err := m.checkRowSet(rowIndices, in); err != nil {
		return err
	}
	if !m.colMode {
		for k, row := range rowIndices {
			for col := 0; col < m.cols; col++ {
				if err := m.setRowMode(row, col, in[k][col]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	cached := make(map[int]bool, m.cache.Len())
	for _, col := range m.cache.Columns() {
		buf, _ := m.cache.Locate(col)
		for k, row := range rowIndices {
			buf[row] = in[k][col]
		}
		cached[col] = true
	}
	scratch := make([]float64, m.rows)
	for col := 0; col < m.cols; col++ {
		if cached[col] {
			continue
		}
		if err := m.store.ReadWhole(m.paths[col], scratch); err != nil {
			return fmt.Errorf("bufferedmatrix: read column %d: %w", col, err)
		}
		for k, row := range rowIndices {
			scratch[row] = in[k][col]
		}
		if err := m.store.WriteWhole(m.paths[col], scratch); err != nil {
			return fmt.Errorf("bufferedmatrix: write column %d: %w", col, err)
		}
	}
	return nil
}

func (m *Matrix) checkRowSet(rowIndices []int, bufs [][]float64) error {
	if !m.rowsSet {
		return ErrRowsNotSet
	}
	if len(rowIndices) != len(bufs) {
		return ErrDimensionMismatch
	}
	for k, row := range rowIndices {
		if row < 0 || row >= m.rows {
			return ErrOutOfRange
		}
		if len(bufs[k]) != m.cols {
			return ErrDimensionMismatch
		}
	}
	return nil
}

// CopyValues copies every cell of src into dst. Both matrices must
// already have matching, fixed dimensions.
func CopyValues(dst, src *Matrix) error {
	if !dst.rowsSet || !src.rowsSet {
		return ErrRowsNotSet
	}
	if dst.rows != src.rows || dst.cols != src.cols {
		return ErrDimensionMismatch
	}
	for col := 0; col < src.cols; col++ {
		for row := 0; row < src.rows; row++ {
			v, ok := src.Get(row, col)
			if !ok {
				return fmt.Errorf("bufferedmatrix: copy cell (%d,%d): %w", row, col, ErrOutOfRange)
			}
			if err := dst.Set(row, col, v); err != nil {
				return fmt.Errorf("bufferedmatrix: copy cell (%d,%d): %w", row, col, err)
			}
		}
	}
	return nil
}

// Apply replaces every cell v with f(v). In column-mode it works
// column by column, bringing each column into the cache once; in
// row-mode it works cell by cell, row by row, through the row window.
func (m *Matrix) Apply(f func(float64) float64) error {
	if m.readOnly {
		return ErrReadOnly
	}
	if !m.rowsSet {
		return ErrRowsNotSet
	}
	if !m.colMode {
		for row := 0; row < m.rows; row++ {
			for col := 0; col < m.cols; col++ {
				v, ok := m.getRowMode(row, col)
				if !ok {
					return fmt.Errorf("bufferedmatrix: apply cell (%d,%d): %w", row, col, ErrOutOfRange)
				}
				if err := m.setRowMode(row, col, f(v)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for col := 0; col < m.cols; col++ {
		if err := m.loadColumnIntoCache(col); err != nil {
			return err
		}
		buf, _ := m.cache.Locate(col)
		for row := range buf {
			buf[row] = f(buf[row])
		}
	}
	return nil
}
