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

// Get returns the value at (row, col). ok is false when the index is
// out of range, or when bringing the cell into memory failed due to
// an I/O error (the miss is then silently treated as absent, matching
// the language-neutral contract's Option<double> return).
func (m *Matrix) Get(row, col int) (float64, bool) {
	if m.checkCell(row, col) != nil {
		return 0, false
	}
	if !m.colMode {
		return m.getRowMode(row, col)
	}
	return m.getColMode(row, col)
}

func (m *Matrix) getColMode(row, col int) (float64, bool) {
	if buf, ok := m.cache.Locate(col); ok {
		return buf[row], true
	}
	if err := m.loadColumnIntoCache(col); err != nil {
		return 0, false
	}
	buf, _ := m.cache.Locate(col)
	return buf[row], true
}

func (m *Matrix) getRowMode(row, col int) (float64, bool) {
	if m.window.Contains(row) {
		v := m.window.Get(row, col)
		if err := m.markRowWindowClash(row, col); err != nil {
			return 0, false
		}
		return v, true
	}
	if err := m.reconcileClash(); err != nil {
		return 0, false
	}
	if buf, ok := m.cache.Locate(col); ok {
		return buf[row], true
	}
	if err := m.missFillRowMode(row, col); err != nil {
		return 0, false
	}
	v := m.window.Get(row, col)
	if err := m.markRowWindowClash(row, col); err != nil {
		return 0, false
	}
	return v, true
}

// missFillRowMode handles a row-mode cell miss that hit neither the
// row window nor the column cache: flush the window, reposition and
// reload it around row, then bring col into the column cache.
func (m *Matrix) missFillRowMode(row, col int) error {
	if err := m.flushWindow(); err != nil {
		return err
	}
	if err := m.loadWindowAt(row); err != nil {
		return err
	}
	return m.loadColumnIntoCache(col)
}

// Set writes v at (row, col). It fails with ErrReadOnly if the matrix
// is read-only, and ErrOutOfRange if the index is out of bounds.
func (m *Matrix) Set(row, col int, v float64) error {
	if m.readOnly {
		return ErrReadOnly
	}
	if err := m.checkCell(row, col); err != nil {
		return err
	}
	if !m.colMode {
		return m.setRowMode(row, col, v)
	}
	return m.setColMode(row, col, v)
}

func (m *Matrix) setColMode(row, col int, v float64) error {
	if err := m.loadColumnIntoCache(col); err != nil {
		return err
	}
	buf, _ := m.cache.Locate(col)
	buf[row] = v
	return nil
}

func (m *Matrix) setRowMode(row, col int, v float64) error {
	if m.window.Contains(row) {
		m.window.Set(row, col, v)
		return m.markRowWindowClash(row, col)
	}
	if err := m.reconcileClash(); err != nil {
		return err
	}
	if buf, ok := m.cache.Locate(col); ok {
		buf[row] = v
		return nil
	}
	if err := m.missFillRowMode(row, col); err != nil {
		return err
	}
	m.window.Set(row, col, v)
	return m.markRowWindowClash(row, col)
}

// flatIndex converts a flat index (c*rows+r) to (row, col), matching
// the language-neutral get_single_index/set_single_index contract.
func (m *Matrix) flatIndex(i int) (row, col int, ok bool) {
	if !m.rowsSet || m.rows == 0 || i < 0 || i >= m.rows*m.cols {
		return 0, 0, false
	}
	return i % m.rows, i / m.rows, true
}

// GetFlat returns the value at flat index i = c*rows+r.
func (m *Matrix) GetFlat(i int) (float64, bool) {
	row, col, ok := m.flatIndex(i)
	if !ok {
		return 0, false
	}
	return m.Get(row, col)
}

// SetFlat writes v at flat index i = c*rows+r.
func (m *Matrix) SetFlat(i int, v float64) error {
	row, col, ok := m.flatIndex(i)
	if !ok {
		return ErrOutOfRange
	}
	return m.Set(row, col, v)
}
