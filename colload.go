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

// evictOldestColumn writes back (unless read-only) and removes the
// least-recently-inserted column from the cache, without loading a
// replacement.
func (m *Matrix) evictOldestColumn() error {
	col, buf := m.cache.EvictOldest()
	if !m.readOnly {
		if err := m.store.WriteWhole(m.paths[col], buf); err != nil {
			return fmt.Errorf("bufferedmatrix: write back column %d: %w", col, err)
		}
	}
	return nil
}

// loadColumnIntoCache ensures col is resident in the column cache,
// evicting (with write-back, unless read-only) the oldest entry and
// reusing its buffer if the cache is full. It is a no-op if col is
// already resident.
func (m *Matrix) loadColumnIntoCache(col int) error {
	if _, ok := m.cache.Locate(col); ok {
		return nil
	}
	var buf []float64
	if m.cache.Full() {
		oldCol, oldBuf := m.cache.EvictOldest()
		if !m.readOnly {
			if err := m.store.WriteWhole(m.paths[oldCol], oldBuf); err != nil {
				return fmt.Errorf("bufferedmatrix: write back column %d: %w", oldCol, err)
			}
		}
		buf = oldBuf
	} else {
		buf = make([]float64, m.rows)
	}
	if err := m.store.ReadWhole(m.paths[col], buf); err != nil {
		return fmt.Errorf("bufferedmatrix: read column %d: %w", col, err)
	}
	return m.cache.Insert(col, buf)
}

// flushWindow writes every column's resident row segment back to its
// file at the window's current offset.
func (m *Matrix) flushWindow() error {
	if m.window == nil {
		return nil
	}
	first := m.window.FirstRow()
	n := m.window.MaxRows()
	for col := 0; col < m.cols; col++ {
		seg := m.window.Segment(col)
		if err := m.store.WriteSlice(m.paths[col], first, n, seg); err != nil {
			return fmt.Errorf("bufferedmatrix: flush row window column %d: %w", col, err)
		}
	}
	return nil
}

// loadWindowAt repositions the row window to cover `want` (clamped to
// stay inside [0, rows)), rereads every column's segment from disk,
// and then overlays the segments of any column currently resident in
// the column cache, since the cache is authoritative for its own
// columns at load time.
func (m *Matrix) loadWindowAt(want int) error {
	first := m.window.Reposition(want)
	n := m.window.MaxRows()
	for col := 0; col < m.cols; col++ {
		seg := m.window.Segment(col)
		if err := m.store.ReadSlice(m.paths[col], first, n, seg); err != nil {
			return fmt.Errorf("bufferedmatrix: load row window column %d: %w", col, err)
		}
	}
	for _, col := range m.cache.Columns() {
		buf, _ := m.cache.Locate(col)
		copy(m.window.Segment(col), buf[first:first+n])
	}
	return nil
}
