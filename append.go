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

// AppendColumn adds one new, zero-filled column to the matrix. rows
// must already be fixed via SetRows.
func (m *Matrix) AppendColumn() error {
	if !m.rowsSet || m.rows == 0 {
		return ErrRowsNotSet
	}

	var buf []float64
	if m.cache.Full() {
		if err := m.reconcileClash(); err != nil {
			return err
		}
		oldCol, oldBuf := m.cache.EvictOldest()
		if !m.readOnly {
			if err := m.store.WriteWhole(m.paths[oldCol], oldBuf); err != nil {
				return fmt.Errorf("bufferedmatrix: write back column %d: %w", oldCol, err)
			}
		}
		for i := range oldBuf {
			oldBuf[i] = 0
		}
		buf = oldBuf
	} else {
		buf = make([]float64, m.rows)
	}

	newCol := m.cols
	path, err := m.store.CreateZero(m.rows)
	if err != nil {
		return fmt.Errorf("bufferedmatrix: create column %d: %w", newCol, err)
	}

	if !m.colMode {
		m.window.AppendColumn()
	}
	if err := m.cache.Insert(newCol, buf); err != nil {
		// Should not happen: we just freed (or never filled) a slot.
		return err
	}
	m.paths = append(m.paths, path)
	m.cols = newCol + 1
	return nil
}
