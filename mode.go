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

	"github.com/bmbolstad/bufferedmatrix/internal/rowwindow"
)

// SetRowMode enables or disables the row window. Enabling requires
// rows to already be fixed. Disabling reconciles any outstanding
// clash and flushes the window before freeing it; enabling always
// repositions to row 0.
func (m *Matrix) SetRowMode(on bool) error {
	if on == !m.colMode {
		return nil
	}
	if on {
		if !m.rowsSet || m.rows == 0 {
			return ErrRowsNotSet
		}
		w, err := rowwindow.New(m.rows, m.maxRows, m.cols)
		if err != nil {
			return err
		}
		m.window = w
		m.colMode = false
		if err := m.loadWindowAt(0); err != nil {
			m.window = nil
			m.colMode = true
			return err
		}
		return nil
	}
	if err := m.reconcileClash(); err != nil {
		return err
	}
	if err := m.flushWindow(); err != nil {
		return err
	}
	m.window = nil
	m.colMode = true
	return nil
}

// SetReadOnly enables or disables read-only mode. Enabling reconciles
// any outstanding clash and flushes the row window and every cached
// column first, so that the on-disk state is coherent and later
// evictions can skip write-back entirely. Disabling is pure
// bookkeeping.
func (m *Matrix) SetReadOnly(on bool) error {
	if on == m.readOnly {
		return nil
	}
	if !on {
		m.readOnly = false
		return nil
	}
	if err := m.reconcileClash(); err != nil {
		return err
	}
	if err := m.flushWindow(); err != nil {
		return err
	}
	for _, col := range append([]int(nil), m.cache.Columns()...) {
		buf, _ := m.cache.Locate(col)
		if err := m.store.WriteWhole(m.paths[col], buf); err != nil {
			return fmt.Errorf("bufferedmatrix: flush column %d: %w", col, err)
		}
	}
	m.readOnly = true
	return nil
}

// MoveDirectory relocates every column file into newDir.
func (m *Matrix) MoveDirectory(newDir string) error {
	for col, p := range m.paths {
		np, err := m.store.Rename(p, newDir)
		if err != nil {
			return fmt.Errorf("bufferedmatrix: move column %d: %w", col, err)
		}
		m.paths[col] = np
	}
	m.dir = newDir
	m.store.SetDir(newDir)
	return nil
}
