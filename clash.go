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

import "math"

// clashTracker records the single most recent cell that lives in both
// the row window and the column cache simultaneously, with the row
// window holding the authoritative value. Only one cell is ever
// tracked: every write path routes through exactly one of the two
// caches, so a new clash is only ever recorded once the previous one
// has already been reconciled by the access path that preceded it.
type clashTracker struct {
	set bool
	row int
	col int
}

func (c *clashTracker) record(row, col int) {
	c.set = true
	c.row = row
	c.col = col
}

func (c *clashTracker) clear() {
	c.set = false
}

func (c *clashTracker) get() (row, col int, ok bool) {
	return c.row, c.col, c.set
}

// markRowWindowClash records a clash if col is also resident in the
// column cache, and immediately clears it again in read-only mode
// (row-mode read-only has nothing to reconcile: no write could have
// produced a divergent copy). Any previously tracked clash is
// reconciled first, since the tracker holds only one slot and
// recording over it would otherwise silently drop the earlier one.
func (m *Matrix) markRowWindowClash(row, col int) error {
	if _, ok := m.cache.Locate(col); ok {
		if err := m.reconcileClash(); err != nil {
			return err
		}
		m.clash.record(row, col)
		if m.readOnly {
			m.clash.clear()
		}
	}
	return nil
}

// reconcileClash copies the row window's value into the column
// cache's copy for the tracked cell, if the two disagree, and clears
// the tracker. It must be called before any operation that would read
// from the column cache, evict or overwrite the tracked column, leave
// row-mode, or flip read-only to true.
func (m *Matrix) reconcileClash() error {
	row, col, ok := m.clash.get()
	if !ok {
		return nil
	}
	m.clash.clear()
	buf, ok := m.cache.Locate(col)
	if !ok {
		// The tracked column is no longer in the cache; there is
		// nothing left to reconcile against.
		return nil
	}
	wv := m.window.Get(row, col)
	if buf[row] != wv && !(math.IsNaN(buf[row]) && math.IsNaN(wv)) {
		buf[row] = wv
	}
	return nil
}
