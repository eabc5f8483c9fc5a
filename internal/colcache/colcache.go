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

// Package colcache implements the bounded, FIFO-ordered, fully-resident
// column cache that sits in front of a buffered matrix's per-column
// files. It assumes a single-threaded caller and keeps whole columns
// as plain owned []float64 buffers rather than the refcounted,
// mmap'd, worker-queue-backed entries a concurrent cache would need:
// there is no concurrency to arbitrate here, so the component
// degenerates to slice bookkeeping.
package colcache

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Cache holds up to Cap() fully-resident columns, ordered oldest first
// (the eviction victim is always at position 0).
type Cache struct {
	rows int
	cap  int
	cols []int
	bufs [][]float64
}

// New returns an empty cache for columns of length rows with capacity
// maxCols.
func New(rows, maxCols int) *Cache {
	return &Cache{
		rows: rows,
		cap:  maxCols,
		cols: make([]int, 0, maxCols),
		bufs: make([][]float64, 0, maxCols),
	}
}

// Len returns the number of columns currently resident.
func (c *Cache) Len() int { return len(c.cols) }

// Cap returns the current capacity.
func (c *Cache) Cap() int { return c.cap }

// SetCap changes the capacity. It does not evict; the caller must
// evict down to the new capacity first when shrinking.
func (c *Cache) SetCap(n int) { c.cap = n }

// Full reports whether the cache is at capacity.
func (c *Cache) Full() bool { return len(c.cols) >= c.cap }

// Locate returns the resident buffer for col, if any. locate does not
// promote col's recency, matching the FIFO-by-insertion eviction
// policy: only insertion order determines the eviction victim.
func (c *Cache) Locate(col int) ([]float64, bool) {
	i := slices.Index(c.cols, col)
	if i < 0 {
		return nil, false
	}
	return c.bufs[i], true
}

// Columns returns the currently resident column indices, oldest
// (eviction victim) first. The returned slice must not be retained
// across a mutating call to c.
func (c *Cache) Columns() []int { return c.cols }

// EvictOldest removes and returns the least-recently-inserted column
// and its buffer. It panics if the cache is empty; callers must check
// Len() > 0 first.
func (c *Cache) EvictOldest() (col int, buf []float64) {
	if len(c.cols) == 0 {
		panic("colcache: EvictOldest on empty cache")
	}
	col, buf = c.cols[0], c.bufs[0]
	c.cols = slices.Delete(c.cols, 0, 1)
	c.bufs = slices.Delete(c.bufs, 0, 1)
	return col, buf
}

// Insert appends col/buf as the most-recently-loaded entry. The
// distinctness invariant (no column appears twice) is the caller's
// responsibility: Insert panics if col is already resident and the
// cache has room (a full cache returns the capacity error first),
// since a caller that calls Locate before Insert (as the engine always
// does) can never trigger this.
func (c *Cache) Insert(col int, buf []float64) error {
	if len(buf) != c.rows {
		return fmt.Errorf("colcache: buffer has %d rows, want %d", len(buf), c.rows)
	}
	if len(c.cols) >= c.cap {
		return fmt.Errorf("colcache: Insert would exceed capacity %d", c.cap)
	}
	if slices.Contains(c.cols, col) {
		panic(fmt.Sprintf("colcache: duplicate column %d", col))
	}
	c.cols = append(c.cols, col)
	c.bufs = append(c.bufs, buf)
	return nil
}

// Rows returns the fixed column length this cache was built for.
func (c *Cache) Rows() int { return c.rows }
