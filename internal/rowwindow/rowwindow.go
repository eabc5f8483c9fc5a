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

// Package rowwindow implements the in-memory band of rows that, when
// row-mode is active, sits alongside a buffered matrix's column cache:
// a contiguous [firstRow, firstRow+maxRows) row range held across
// every column. The package only manages the band's memory layout and
// positioning arithmetic; the file I/O needed to populate or flush it,
// and the coordination with the column cache for coherence, are the
// caller's (the engine's) responsibility, since those cut across
// components.
package rowwindow

import "fmt"

// Window holds one maxRows-long segment per column.
type Window struct {
	rows     int // total row count of the owning matrix
	maxRows  int
	firstRow int
	segs     [][]float64
}

// New allocates a window of maxRows rows for a matrix with the given
// total row count and cols columns, positioned at row 0.
func New(rows, maxRows, cols int) (*Window, error) {
	if maxRows < 1 || maxRows > rows {
		return nil, fmt.Errorf("rowwindow: invalid maxRows %d for %d rows", maxRows, rows)
	}
	w := &Window{rows: rows, maxRows: maxRows}
	w.segs = make([][]float64, cols)
	for i := range w.segs {
		w.segs[i] = make([]float64, maxRows)
	}
	return w, nil
}

// FirstRow returns the first row currently resident in the window.
func (w *Window) FirstRow() int { return w.firstRow }

// MaxRows returns the window's height.
func (w *Window) MaxRows() int { return w.maxRows }

// Columns returns the number of column segments held.
func (w *Window) Columns() int { return len(w.segs) }

// Contains reports whether row falls inside the resident band.
func (w *Window) Contains(row int) bool {
	return row >= w.firstRow && row < w.firstRow+w.maxRows
}

// Segment returns the backing segment for column col, exposing it for
// bulk reads/writes and for file I/O performed by the caller.
func (w *Window) Segment(col int) []float64 { return w.segs[col] }

// Get returns the value at (row, col); row must satisfy Contains(row).
func (w *Window) Get(row, col int) float64 {
	return w.segs[col][row-w.firstRow]
}

// Set writes the value at (row, col); row must satisfy Contains(row).
func (w *Window) Set(row, col int, v float64) {
	w.segs[col][row-w.firstRow] = v
}

// Reposition computes the new firstRow for a requested anchor row,
// clamping so the window stays inside [0, rows). It does not move any
// data; the caller reloads the segments from disk afterwards.
func (w *Window) Reposition(want int) int {
	first := want
	if max := w.rows - w.maxRows; first > max {
		first = max
	}
	if first < 0 {
		first = 0
	}
	w.firstRow = first
	return first
}

// AppendColumn appends one new zero-filled segment, for the column
// append path.
func (w *Window) AppendColumn() {
	w.segs = append(w.segs, make([]float64, w.maxRows))
}

// Resize reallocates every segment to newMaxRows. Each segment keeps
// its first min(oldMaxRows, newMaxRows) values at the same offsets and
// zero-fills any new rows; values dropped by a shrink are not restored
// by a later grow. The transitional buffer is sized to
// max(oldMaxRows, newMaxRows). If firstRow has to move so the band
// fits inside [0, rows), the kept values are not shifted with it. The
// caller is responsible for flushing the old contents beforehand and
// reloading afterward; Resize only rearranges the in-memory layout.
func (w *Window) Resize(newMaxRows int) error {
	if newMaxRows < 1 || newMaxRows > w.rows {
		return fmt.Errorf("rowwindow: invalid maxRows %d for %d rows", newMaxRows, w.rows)
	}
	transition := newMaxRows
	if w.maxRows > transition {
		transition = w.maxRows
	}
	for i, seg := range w.segs {
		grown := make([]float64, transition)
		copy(grown, seg)
		w.segs[i] = grown[:newMaxRows]
	}
	w.maxRows = newMaxRows
	if w.firstRow+w.maxRows > w.rows {
		w.firstRow = w.rows - w.maxRows
	}
	if w.firstRow < 0 {
		w.firstRow = 0
	}
	return nil
}
