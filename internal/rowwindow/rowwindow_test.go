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

package rowwindow

import "testing"

func TestNewRejectsInvalidMaxRows(t *testing.T) {
	if _, err := New(10, 0, 3); err == nil {
		t.Fatal("expected error for maxRows=0")
	}
	if _, err := New(10, 11, 3); err == nil {
		t.Fatal("expected error for maxRows > rows")
	}
}

func TestContainsAndGetSet(t *testing.T) {
	w, err := New(10, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Contains(0) || !w.Contains(3) || w.Contains(4) {
		t.Fatalf("unexpected Contains at default position")
	}
	w.Set(1, 0, 42)
	if got := w.Get(1, 0); got != 42 {
		t.Fatalf("Get(1,0) = %v, want 42", got)
	}
}

func TestReposition(t *testing.T) {
	w, err := New(10, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Reposition(5); got != 5 {
		t.Fatalf("Reposition(5) = %d, want 5", got)
	}
	if !w.Contains(5) || !w.Contains(8) || w.Contains(9) {
		t.Fatal("unexpected window band after Reposition(5)")
	}
	// clamp to stay inside [0, rows)
	if got := w.Reposition(9); got != 6 {
		t.Fatalf("Reposition(9) = %d, want clamp to 6", got)
	}
	if got := w.Reposition(-3); got != 0 {
		t.Fatalf("Reposition(-3) = %d, want clamp to 0", got)
	}
}

func TestAppendColumn(t *testing.T) {
	w, err := New(6, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if w.Columns() != 2 {
		t.Fatalf("Columns() = %d, want 2", w.Columns())
	}
	w.AppendColumn()
	if w.Columns() != 3 {
		t.Fatalf("Columns() = %d, want 3 after append", w.Columns())
	}
	if got := w.Segment(2); len(got) != 3 {
		t.Fatalf("new segment length = %d, want 3", len(got))
	}
}

func TestResizePreservesOverlapAndZeroFillsGrowth(t *testing.T) {
	w, err := New(20, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	w.Reposition(10)
	for i := 0; i < 4; i++ {
		w.Set(10+i, 0, float64(i+1))
	}
	if err := w.Resize(6); err != nil {
		t.Fatal(err)
	}
	if w.MaxRows() != 6 {
		t.Fatalf("MaxRows() = %d, want 6", w.MaxRows())
	}
	for i := 0; i < 4; i++ {
		if got := w.Segment(0)[i]; got != float64(i+1) {
			t.Fatalf("segment[%d] = %v, want %v after grow", i, got, float64(i+1))
		}
	}
	for i := 4; i < 6; i++ {
		if got := w.Segment(0)[i]; got != 0 {
			t.Fatalf("segment[%d] = %v, want 0 in newly grown rows", i, got)
		}
	}
}

func TestResizeShrinkKeepsWindowInBounds(t *testing.T) {
	w, err := New(10, 6, 1)
	if err != nil {
		t.Fatal(err)
	}
	w.Reposition(4) // clamps to 4 since rows-maxRows=4
	if err := w.Resize(2); err != nil {
		t.Fatal(err)
	}
	if w.FirstRow()+w.MaxRows() > 10 {
		t.Fatalf("window [%d,%d) exceeds row count 10", w.FirstRow(), w.FirstRow()+w.MaxRows())
	}
}
