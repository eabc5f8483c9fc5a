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

package colcache

import "testing"

func TestFIFOEvictionOrder(t *testing.T) {
	c := New(4, 3)
	for col := 0; col < 3; col++ {
		if err := c.Insert(col, make([]float64, 4)); err != nil {
			t.Fatalf("insert %d: %s", col, err)
		}
	}
	if !c.Full() {
		t.Fatal("expected cache to be full")
	}
	if got := c.Columns(); got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("unexpected column order: %v", got)
	}

	// Locate must not promote recency: evicting after touching column 0
	// should still evict column 0, not column 1.
	if _, ok := c.Locate(0); !ok {
		t.Fatal("expected column 0 to be resident")
	}
	col, _ := c.EvictOldest()
	if col != 0 {
		t.Fatalf("EvictOldest returned %d, want 0 (FIFO, not LRU)", col)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestInsertRejectsDuplicate(t *testing.T) {
	c := New(2, 2)
	if err := c.Insert(0, make([]float64, 2)); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate insert")
		}
	}()
	c.Insert(0, make([]float64, 2))
}

func TestInsertRejectsWrongLength(t *testing.T) {
	c := New(3, 2)
	if err := c.Insert(0, make([]float64, 2)); err == nil {
		t.Fatal("expected error for wrong buffer length")
	}
}

func TestInsertRejectsOverCapacity(t *testing.T) {
	c := New(2, 1)
	if err := c.Insert(0, make([]float64, 2)); err != nil {
		t.Fatal(err)
	}
	if err := c.Insert(1, make([]float64, 2)); err == nil {
		t.Fatal("expected error inserting past capacity")
	}
}

func TestSetCapDoesNotEvict(t *testing.T) {
	c := New(2, 2)
	c.Insert(0, make([]float64, 2))
	c.Insert(1, make([]float64, 2))
	c.SetCap(1)
	if c.Len() != 2 {
		t.Fatalf("SetCap shrunk Len() to %d, want unchanged 2", c.Len())
	}
	if !c.Full() {
		t.Fatal("Full() should report true once Len() exceeds the new Cap()")
	}
}

func TestLocateMiss(t *testing.T) {
	c := New(2, 2)
	if _, ok := c.Locate(5); ok {
		t.Fatal("expected miss for absent column")
	}
}
