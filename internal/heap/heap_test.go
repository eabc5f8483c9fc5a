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

package heap

import (
	"math/rand"
	"sort"
	"testing"
)

func TestOrderSliceSmallestFirst(t *testing.T) {
	x := []int{5, 3, 8, 1, 9, 2}
	less := func(a, b int) bool { return a < b }
	OrderSlice(x, less)
	if x[0] != 1 {
		t.Fatalf("OrderSlice smallest = %d, want 1", x[0])
	}
}

func TestPushPopSliceSortsAscending(t *testing.T) {
	var x []int
	less := func(a, b int) bool { return a < b }
	for _, v := range []int{5, 3, 8, 1, 9, 2} {
		PushSlice(&x, v, less)
	}
	var out []int
	for len(x) > 0 {
		out = append(out, PopSlice(&x, less))
	}
	want := []int{1, 2, 3, 5, 8, 9}
	for i, v := range want {
		if out[i] != v {
			t.Fatalf("PopSlice sequence = %v, want %v", out, want)
		}
	}
}

func TestNthSmallestMatchesSort(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := make([]float64, 50)
	for i := range data {
		data[i] = r.Float64() * 1000
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	for _, k := range []int{0, 1, 10, 25, 49} {
		got := NthSmallest(data, k)
		if got != sorted[k] {
			t.Fatalf("NthSmallest(data, %d) = %v, want %v", k, got, sorted[k])
		}
	}
}

func TestNthSmallestDoesNotMutateInput(t *testing.T) {
	data := []float64{5, 3, 8, 1, 9, 2}
	orig := append([]float64(nil), data...)
	NthSmallest(data, 2)
	for i := range data {
		if data[i] != orig[i] {
			t.Fatalf("NthSmallest mutated input at %d: %v != %v", i, data, orig)
		}
	}
}
