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

// Package bufferedmatrix implements an out-of-core dense matrix of
// float64 values whose total footprint may exceed main memory. The
// matrix has a row count fixed once by SetRows after construction and
// a column count that grows by append; each column is persisted as its
// own file, and a bounded FIFO column cache plus an optional
// contiguous row window keep a working set resident.
//
// A *Matrix is not safe for concurrent use from multiple goroutines:
// the engine is single-threaded by contract, matching the access
// patterns it is tuned for (sequential column scans, full-matrix
// aggregations). Callers that need concurrent access must serialize
// it themselves.
package bufferedmatrix
