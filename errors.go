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

import "errors"

// Sentinel errors for precondition violations. I/O failures are
// reported by wrapping the underlying *os.PathError (or similar) with
// fmt.Errorf("...: %w", err) rather than one of these sentinels, so
// callers can still errors.Is against os-level errors if they need to.
var (
	// ErrRowsAlreadySet is returned by SetRows when rows has already
	// been fixed for this matrix.
	ErrRowsAlreadySet = errors.New("bufferedmatrix: rows already set")

	// ErrRowsNotSet is returned by any operation that requires rows to
	// be fixed (append, row-mode activation, cell access) before it has
	// been set.
	ErrRowsNotSet = errors.New("bufferedmatrix: rows not set")

	// ErrReadOnly is returned by mutating operations while the matrix
	// is in read-only mode.
	ErrReadOnly = errors.New("bufferedmatrix: matrix is read-only")

	// ErrOutOfRange is returned when a row, column, or flat index falls
	// outside the matrix's current dimensions.
	ErrOutOfRange = errors.New("bufferedmatrix: index out of range")

	// ErrDimensionMismatch is returned by CopyValues when the source
	// and destination matrices don't share the same rows and cols.
	ErrDimensionMismatch = errors.New("bufferedmatrix: dimension mismatch")

	// ErrInvalidCapacity is returned when a buffer capacity argument
	// (max_cols, max_rows, or a resize target) is less than 1, or when
	// max_rows exceeds rows.
	ErrInvalidCapacity = errors.New("bufferedmatrix: invalid capacity")
)
