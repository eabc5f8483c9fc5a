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

	"github.com/bmbolstad/bufferedmatrix/internal/colcache"
	"github.com/bmbolstad/bufferedmatrix/internal/filestore"
	"github.com/bmbolstad/bufferedmatrix/internal/rowwindow"
)

// Logger is implemented by anything that can receive diagnostic
// messages from a Matrix. It is strictly for observability: the
// engine never relies on logging for correctness, and a nil Logger
// (the default) just means log messages are dropped.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Config holds the construction-time parameters for a Matrix.
type Config struct {
	// MaxRows is the height of the row window used once row-mode is
	// activated. Must be >= 1; clamped down to rows the first time
	// SetRows is called if it exceeds rows.
	MaxRows int
	// MaxCols is the capacity of the column cache. Must be >= 1.
	MaxCols int
	// Prefix is prepended to every minted column file name.
	Prefix string
	// Directory is where column files are created.
	Directory string
	// Logger, if non-nil, receives diagnostic messages.
	Logger Logger
}

// Matrix is an out-of-core dense float64 matrix. See the package doc
// comment for the concurrency contract. The zero value is not usable;
// construct one with New.
type Matrix struct {
	rows    int
	rowsSet bool
	cols    int
	maxCols int
	maxRows int
	colMode bool
	readOnly bool
	prefix  string
	dir     string

	store  *filestore.Store
	cache  *colcache.Cache
	window *rowwindow.Window
	clash  clashTracker

	paths  []string
	logger Logger
}

// New constructs an empty matrix (rows and cols both zero). Call
// SetRows once to fix the row count before appending columns.
func New(cfg Config) (*Matrix, error) {
	if cfg.MaxCols < 1 {
		return nil, fmt.Errorf("%w: max_cols must be >= 1", ErrInvalidCapacity)
	}
	if cfg.MaxRows < 1 {
		return nil, fmt.Errorf("%w: max_rows must be >= 1", ErrInvalidCapacity)
	}
	return &Matrix{
		maxCols: cfg.MaxCols,
		maxRows: cfg.MaxRows,
		prefix:  cfg.Prefix,
		dir:     cfg.Directory,
		colMode: true,
		store:   filestore.New(cfg.Directory, cfg.Prefix),
		logger:  cfg.Logger,
	}, nil
}

func (m *Matrix) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// SetRows fixes the row count of the matrix. It may be called exactly
// once, with a positive value, before any column is appended.
func (m *Matrix) SetRows(n int) error {
	if m.rowsSet {
		return ErrRowsAlreadySet
	}
	if n <= 0 {
		return fmt.Errorf("%w: rows must be positive", ErrInvalidCapacity)
	}
	if m.maxRows > n {
		m.logf("bufferedmatrix: clamping max_rows from %d to %d rows", m.maxRows, n)
		m.maxRows = n
	}
	m.rows = n
	m.rowsSet = true
	m.cache = colcache.New(n, m.maxCols)
	return nil
}

// Rows returns the fixed row count, or 0 if SetRows has not been called.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the current column count.
func (m *Matrix) Cols() int { return m.cols }

// MaxCols returns the column cache's capacity.
func (m *Matrix) MaxCols() int { return m.maxCols }

// MaxRows returns the row window's configured height.
func (m *Matrix) MaxRows() int { return m.maxRows }

// Directory returns the directory column files are stored in.
func (m *Matrix) Directory() string { return m.dir }

// Prefix returns the current file-name prefix for new columns.
func (m *Matrix) Prefix() string { return m.prefix }

// SetPrefix changes the prefix used when minting file names for
// columns appended from now on; existing files are unaffected.
func (m *Matrix) SetPrefix(prefix string) {
	m.prefix = prefix
	m.store.SetPrefix(prefix)
}

// IsRowMode reports whether the row window is active.
func (m *Matrix) IsRowMode() bool { return !m.colMode }

// IsReadOnly reports whether mutation is currently disabled.
func (m *Matrix) IsReadOnly() bool { return m.readOnly }

// MemoryInUse returns an estimate, in bytes, of the memory currently
// held by the column cache and (if active) the row window. It is
// recomputed on demand rather than tracked incrementally.
func (m *Matrix) MemoryInUse() int64 {
	var n int64
	if m.cache != nil {
		n += int64(m.cache.Len()) * int64(m.rows) * 8
	}
	if m.window != nil {
		n += int64(m.window.Columns()) * int64(m.window.MaxRows()) * 8
	}
	return n
}

// FileSpaceInUse returns the total bytes occupied by all column files
// (every column file is always exactly rows doubles).
func (m *Matrix) FileSpaceInUse() int64 {
	return int64(m.cols) * int64(m.rows) * 8
}

// Destroy deletes every file this matrix owns. The Matrix must not be
// used afterward.
func (m *Matrix) Destroy() error {
	var firstErr error
	for _, p := range m.paths {
		if err := m.store.Delete(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Matrix) checkCell(row, col int) error {
	if !m.rowsSet {
		return ErrRowsNotSet
	}
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return ErrOutOfRange
	}
	return nil
}
