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

// Package filestore implements the per-column file persistence layer
// for a buffered matrix: one file per column, containing exactly
// rows little-endian doubles at offset 0 and no header.
package filestore

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store mints and manipulates per-column files inside a single directory.
//
// A Store is not safe for concurrent use; the engine that owns it is
// single-threaded by contract.
type Store struct {
	dir    string
	prefix string
}

// New returns a Store that creates files in dir, named with prefix.
func New(dir, prefix string) *Store {
	return &Store{dir: dir, prefix: prefix}
}

// Dir returns the directory files are created in.
func (s *Store) Dir() string { return s.dir }

// SetDir changes the directory new files are minted in. It does not
// move any existing files; callers relocating a whole matrix must
// Rename each file individually and then call SetDir.
func (s *Store) SetDir(dir string) { s.dir = dir }

// SetPrefix changes the prefix used for files minted from now on.
// Files already on disk keep their existing names.
func (s *Store) SetPrefix(prefix string) { s.prefix = prefix }

// Prefix returns the current file-name prefix.
func (s *Store) Prefix() string { return s.prefix }

// mint returns a path inside s.dir that does not collide with any
// existing file, combining the configured prefix with a random suffix.
func (s *Store) mint() string {
	name := s.prefix + uuid.NewString() + ".bm"
	return filepath.Join(s.dir, name)
}

// CreateZero creates a new file holding rows zero-valued doubles and
// returns its path. The file is preallocated on platforms that support
// it so that later write-backs to the same file don't fragment.
func (s *Store) CreateZero(rows int) (string, error) {
	path := s.mint()
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("filestore: create %q: %w", path, err)
	}
	size := int64(rows) * 8
	if err := preallocate(f, size); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("filestore: preallocate %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("filestore: close %q: %w", path, err)
	}
	return path, nil
}

// Delete removes the file at path.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("filestore: delete %q: %w", path, err)
	}
	return nil
}

// Rename moves the file at path into newDir, preserving its base name,
// and returns the new path.
func (s *Store) Rename(path, newDir string) (string, error) {
	newPath := filepath.Join(newDir, filepath.Base(path))
	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("filestore: rename %q to %q: %w", path, newPath, err)
	}
	return newPath, nil
}

// ReadWhole fills buf (length rows) with the full contents of the file
// at path.
func (s *Store) ReadWhole(path string, buf []float64) error {
	return s.ReadSlice(path, 0, len(buf), buf)
}

// WriteWhole overwrites the full contents of the file at path with buf.
func (s *Store) WriteWhole(path string, buf []float64) error {
	return s.WriteSlice(path, 0, len(buf), buf)
}

// ReadSlice reads n doubles starting at row offsetRows from the file at
// path into buf[:n].
func (s *Store) ReadSlice(path string, offsetRows, n int, buf []float64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("filestore: open %q: %w", path, err)
	}
	defer f.Close()

	raw := make([]byte, n*8)
	if _, err := f.ReadAt(raw, int64(offsetRows)*8); err != nil {
		return fmt.Errorf("filestore: read %q at row %d: %w", path, offsetRows, err)
	}
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		buf[i] = math.Float64frombits(bits)
	}
	return nil
}

// WriteSlice writes buf[:n] into the file at path starting at row
// offsetRows.
func (s *Store) WriteSlice(path string, offsetRows, n int, buf []float64) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("filestore: open %q: %w", path, err)
	}
	defer f.Close()

	raw := make([]byte, n*8)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(raw[i*8:i*8+8], math.Float64bits(buf[i]))
	}
	if _, err := f.WriteAt(raw, int64(offsetRows)*8); err != nil {
		return fmt.Errorf("filestore: write %q at row %d: %w", path, offsetRows, err)
	}
	return nil
}
