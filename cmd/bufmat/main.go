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

// Command bufmat loads a whitespace-separated matrix of numbers from a
// text file into a buffered matrix and prints the result of one
// aggregation kernel.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	bufferedmatrix "github.com/bmbolstad/bufferedmatrix"
)

func main() {
	var (
		input   = flag.String("input", "-", "whitespace-separated matrix file, one row per line ('-' for stdin)")
		dir     = flag.String("dir", "", "directory to store column files in (default: a temp dir)")
		prefix  = flag.String("prefix", "bufmat-", "file name prefix for column files")
		maxCols = flag.Int("max-cols", 4, "column cache capacity")
		maxRows = flag.Int("max-rows", 1024, "row window height")
		kernel  = flag.String("kernel", "sum", "aggregation kernel to run: sum, mean, variance, min, max, col-sums, row-sums")
		keep    = flag.Bool("keep", false, "keep column files instead of deleting them on exit")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "bufmat: ", 0)

	if *dir == "" {
		d, err := os.MkdirTemp("", "bufmat-")
		if err != nil {
			logger.Fatalf("create temp dir: %s", err)
		}
		*dir = d
		if !*keep {
			defer os.RemoveAll(d)
		}
	}

	rows, err := readMatrix(*input)
	if err != nil {
		logger.Fatalf("read input: %s", err)
	}
	if len(rows) == 0 {
		logger.Fatalf("input is empty")
	}

	m, err := bufferedmatrix.New(bufferedmatrix.Config{
		MaxRows:   *maxRows,
		MaxCols:   *maxCols,
		Prefix:    *prefix,
		Directory: *dir,
		Logger:    adaptLogger{logger},
	})
	if err != nil {
		logger.Fatalf("create matrix: %s", err)
	}
	if !*keep {
		defer m.Destroy()
	}

	if err := m.SetRows(len(rows)); err != nil {
		logger.Fatalf("set rows: %s", err)
	}
	for colIdx := range rows[0] {
		if err := m.AppendColumn(); err != nil {
			logger.Fatalf("append column %d: %s", colIdx, err)
		}
	}
	for row, values := range rows {
		for col, v := range values {
			if err := m.Set(row, col, v); err != nil {
				logger.Fatalf("set (%d,%d): %s", row, col, err)
			}
		}
	}

	if err := runKernel(os.Stdout, m, *kernel); err != nil {
		logger.Fatalf("%s", err)
	}
}

// readMatrix parses whitespace-separated floats, one row per
// non-empty line. Every row must have the same column count.
func readMatrix(path string) ([][]float64, error) {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	var rows [][]float64
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	width := -1
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		var vals []float64
		var cur string
		flush := func() error {
			if cur == "" {
				return nil
			}
			var v float64
			if _, err := fmt.Sscanf(cur, "%g", &v); err != nil {
				return fmt.Errorf("line %d: %q is not a number", lineNo, cur)
			}
			vals = append(vals, v)
			cur = ""
			return nil
		}
		for _, r := range line {
			if r == ' ' || r == '\t' {
				if err := flush(); err != nil {
					return nil, err
				}
				continue
			}
			cur += string(r)
		}
		if err := flush(); err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			continue
		}
		if width == -1 {
			width = len(vals)
		} else if len(vals) != width {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, width, len(vals))
		}
		rows = append(rows, vals)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func runKernel(w *os.File, m *bufferedmatrix.Matrix, name string) error {
	const ignoreNA = false
	switch name {
	case "sum":
		v, err := m.Sum(ignoreNA)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%g\n", v)
	case "mean":
		v, err := m.Mean(ignoreNA)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%g\n", v)
	case "variance":
		v, err := m.Variance(ignoreNA)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%g\n", v)
	case "min":
		v, anyFinite, err := m.Min(ignoreNA)
		if err != nil {
			return err
		}
		if !anyFinite {
			fmt.Fprintln(w, "no finite arguments")
			return nil
		}
		fmt.Fprintf(w, "%g\n", v)
	case "max":
		v, anyFinite, err := m.Max(ignoreNA)
		if err != nil {
			return err
		}
		if !anyFinite {
			fmt.Fprintln(w, "no finite arguments")
			return nil
		}
		fmt.Fprintf(w, "%g\n", v)
	case "col-sums":
		vals, err := m.ColSums(ignoreNA)
		if err != nil {
			return err
		}
		printRow(w, vals)
	case "row-sums":
		vals, err := m.RowSums(ignoreNA)
		if err != nil {
			return err
		}
		printRow(w, vals)
	default:
		return fmt.Errorf("unknown kernel %q", name)
	}
	return nil
}

func printRow(w *os.File, vals []float64) {
	for i, v := range vals {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%g", v)
	}
	fmt.Fprintln(w)
}

// adaptLogger adapts a *log.Logger to the bufferedmatrix.Logger interface.
type adaptLogger struct{ l *log.Logger }

func (a adaptLogger) Printf(format string, args ...interface{}) { a.l.Printf(format, args...) }
