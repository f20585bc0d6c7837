// Package tfs parses the whitespace-separated table files written by the
// optics analysis and the lattice model.
//
// A file holds "@" header lines (name, type, value), one "*" line with the
// column names, one "$" line with the column types, then one data row per
// line. String cells may be double-quoted.
package tfs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/feeddown/internal/mmap"
)

var (
	// ErrNoColumns is returned when a table has no "*" column line.
	ErrNoColumns = errors.New("tfs: no column definition")
	// ErrColumnMissing is returned when a requested column does not exist.
	ErrColumnMissing = errors.New("tfs: column missing")
)

// Table is a parsed table.
type Table struct {
	Headers map[string]string
	Columns []string
	Types   []string
	Rows    [][]string

	index map[string]int
}

// ReadFile maps and parses the file at path.
func ReadFile(path string) (*Table, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	_ = f.Advise(mmap.AccessSequential)

	t, err := Parse(bytes.NewReader(f.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a table from r.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{Headers: make(map[string]string)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		switch text[0] {
		case '@':
			fields := split(text[1:])
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: malformed header", line)
			}
			value := ""
			if len(fields) >= 3 {
				value = strings.Join(fields[2:], " ")
			}
			t.Headers[fields[0]] = value
		case '*':
			t.Columns = split(text[1:])
		case '$':
			t.Types = split(text[1:])
		default:
			if t.Columns == nil {
				return nil, fmt.Errorf("line %d: %w", line, ErrNoColumns)
			}
			cells := split(text)
			if len(cells) != len(t.Columns) {
				return nil, fmt.Errorf("line %d: expected %d cells, got %d", line, len(t.Columns), len(cells))
			}
			t.Rows = append(t.Rows, cells)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if t.Columns == nil {
		return nil, ErrNoColumns
	}

	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[strings.ToUpper(c)] = i
	}
	return t, nil
}

// Col returns the index of the named column (case-insensitive).
func (t *Table) Col(name string) (int, error) {
	i, ok := t.index[strings.ToUpper(name)]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrColumnMissing, name)
	}
	return i, nil
}

// HasCol reports whether the table has the named column.
func (t *Table) HasCol(name string) bool {
	_, ok := t.index[strings.ToUpper(name)]
	return ok
}

// Float parses the cell at row r, column c.
func (t *Table) Float(r, c int) (float64, error) {
	v, err := strconv.ParseFloat(t.Rows[r][c], 64)
	if err != nil {
		return 0, fmt.Errorf("row %d column %s: %w", r+1, t.Columns[c], err)
	}
	return v, nil
}

// Complex parses the cell at row r, column c as a complex number
// ("1.5+2i", "(1.5+2j)" and plain reals are accepted).
func (t *Table) Complex(r, c int) (complex128, error) {
	s := strings.Trim(t.Rows[r][c], "()")
	s = strings.ReplaceAll(s, "j", "i")
	v, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, fmt.Errorf("row %d column %s: %w", r+1, t.Columns[c], err)
	}
	return v, nil
}

// Header returns a header value without surrounding quotes.
func (t *Table) Header(name string) (string, bool) {
	v, ok := t.Headers[name]
	return v, ok
}

// split tokenizes on whitespace, keeping double-quoted cells intact and
// stripping their quotes.
func split(s string) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	has := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			has = true
		case !inQuote && (r == ' ' || r == '\t'):
			if has {
				out = append(out, b.String())
				b.Reset()
				has = false
			}
		default:
			b.WriteRune(r)
			has = true
		}
	}
	if has {
		out = append(out, b.String())
	}
	return out
}
