package knob

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// TableEntry maps file names matching Pattern to Value.
type TableEntry struct {
	Pattern *regexp.Regexp
	Value   float64
}

// TableResolver resolves a source by matching its file name against a
// precomputed table; the first matching entry wins.
type TableResolver struct {
	entries []TableEntry
}

// NewTableResolver creates a resolver from entries.
func NewTableResolver(entries []TableEntry) *TableResolver {
	return &TableResolver{entries: entries}
}

// LoadTable reads a table file with one "<regexp> <value>" pair per line.
// Blank lines and lines starting with '#' are ignored.
func LoadTable(path string) (*TableResolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTable reads table entries from r.
func ParseTable(r io.Reader) (*TableResolver, error) {
	var entries []TableEntry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected pattern and value", line)
		}
		re, err := regexp.Compile(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, TableEntry{Pattern: re, Value: v})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewTableResolver(entries), nil
}

// Resolve implements Resolver.
func (t *TableResolver) Resolve(ctx context.Context, source string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	name := filepath.Base(source)
	for _, e := range t.entries {
		if e.Pattern.MatchString(name) {
			return e.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: no table entry matches %s", ErrNotFound, name)
}
