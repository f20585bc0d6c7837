package measurement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRDT is returned for malformed driving term names.
var ErrInvalidRDT = errors.New("invalid rdt")

// RDT identifies a resonance driving term f_jklm.
type RDT struct {
	J, K, L, M int
}

var magnetNames = map[int]string{
	2: "quadrupole",
	3: "sextupole",
	4: "octupole",
	5: "decapole",
	6: "dodecapole",
	7: "tetradecapole",
	8: "hexadecapole",
}

// ParseRDT parses names like "f1200" or "1200".
func ParseRDT(s string) (RDT, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "f")
	if len(v) != 4 {
		return RDT{}, fmt.Errorf("%w: %q", ErrInvalidRDT, s)
	}
	var d [4]int
	for i := 0; i < 4; i++ {
		c := v[i]
		if c < '0' || c > '9' {
			return RDT{}, fmt.Errorf("%w: %q", ErrInvalidRDT, s)
		}
		d[i] = int(c - '0')
	}
	r := RDT{J: d[0], K: d[1], L: d[2], M: d[3]}
	if _, ok := magnetNames[r.Order()]; !ok {
		return RDT{}, fmt.Errorf("%w: %q has unsupported order %d", ErrInvalidRDT, s, r.Order())
	}
	return r, nil
}

// MustParseRDT is like ParseRDT but panics on error.
func MustParseRDT(s string) RDT {
	r, err := ParseRDT(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the canonical name, e.g. "f1200".
func (r RDT) String() string {
	return fmt.Sprintf("f%d%d%d%d", r.J, r.K, r.L, r.M)
}

// Order is the magnet order j+k+l+m.
func (r RDT) Order() int { return r.J + r.K + r.L + r.M }

// Skew reports whether the term is driven by skew fields.
func (r RDT) Skew() bool { return (r.L+r.M)%2 == 1 }

// Category is the analysis output sub-directory, e.g. "normal_sextupole".
func (r RDT) Category() string {
	kind := "normal"
	if r.Skew() {
		kind = "skew"
	}
	return kind + "_" + magnetNames[r.Order()]
}

// FileName is the analysis output file name for the given plane.
func (r RDT) FileName(plane string) string {
	return r.String() + "_" + strings.ToLower(plane) + ".tfs"
}

// ValidPlane reports whether plane is "x" or "y".
func ValidPlane(plane string) bool {
	p := strings.ToLower(plane)
	return p == "x" || p == "y"
}
