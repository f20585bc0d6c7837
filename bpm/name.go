package bpm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Family is the name prefix shared by all standard arc and IR monitors.
const Family = "BPM"

// ArcIndex is the smallest monitor index counted as arc.
const ArcIndex = 10

// ErrInvalidName is returned when a monitor name cannot be parsed.
var ErrInvalidName = errors.New("invalid bpm name")

// Name is a parsed monitor name.
type Name struct {
	Family string
	Index  int
	Side   byte // 'L' or 'R' of the interaction point
	IP     int
	Beam   int // 0 when the name carries no beam suffix
}

// ParseName splits a monitor name like "BPM.13L2.B1" into its parts.
func ParseName(s string) (Name, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || parts[0] == "" {
		return Name{}, fmt.Errorf("%w: %q", ErrInvalidName, s)
	}

	n := Name{Family: parts[0]}

	loc := parts[1]
	i := strings.IndexAny(loc, "LR")
	if i <= 0 {
		return Name{}, fmt.Errorf("%w: %q has no side marker", ErrInvalidName, s)
	}
	idx, err := strconv.Atoi(loc[:i])
	if err != nil {
		return Name{}, fmt.Errorf("%w: %q: %w", ErrInvalidName, s, err)
	}
	n.Index = idx
	n.Side = loc[i]
	if i+1 < len(loc) {
		// Some IR monitors carry a trailing qualifier after the IP digit.
		digits := loc[i+1:]
		end := 0
		for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
			end++
		}
		if end > 0 {
			n.IP, _ = strconv.Atoi(digits[:end])
		}
	}

	if len(parts) > 2 {
		if b, ok := strings.CutPrefix(parts[len(parts)-1], "B"); ok {
			if beam, err := strconv.Atoi(b); err == nil {
				n.Beam = beam
			}
		}
	}
	return n, nil
}

// IsArc reports whether the monitor belongs to the BPM family and sits in the
// regular arc lattice.
func IsArc(name string) bool {
	n, err := ParseName(name)
	if err != nil {
		return false
	}
	return n.Family == Family && n.Index >= ArcIndex
}

// BeamOf returns the beam number encoded in the name suffix, or 0.
func BeamOf(name string) int {
	n, err := ParseName(name)
	if err != nil {
		return 0
	}
	return n.Beam
}

// ErrInvalidBeam is returned when a beam identifier cannot be parsed.
var ErrInvalidBeam = errors.New("invalid beam identifier")

// ParseBeam accepts "1", "B1", "beam1" and "LHCB1" (case-insensitive) and
// returns the beam number.
func ParseBeam(s string) (int, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range []string{"LHCB", "BEAM", "B"} {
		if rest, ok := strings.CutPrefix(v, p); ok {
			v = rest
			break
		}
	}
	b, err := strconv.Atoi(v)
	if err != nil || b <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBeam, s)
	}
	return b, nil
}

// BeamName returns the canonical accelerator-qualified beam name, e.g. "LHCB1".
func BeamName(beam int) string {
	return "LHCB" + strconv.Itoa(beam)
}
