package bpm

// Monitors known to deliver unreliable amplitude or phase readings.
var (
	knownBadBeam1 = []string{
		"BPM.13L2.B1",
		"BPM.22R8.B1",
		"BPM.33L4.B1",
		"BPM.16L7.B1",
	}
	knownBadBeam2 = []string{
		"BPM.11R3.B2",
		"BPM.25L5.B2",
		"BPM.14R1.B2",
	}
)

// Classifier combines the arc predicate with per-beam deny lists.
//
// The zero value treats no monitor as known-bad.
type Classifier struct {
	bad map[int]map[string]struct{}
}

// DefaultClassifier returns a classifier with the built-in deny lists.
func DefaultClassifier() *Classifier {
	return NewClassifier(map[int][]string{
		1: knownBadBeam1,
		2: knownBadBeam2,
	})
}

// NewClassifier builds a classifier from explicit deny lists keyed by beam.
func NewClassifier(denied map[int][]string) *Classifier {
	c := &Classifier{bad: make(map[int]map[string]struct{}, len(denied))}
	for beam, names := range denied {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		c.bad[beam] = set
	}
	return c
}

// KnownBad reports whether name is on the deny list of the given beam.
func (c *Classifier) KnownBad(beam int, name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.bad[beam][name]
	return ok
}

// Good reports whether name is an arc monitor that is not known-bad.
func (c *Classifier) Good(beam int, name string) bool {
	return IsArc(name) && !c.KnownBad(beam, name)
}

// Denied returns a copy of the deny list for a beam.
func (c *Classifier) Denied(beam int) []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.bad[beam]))
	for n := range c.bad[beam] {
		out = append(out, n)
	}
	return out
}
