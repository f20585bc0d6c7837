// Package codec centralizes dataset encoding.
//
// Persisted datasets are plain JSON, so every codec here reads the output of
// every other one. Codecs differ in speed and in layout only.
package codec

import "strings"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

var builtin = []Codec{GoJSON{}, JSON{}, Pretty{}}

// ByName returns a built-in codec by its name. Matching ignores case.
func ByName(name string) (Codec, bool) {
	for _, c := range builtin {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

// Names lists the names of the built-in codecs.
func Names() []string {
	out := make([]string, len(builtin))
	for i, c := range builtin {
		out[i] = c.Name()
	}
	return out
}
