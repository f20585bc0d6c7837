// Package knob resolves the control-knob setting that was active when a
// measurement was acquired.
//
// Two families of resolvers are provided: HistoryResolver looks the setting
// up in a time-series store (DynamoHistory is the DynamoDB-backed store) at
// the acquisition times encoded in the kick-file names, and TableResolver
// matches file names against a precomputed table, as used for simulations.
package knob

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no knob value can be resolved for a source.
	// Scan sources that fail with it are skipped; a reference source is fatal.
	ErrNotFound = errors.New("knob not found")

	// ErrInconsistent matches any *InconsistentError.
	ErrInconsistent = errors.New("inconsistent knob values")
)

// Resolver maps a measurement source to the knob value set at acquisition.
type Resolver interface {
	Resolve(ctx context.Context, source string) (float64, error)
}

// Func adapts a function to the Resolver interface.
type Func func(ctx context.Context, source string) (float64, error)

// Resolve implements Resolver.
func (f Func) Resolve(ctx context.Context, source string) (float64, error) {
	return f(ctx, source)
}

// Static resolves every source listed in the map to its value.
type Static map[string]float64

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, source string) (float64, error) {
	v, ok := s[source]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	return v, nil
}

// InconsistentError reports acquisitions of one source that saw different
// knob settings.
type InconsistentError struct {
	Source string
	Knob   string
	Values []float64
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("%s: knob %s changed during acquisition: %v", e.Source, e.Knob, e.Values)
}

// Is makes errors.Is(err, ErrInconsistent) match.
func (e *InconsistentError) Is(target error) bool { return target == ErrInconsistent }
