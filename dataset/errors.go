package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoScans is returned when no scan source could be processed.
	ErrNoScans = errors.New("no scan measurement processed")

	// ErrEmptyIntersection is returned when no monitor is complete.
	ErrEmptyIntersection = errors.New("empty BPM intersection")

	// ErrInvalidInput is returned for incomplete build inputs.
	ErrInvalidInput = errors.New("invalid build input")

	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("dataset validation failed")
)

// ValidationError reports a persisted dataset with a missing or malformed key.
type ValidationError struct {
	Source string
	Key    string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "invalid dataset"
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Key != "" {
		msg += fmt.Sprintf(": key %q", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying decode error, if any.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FitError reports a monitor whose fit failed. It wraps fit.ErrFitFailure.
type FitError struct {
	BPM     string
	Channel string
	Err     error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit %s (%s): %v", e.BPM, e.Channel, e.Err)
}

// Unwrap returns the underlying fit error.
func (e *FitError) Unwrap() error { return e.Err }
