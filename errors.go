package feeddown

import (
	"errors"

	"github.com/hupe1980/feeddown/dataset"
	"github.com/hupe1980/feeddown/fit"
	"github.com/hupe1980/feeddown/group"
	"github.com/hupe1980/feeddown/knob"
	"github.com/hupe1980/feeddown/measurement"
)

// Error kinds. Match them with errors.Is; the typed errors of the
// subpackages (BeamMismatchError, MetadataConflictError, ValidationError,
// FitError) are reachable with errors.As.
var (
	// ErrFileNotFound: a measurement or model file is missing.
	ErrFileNotFound = measurement.ErrNotFound
	// ErrBeamMismatch: a file belongs to the other beam.
	ErrBeamMismatch = measurement.ErrBeamMismatch
	// ErrKnobNotFound: no knob value for a source.
	ErrKnobNotFound = knob.ErrNotFound
	// ErrKnobInconsistent: the knob changed during an acquisition.
	ErrKnobInconsistent = knob.ErrInconsistent
	// ErrEmptyIntersection: no monitor is complete.
	ErrEmptyIntersection = dataset.ErrEmptyIntersection
	// ErrNoScans: no scan could be processed.
	ErrNoScans = dataset.ErrNoScans
	// ErrMetadataConflict: datasets disagree on their metadata.
	ErrMetadataConflict = group.ErrMetadataConflict
	// ErrDuplicateBPM: datasets carry different data for one monitor.
	ErrDuplicateBPM = group.ErrDuplicateBPM
	// ErrFitFailure: a monitor could not be fitted.
	ErrFitFailure = fit.ErrFitFailure
	// ErrValidation: a persisted dataset is malformed.
	ErrValidation = dataset.ErrValidation

	// ErrNoStore is returned by persistence methods without a configured store.
	ErrNoStore = errors.New("no result store configured")
	// ErrNoDatasets is returned when every dataset passed to grouping was rejected.
	ErrNoDatasets = errors.New("no valid dataset")
)
