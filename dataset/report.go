package dataset

// Exclusion is the reason a model monitor was left out of a dataset.
type Exclusion int

const (
	// NoReference means the monitor was absent from the filtered reference.
	NoReference Exclusion = iota + 1
	// DuplicateReference means the reference listed the monitor more than once.
	DuplicateReference
	// Incomplete means the monitor was missing from at least one scan.
	Incomplete
	// DuplicateScan means a scan listed the monitor more than once.
	DuplicateScan
)

func (e Exclusion) String() string {
	switch e {
	case NoReference:
		return "no reference entry"
	case DuplicateReference:
		return "duplicate reference entry"
	case Incomplete:
		return "incomplete scan data"
	case DuplicateScan:
		return "duplicate scan entry"
	default:
		return "unknown"
	}
}

// SkippedScan is a scan source that was skipped.
type SkippedScan struct {
	Source string
	Err    error
}

// Report is the recoverable outcome of a build.
type Report struct {
	// Requested is the number of scan sources passed in.
	Requested int
	// Processed is the number of scan sources that were read.
	Processed int
	// Skipped lists scan sources that were skipped, with their cause.
	Skipped []SkippedScan
	// Rejected counts rows removed by the outlier filter.
	Rejected int
	// Excluded maps model monitors left out of the dataset to the reason.
	Excluded map[string]Exclusion
}
