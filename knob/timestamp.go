package knob

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// Kick files are named like Beam1@BunchTurn@2024_04_12@10_30_15_123.sdds.
var acquisitionRe = regexp.MustCompile(`@(\d{4})_(\d{2})_(\d{2})@(\d{2})_(\d{2})_(\d{2})_(\d{3})`)

const acquisitionLayout = "2006_01_02@15_04_05.000"

// AcquisitionTime parses the acquisition timestamp from a kick-file name.
func AcquisitionTime(name string, loc *time.Location) (time.Time, bool) {
	m := acquisitionRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	s := fmt.Sprintf("%s_%s_%s@%s_%s_%s.%s", m[1], m[2], m[3], m[4], m[5], m[6], m[7])
	t, err := time.ParseInLocation(acquisitionLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Lister returns the acquisition times behind a measurement source.
type Lister func(source string) ([]time.Time, error)

// FileNameLister parses the source itself when it is a kick-file name, and
// otherwise collects the timestamps of every kick file in the source
// directory, sorted ascending.
func FileNameLister(loc *time.Location) Lister {
	return func(source string) ([]time.Time, error) {
		if t, ok := AcquisitionTime(source, loc); ok {
			return []time.Time{t}, nil
		}
		entries, err := os.ReadDir(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, source, err)
		}
		var out []time.Time
		for _, e := range entries {
			if t, ok := AcquisitionTime(e.Name(), loc); ok {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
		return out, nil
	}
}
