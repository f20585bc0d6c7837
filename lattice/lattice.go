// Package lattice loads the monitor positions of the accelerator model.
package lattice

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/feeddown/internal/tfs"
	"github.com/hupe1980/feeddown/measurement"
)

// Model holds the ordered monitor names of a lattice and their longitudinal
// positions.
type Model struct {
	Names []string
	S     map[string]float64
}

// Load reads a twiss table and keeps every element whose name starts with
// the BPM family prefix.
func Load(path string) (*Model, error) {
	t, err := tfs.ReadFile(path)
	if err != nil {
		return nil, wrapErr(path, err)
	}
	nameCol, err := t.Col("NAME")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sCol, err := t.Col("S")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m := &Model{S: make(map[string]float64)}
	for i, cells := range t.Rows {
		name := cells[nameCol]
		if !strings.HasPrefix(strings.ToUpper(name), "BPM") {
			continue
		}
		if _, dup := m.S[name]; dup {
			continue
		}
		s, err := t.Float(i, sCol)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.Names = append(m.Names, name)
		m.S[name] = s
	}
	return m, nil
}

// New builds a model from explicit names and positions.
func New(names []string, s []float64) *Model {
	m := &Model{Names: make([]string, 0, len(names)), S: make(map[string]float64, len(names))}
	for i, n := range names {
		if _, dup := m.S[n]; dup {
			continue
		}
		m.Names = append(m.Names, n)
		if i < len(s) {
			m.S[n] = s[i]
		} else {
			m.S[n] = 0
		}
	}
	return m
}

// Len returns the number of monitors.
func (m *Model) Len() int { return len(m.Names) }

// Has reports whether the model contains the monitor.
func (m *Model) Has(name string) bool {
	_, ok := m.S[name]
	return ok
}

// wrapErr maps missing files onto the shared not-found kind.
func wrapErr(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load model: %w: %s", measurement.ErrNotFound, path)
	}
	return fmt.Errorf("load model: %w", err)
}
