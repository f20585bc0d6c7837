package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorNames(t *testing.T) {
	names := MonitorNames(2, 4)
	assert.Equal(t, []string{"BPM.10L1.B2", "BPM.10R1.B2", "BPM.12L1.B2", "BPM.12R1.B2"}, names)
}

func TestResponse(t *testing.T) {
	r := Response([]string{"A"}, 2, 0.5, -1)
	assert.InDelta(t, 2.0, r[0].Real, 1e-12)
	assert.InDelta(t, -1.5, r[0].Imag, 1e-12)
	assert.InDelta(t, 2.5, r[0].Amplitude(), 1e-12)
}

func TestRNG(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	assert.Equal(t, a.Float64(), b.Float64())
	assert.Equal(t, a.Normal(1, 2), b.Normal(1, 2))
	assert.Equal(t, int64(7), a.Seed())
}
