package trapbeat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPulses(pattern []bool) int {
	n := 0
	for _, p := range pattern {
		if p {
			n++
		}
	}
	return n
}

func TestEuclidPulseCount(t *testing.T) {
	svc := NewRhythmService()
	for n := 1; n <= 16; n++ {
		for k := 0; k <= n; k++ {
			pattern := svc.Euclid(k, n, 0)
			require.Len(t, pattern, n)
			require.Equal(t, k, countPulses(pattern), "k=%d n=%d", k, n)
		}
	}
}

func TestEuclidKnownPatterns(t *testing.T) {
	svc := NewRhythmService()

	tests := []struct {
		name     string
		k, n     int
		expected []bool
	}{
		{"tresillo", 3, 8, []bool{false, false, true, false, false, true, false, true}},
		{"five of eight", 5, 8, []bool{false, true, false, true, true, false, true, true}},
		{"none", 0, 4, []bool{false, false, false, false}},
		{"negative pulses", -2, 3, []bool{false, false, false}},
		{"saturated", 6, 4, []bool{true, true, true, true}},
		{"no steps", 3, 0, []bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.Euclid(tt.k, tt.n, 0))
		})
	}
}

func TestEuclidOffsetIsRotation(t *testing.T) {
	svc := NewRhythmService()
	base := svc.Euclid(11, 16, 0)
	for _, offset := range []int{1, 3, 15, 16, 17, -1, -20} {
		rotated := svc.Euclid(11, 16, offset)
		require.Len(t, rotated, 16)
		for i := range rotated {
			assert.Equal(t, base[posMod(i+offset, 16)], rotated[i], "offset %d index %d", offset, i)
		}
	}
}

func TestSwing(t *testing.T) {
	svc := NewRhythmService()
	const bpm = 120.0 // eighth = 0.25s

	tests := []struct {
		name     string
		t        float64
		strength float64
		expected float64
	}{
		{"grid position unchanged", 0.5, 0.2, 0.5},
		{"zero unchanged", 0, 0.2, 0},
		{"even floor off-grid delayed", 0.1, 0.2, 0.15},
		{"odd floor off-grid unchanged", 0.3, 0.2, 0.3},
		{"zero strength", 0.1, 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, svc.Swing(tt.t, tt.strength, bpm), 1e-9)
		})
	}
}

func TestSwingNonPositiveBPM(t *testing.T) {
	svc := NewRhythmService()
	assert.Equal(t, 0.1, svc.Swing(0.1, 0.2, 0))
	assert.Equal(t, 0.1, svc.Swing(0.1, 0.2, -90))
}
