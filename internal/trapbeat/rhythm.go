package trapbeat

import "math"

const gridEpsilon = 1e-6

// RhythmService builds Euclidean pulse patterns and swings offbeats.
type RhythmService interface {
	Euclid(k, n, offset int) []bool
	Swing(t, strength, bpm float64) float64
}

// DefaultRhythmService implements RhythmService.
type DefaultRhythmService struct{}

// NewRhythmService returns the default rhythm service.
func NewRhythmService() *DefaultRhythmService {
	return &DefaultRhythmService{}
}

// Euclid spreads k pulses over n steps and rotates the result left by offset.
func (DefaultRhythmService) Euclid(k, n, offset int) []bool {
	base := bjorklund(k, n)
	if offset == 0 || n <= 0 {
		return base
	}
	rotated := make([]bool, n)
	for i := range rotated {
		rotated[i] = base[posMod(i+offset, n)]
	}
	return rotated
}

func bjorklund(pulses, steps int) []bool {
	if steps <= 0 {
		return []bool{}
	}
	pattern := make([]bool, steps)
	if pulses <= 0 {
		return pattern
	}
	if pulses >= steps {
		for i := range pattern {
			pattern[i] = true
		}
		return pattern
	}
	bucket := 0
	for i := range pattern {
		bucket += pulses
		if bucket >= steps {
			bucket -= steps
			pattern[i] = true
		}
	}
	return pattern
}

// Swing delays offbeat eighth positions by strength eighths. The eighth length is derived
// from bpm; on-grid positions and downbeats come back unchanged.
func (DefaultRhythmService) Swing(t, strength, bpm float64) float64 {
	if bpm <= 0 {
		return t
	}
	beatDuration := 60 / bpm
	eighthDuration := beatDuration / 2
	position := t / eighthDuration
	offGrid := math.Abs(position-math.Round(position)) > gridEpsilon
	if !offGrid || int(math.Floor(position))%2 != 0 {
		return t
	}
	return t + strength*eighthDuration
}
