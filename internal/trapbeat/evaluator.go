package trapbeat

import "math"

const avoidPenalty = 0.5

// Evaluator scores how far a track sits from the harmony.
type Evaluator interface {
	Dissonance(pattern Pattern, progression []Chord, tonic int) float64
}

// DefaultEvaluator averages metric-weighted distances to the bar's chord tones.
type DefaultEvaluator struct{}

// NewEvaluator returns the default evaluator.
func NewEvaluator() *DefaultEvaluator {
	return &DefaultEvaluator{}
}

// Dissonance is 0 for an empty pattern or progression. Notes on the minor second above
// the tonic carry a flat penalty.
func (DefaultEvaluator) Dissonance(pattern Pattern, progression []Chord, tonic int) float64 {
	if len(pattern.Notes) == 0 || len(progression) == 0 {
		return 0
	}

	avoid := posMod(tonic+1, 12)
	acc := 0.0
	for _, note := range pattern.Notes {
		chord := chordForTime(note.T, progression)
		acc += metricWeight(note.T) * float64(minDistance(note.Midi, chord.Notes))
		if posMod(note.Midi, 12) == avoid {
			acc += avoidPenalty
		}
	}
	return acc / float64(len(pattern.Notes))
}

// metricWeight favours notes on the beat, then early in the beat.
func metricWeight(t float64) float64 {
	switch {
	case onBeat(t):
		return 1.5
	case math.Mod(t, 1) < 0.5:
		return 1.1
	default:
		return 0.8
	}
}

func minDistance(midi int, tones []int) int {
	if len(tones) == 0 {
		return 0
	}
	return absInt(midi - nearestTone(midi, tones))
}
