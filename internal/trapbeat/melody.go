package trapbeat

import "math"

type weightedStep struct {
	step   int
	weight float64
}

type weightedDuration struct {
	dur    float64
	weight float64
}

// Small downward motion is the most likely step.
var stepDistribution = []weightedStep{
	{step: -1, weight: 0.35},
	{step: 1, weight: 0.25},
	{step: -2, weight: 0.18},
	{step: 2, weight: 0.12},
	{step: -3, weight: 0.06},
	{step: 3, weight: 0.04},
}

var durationDistribution = []weightedDuration{
	{dur: 0.5, weight: 0.10},
	{dur: 0.25, weight: 0.25},
	{dur: 0.125, weight: 0.40},
	{dur: 0.0625, weight: 0.15},
	{dur: 1.0 / 12, weight: 0.06},
	{dur: 1.0 / 24, weight: 0.04},
}

const (
	melodyDriftBias     = 0.2
	minMelodyDuration   = 0.0625
	melodyStrongVel     = 100
	melodyWeakVel       = 88
	melodyVelSpread     = 12
	melodyVelMin        = 50
	melodyVelMax        = 120
	melodyVelHalfSpread = melodyVelSpread / 2
)

// MelodyParams are the inputs to a melody generation.
type MelodyParams struct {
	Compases    int
	BPM         float64
	Progression []Chord
	Scale       ScaleService
	ScaleMask   ScaleMask
	Tonic       int
	Range       [2]int
	Random      RandomSource
}

// MelodyGenerator produces the lead contour.
type MelodyGenerator interface {
	Generate(params MelodyParams) Pattern
}

// DefaultMelodyGenerator walks the scale and lands on chord tones on the beat.
type DefaultMelodyGenerator struct {
	harmony   HarmonyService
	driftBias float64
}

// NewMelodyGenerator returns a melody generator reading chord tones from harmony.
func NewMelodyGenerator(harmony HarmonyService) *DefaultMelodyGenerator {
	return &DefaultMelodyGenerator{harmony: harmony, driftBias: melodyDriftBias}
}

// Generate fills compases*4 beats with a monophonic random walk.
func (g *DefaultMelodyGenerator) Generate(params MelodyParams) Pattern {
	totalBeats := float64(params.Compases * 4)
	notes := []Note{}
	if len(params.Progression) == 0 {
		return Pattern{Notes: notes}
	}

	lo, hi := params.Range[0], params.Range[1]
	first := params.Tonic
	if tones := params.Progression[0].Notes; len(tones) > 0 {
		first = tones[0]
	}
	start := params.Scale.Quantize(first, params.ScaleMask, params.Tonic)
	reference := clampInt(start, lo, hi)
	currentTime := 0.0
	// drift accumulates fractional downward pull; whole semitones come off the next step
	drift := 0.0

	for currentTime < totalBeats-gridEpsilon {
		remaining := totalBeats - currentTime
		duration := math.Min(pickDuration(params.Random), remaining)
		if remaining < minMelodyDuration {
			duration = remaining
		}

		step := pickStep(params.Random)
		shift := int(math.Floor(drift + gridEpsilon))
		drift -= float64(shift)
		candidate := clampInt(reference-shift+step, lo, hi)
		candidate = params.Scale.Quantize(candidate, params.ScaleMask, params.Tonic)
		candidate = foldIntoRange(candidate, lo, hi)

		strong := onBeat(currentTime)
		if strong {
			chord := chordForTime(currentTime, params.Progression)
			tone := nearestTone(candidate, g.harmony.ChordTones(chord))
			if tone >= lo && tone <= hi {
				candidate = tone
			}
		}

		accent := melodyWeakVel
		if strong {
			accent = melodyStrongVel
		}
		jitter := int(math.Floor(params.Random.Float64()*melodyVelSpread)) - melodyVelHalfSpread
		velocity := clampInt(accent+jitter, melodyVelMin, melodyVelMax)

		notes = append(notes, Note{
			T:    currentTime,
			Dur:  duration,
			Midi: clampInt(candidate, 0, midiMax),
			Vel:  velocity,
		})
		reference = candidate
		drift += g.driftBias
		currentTime += duration
	}

	return Pattern{Notes: notes}
}

// foldIntoRange shifts an out-of-range pitch by an octave, keeping its pitch class.
// When the range is narrower than that allows, the pitch is clamped.
func foldIntoRange(midi, lo, hi int) int {
	switch {
	case midi > hi && midi-12 >= lo:
		return midi - 12
	case midi < lo && midi+12 <= hi:
		return midi + 12
	default:
		return clampInt(midi, lo, hi)
	}
}

// onBeat reports whether t sits on a whole beat. Times just below a beat do not count.
func onBeat(t float64) bool {
	return math.Mod(t, 1) < gridEpsilon
}

func pickStep(random RandomSource) int {
	total := 0.0
	for _, option := range stepDistribution {
		total += option.weight
	}
	target := random.Float64() * total
	acc := 0.0
	for _, option := range stepDistribution {
		acc += option.weight
		if target <= acc {
			return option.step
		}
	}
	return stepDistribution[len(stepDistribution)-1].step
}

func pickDuration(random RandomSource) float64 {
	total := 0.0
	for _, option := range durationDistribution {
		total += option.weight
	}
	target := random.Float64() * total
	acc := 0.0
	for _, option := range durationDistribution {
		acc += option.weight
		if target <= acc {
			return option.dur
		}
	}
	return durationDistribution[len(durationDistribution)-1].dur
}
