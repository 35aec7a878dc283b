package trapbeat

import "math"

// Per-track humanization. Hats are tightest in time, loosest in dynamics.
var (
	MelodyFeel = HumanizeFeel{TimingStdMs: 8, VelocityStd: 6}
	HatsFeel   = HumanizeFeel{TimingStdMs: 4, VelocityStd: 10}
	BassFeel   = HumanizeFeel{TimingStdMs: 6, VelocityStd: 4}
)

// HumanizeFeel holds the jitter standard deviations for one track.
type HumanizeFeel struct {
	TimingStdMs float64
	VelocityStd float64
}

// HumanizeParams are the inputs to Humanize.
type HumanizeParams struct {
	HumanizeFeel
	BPM    float64
	Random RandomSource
}

// Humanizer perturbs timing and velocity.
type Humanizer interface {
	Humanize(pattern Pattern, params HumanizeParams) Pattern
}

// DefaultHumanizer applies Gaussian jitter, two draws per note.
type DefaultHumanizer struct{}

// NewHumanizer returns the default humanizer.
func NewHumanizer() *DefaultHumanizer {
	return &DefaultHumanizer{}
}

// Humanize returns a copy of pattern with jittered onsets and velocities. Glides are kept.
func (DefaultHumanizer) Humanize(pattern Pattern, params HumanizeParams) Pattern {
	timingStdBeats := 0.0
	if params.BPM > 0 {
		beatSeconds := 60 / params.BPM
		timingStdBeats = (params.TimingStdMs / 1000) / beatSeconds
	}

	notes := make([]Note, len(pattern.Notes))
	for i, note := range pattern.Notes {
		timeJitter := gaussian(params.Random) * timingStdBeats
		velJitter := gaussian(params.Random) * params.VelocityStd
		note.T += timeJitter
		note.Vel = clampInt(int(math.Round(float64(note.Vel)+velJitter)), 0, midiMax)
		notes[i] = note
	}

	return Pattern{Notes: notes, Glides: pattern.Glides}
}

// gaussian is a Box–Muller standard normal sample. Zero draws are redrawn.
func gaussian(random RandomSource) float64 {
	u1 := 0.0
	for u1 == 0 {
		u1 = random.Float64()
	}
	u2 := 0.0
	for u2 == 0 {
		u2 = random.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
