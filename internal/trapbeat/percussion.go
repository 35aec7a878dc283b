package trapbeat

import "math"

const (
	sixteenth        = 0.25
	hatDensity       = 11
	hatSteps         = 16
	hatGhostChance   = 0.1
	hatRollChance    = 0.35
	hatJitterBeats   = 0.01
	hatVelSpread     = 10
	hatVelMin        = 50
	hatVelMax        = 118
	hatGateRatio     = 0.6
	closedHatMidi    = 42
	hatVelHalfSpread = hatVelSpread / 2
)

var rollSubdivisions = []int{2, 3, 4, 6}

// PercussionParams are the inputs to a hi-hat generation.
type PercussionParams struct {
	Compases int
	BPM      float64
	Swing    float64
	Rhythm   RhythmService
	Random   RandomSource
}

// PercussionGenerator produces the hi-hat track.
type PercussionGenerator interface {
	Generate(params PercussionParams) Pattern
}

// DefaultPercussionGenerator lays an 11-of-16 Euclidean hat line with ghost hits and rolls.
type DefaultPercussionGenerator struct{}

// NewPercussionGenerator returns the default hi-hat generator.
func NewPercussionGenerator() *DefaultPercussionGenerator {
	return &DefaultPercussionGenerator{}
}

// Generate builds hats bar by bar, alternating the Euclidean offset between bars.
func (DefaultPercussionGenerator) Generate(params PercussionParams) Pattern {
	notes := []Note{}
	random := params.Random

	for bar := 0; bar < params.Compases; bar++ {
		base := params.Rhythm.Euclid(hatDensity, hatSteps, bar%2)
		for step, pulse := range base {
			if !pulse && random.Float64() > hatGhostChance {
				continue
			}

			baseTime := float64(bar*4) + float64(step)*sixteenth
			roll := pulse && random.Float64() < hatRollChance && step%4 == 0
			subdivision := 1
			if roll {
				subdivision = rollSubdivisions[choose(len(rollSubdivisions), random)]
			}
			stepDuration := sixteenth / float64(subdivision)

			for i := 0; i < subdivision; i++ {
				rawTime := baseTime + float64(i)*stepDuration
				t := rawTime
				if params.Swing > 0 {
					t = params.Rhythm.Swing(rawTime, params.Swing, params.BPM)
				}
				jitter := (random.Float64() - 0.5) * hatJitterBeats
				velJitter := int(math.Floor(random.Float64()*hatVelSpread)) - hatVelHalfSpread
				notes = append(notes, Note{
					T:    t + jitter,
					Dur:  stepDuration * hatGateRatio,
					Midi: closedHatMidi,
					Vel:  clampInt(hatAccent(step)+velJitter, hatVelMin, hatVelMax),
				})
			}
		}
	}

	return Pattern{Notes: notes}
}

// hatAccent is the base velocity by position within the beat.
func hatAccent(step int) int {
	switch step % 4 {
	case 0:
		return 108
	case 2:
		return 96
	default:
		return 82
	}
}
