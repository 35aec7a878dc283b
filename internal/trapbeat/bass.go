package trapbeat

import "math"

const (
	eighth            = 0.5
	bassSteps         = 8
	bassExtraChance   = 0.2
	bassPulseGate     = 0.9
	bassOffPulseGate  = 0.5
	bassVel           = 108
	bassVelSpread     = 14
	bassVelMin        = 80
	bassVelMax        = 127
	bassMinInterval   = 2
	maxGlideBeats     = 0.75
	glideCurveMin     = 6
	glideCurveSpread  = 4
	bassCeilingDepth  = 12
	bassFloorDepthMax = 36
)

// BassParams are the inputs to an 808 generation.
type BassParams struct {
	Compases    int
	BPM         float64
	Progression []Chord
	Scale       ScaleService
	Rhythm      RhythmService
	Tonic       int
	Mode        Mode
	Random      RandomSource
}

// BassGenerator produces the 808 line.
type BassGenerator interface {
	Generate(params BassParams) Pattern
}

// DefaultBassGenerator anchors the 808 on chord roots and annotates glides.
type DefaultBassGenerator struct{}

// NewBassGenerator returns the default 808 generator.
func NewBassGenerator() *DefaultBassGenerator {
	return &DefaultBassGenerator{}
}

// Generate draws a 4- or 5-of-8 eighth-note pattern per bar.
// A candidate closer than two semitones to the previous note is swapped for the first
// alternative that clears that gap; when none does, the candidate stays.
func (DefaultBassGenerator) Generate(params BassParams) Pattern {
	notes := []Note{}
	glides := []GlideEvent{}
	if len(params.Progression) == 0 {
		return Pattern{Notes: notes}
	}
	random := params.Random
	mask := params.Scale.Mask(posMod(params.Tonic, 12), params.Mode)
	var previous *Note

	for bar := 0; bar < params.Compases; bar++ {
		chord := params.Progression[bar%len(params.Progression)]
		root := params.Tonic
		if len(chord.Notes) > 0 {
			root = chord.Notes[0]
		}
		pulses := 4
		if random.Float64() > 0.5 {
			pulses = 5
		}
		pattern := params.Rhythm.Euclid(pulses, bassSteps, 0)

		for step, pulse := range pattern {
			if !pulse && random.Float64() > bassExtraChance {
				continue
			}
			t := float64(bar*4) + float64(step)*eighth

			candidates := []int{chord.BassNote, root, root - 5, root - 7}
			pick := clampInt(candidates[choose(len(candidates), random)],
				params.Tonic-bassFloorDepthMax, params.Tonic-bassCeilingDepth)
			midi := params.Scale.Quantize(pick, mask, params.Tonic)

			if previous != nil && absInt(previous.Midi-midi) < bassMinInterval {
				for _, alt := range []int{root - 12, root - 7, root - 5} {
					quantized := params.Scale.Quantize(alt, mask, params.Tonic)
					if absInt(previous.Midi-quantized) >= bassMinInterval {
						midi = quantized
						break
					}
				}
			}

			gate := bassOffPulseGate
			if pulse {
				gate = bassPulseGate
			}
			duration := eighth * gate
			velJitter := int(math.Floor(random.Float64()*bassVelSpread)) - bassVelSpread/2
			note := Note{
				T:    t,
				Dur:  duration,
				Midi: clampInt(midi, 0, midiMax),
				Vel:  clampInt(bassVel+velJitter, bassVelMin, bassVelMax),
			}
			notes = append(notes, note)

			if previous != nil && previous.Midi != note.Midi {
				glides = append(glides, GlideEvent{
					Start:    t,
					Duration: math.Min(duration, maxGlideBeats),
					FromMidi: previous.Midi,
					ToMidi:   note.Midi,
					CurveK:   glideCurveMin + random.Float64()*glideCurveSpread,
				})
			}
			previous = &note
		}
	}

	return Pattern{Notes: notes, Glides: glides}
}
