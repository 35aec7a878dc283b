package trapbeat

import "math"

const (
	bassSwingRatio = 0.6
	correctionMix  = 0.5
)

// Dependencies are the collaborators the Generator sequences. Any of them can be swapped
// for a substitute honouring the same contract.
type Dependencies struct {
	Scale      ScaleService
	Harmony    HarmonyService
	Rhythm     RhythmService
	Melody     MelodyGenerator
	Percussion PercussionGenerator
	Bass       BassGenerator
	Humanizer  Humanizer
	Evaluator  Evaluator
}

// DefaultDependencies wires the default implementation of every collaborator.
func DefaultDependencies() Dependencies {
	harmony := NewHarmonyService()
	return Dependencies{
		Scale:      NewScaleService(),
		Harmony:    harmony,
		Rhythm:     NewRhythmService(),
		Melody:     NewMelodyGenerator(harmony),
		Percussion: NewPercussionGenerator(),
		Bass:       NewBassGenerator(),
		Humanizer:  NewHumanizer(),
		Evaluator:  NewEvaluator(),
	}
}

// Generator turns a Config into an OutputPattern. It holds no per-call state, so one
// Generator can serve concurrent calls.
type Generator struct {
	deps Dependencies
}

// NewGenerator returns a Generator over deps.
func NewGenerator(deps Dependencies) *Generator {
	return &Generator{deps: deps}
}

// NewDefaultGenerator returns a Generator over DefaultDependencies.
func NewDefaultGenerator() *Generator {
	return NewGenerator(DefaultDependencies())
}

// Generate runs the pipeline. With a seed the result is reproducible: the random stream
// is consumed by progression, melody, hats, bass, then humanization of melody, hats and
// bass, always in that order.
func (g *Generator) Generate(cfg Config) OutputPattern {
	var random RandomSource
	if cfg.RandomSeed != nil {
		random = NewSeededRandom(*cfg.RandomSeed)
	} else {
		random = NewRandom()
	}
	return g.generate(cfg, random)
}

func (g *Generator) generate(cfg Config, random RandomSource) OutputPattern {
	r := resolveConfig(cfg)
	d := g.deps

	scaleMask := d.Scale.Mask(posMod(r.tonic, 12), r.mode)
	scaleNotes := d.Scale.ScaleNotes(r.tonic, r.mode, scaleOctaves)

	progression := d.Harmony.BuildProgression(ProgressionParams{
		Compases:  r.compases,
		TonicMidi: r.tonic,
		Mode:      r.mode,
		Scale:     scaleNotes,
		Random:    random,
	})
	if len(progression) == 0 && r.compases > 0 {
		progression = []Chord{fallbackChord(r.tonic)}
	}

	melody := d.Melody.Generate(MelodyParams{
		Compases:    r.compases,
		BPM:         r.bpm,
		Progression: progression,
		Scale:       d.Scale,
		ScaleMask:   scaleMask,
		Tonic:       r.tonic,
		Range:       r.melodyRange,
		Random:      random,
	})
	hats := d.Percussion.Generate(PercussionParams{
		Compases: r.compases,
		BPM:      r.bpm,
		Swing:    r.swing,
		Rhythm:   d.Rhythm,
		Random:   random,
	})
	bass := d.Bass.Generate(BassParams{
		Compases:    r.compases,
		BPM:         r.bpm,
		Progression: progression,
		Scale:       d.Scale,
		Rhythm:      d.Rhythm,
		Tonic:       r.tonic,
		Mode:        r.mode,
		Random:      random,
	})

	melody = applySwing(melody, r.swing, r.bpm, d.Rhythm)
	bass = applySwing(bass, r.swing*bassSwingRatio, r.bpm, d.Rhythm)

	melody = d.Humanizer.Humanize(melody, HumanizeParams{HumanizeFeel: MelodyFeel, BPM: r.bpm, Random: random})
	hats = d.Humanizer.Humanize(hats, HumanizeParams{HumanizeFeel: HatsFeel, BPM: r.bpm, Random: random})
	bass = d.Humanizer.Humanize(bass, HumanizeParams{HumanizeFeel: BassFeel, BPM: r.bpm, Random: random})

	darkness := d.Evaluator.Dissonance(melody, progression, r.tonic)
	meta := Metadata{
		BPM:                      r.bpm,
		Swing:                    r.swing,
		TonicMidi:                r.tonic,
		Mode:                     r.mode,
		Compases:                 r.compases,
		Darkness:                 darkness,
		Seed:                     cfg.RandomSeed,
		DarknessBeforeCorrection: darkness,
	}

	if darkness > r.ceiling {
		melody = g.pullTowardChords(melody, progression, scaleMask, r.melodyRange)
		meta.Darkness = d.Evaluator.Dissonance(melody, progression, r.tonic)
		meta.Corrected = true
	}

	if progression == nil {
		progression = []Chord{}
	}
	return OutputPattern{
		Melody:   melody,
		Hats:     hats,
		Bass808:  bass,
		Chords:   progression,
		Metadata: meta,
	}
}

func applySwing(pattern Pattern, swing, bpm float64, rhythm RhythmService) Pattern {
	if swing <= 0 {
		return pattern
	}
	notes := make([]Note, len(pattern.Notes))
	for i, note := range pattern.Notes {
		note.T = rhythm.Swing(note.T, swing, bpm)
		notes[i] = note
	}
	return Pattern{Notes: notes, Glides: pattern.Glides}
}

// pullTowardChords is the single corrective pass: each note moves half way to the nearest
// tone of its bar's chord, then on toward that tone until it is back in the scale. A move
// that would leave the melody range is dropped. It is not iterated.
func (g *Generator) pullTowardChords(melody Pattern, progression []Chord, mask ScaleMask, melodyRange [2]int) Pattern {
	if len(progression) == 0 {
		return melody
	}
	notes := make([]Note, len(melody.Notes))
	for i, note := range melody.Notes {
		chord := chordForTime(note.T, progression)
		tones := g.deps.Harmony.ChordTones(chord)
		if len(tones) == 0 {
			notes[i] = note
			continue
		}
		closest := nearestTone(note.Midi, tones)
		corrected := int(math.Round(float64(closest)*correctionMix + float64(note.Midi)*(1-correctionMix)))
		for !mask.Contains(corrected) && corrected != closest {
			if closest > corrected {
				corrected++
			} else {
				corrected--
			}
		}
		if corrected >= melodyRange[0] && corrected <= melodyRange[1] {
			note.Midi = clampInt(corrected, 0, midiMax)
		}
		notes[i] = note
	}
	return Pattern{Notes: notes, Glides: melody.Glides}
}
