package trapbeat

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPtr(v uint32) *uint32 { return &v }

func floatPtr(v float64) *float64 { return &v }

func referenceConfig() Config {
	return Config{
		BPM:             142,
		Compases:        4,
		TonicMidi:       54,
		Mode:            ModeHarmonic,
		RandomSeed:      seedPtr(1337),
		DarknessCeiling: floatPtr(8),
		MelodyRange:     &[2]int{54, 78},
	}
}

func TestGenerateReferenceScenario(t *testing.T) {
	out := NewDefaultGenerator().Generate(referenceConfig())

	assert.Len(t, out.Chords, 4)
	assert.NotEmpty(t, out.Melody.Notes)
	assert.NotEmpty(t, out.Hats.Notes)
	assert.NotEmpty(t, out.Bass808.Notes)

	mask := NewScaleService().Mask(out.Metadata.TonicMidi%12, out.Metadata.Mode)
	for _, note := range out.Melody.Notes {
		assert.GreaterOrEqual(t, note.Midi, 54)
		assert.LessOrEqual(t, note.Midi, 78)
		assert.True(t, mask.Contains(note.Midi), "melody midi %d in scale", note.Midi)
	}

	hatDensity := float64(len(out.Hats.Notes)) / float64(out.Metadata.Compases)
	assert.Greater(t, hatDensity, 8.0)
	assert.GreaterOrEqual(t, len(out.Bass808.Glides), 2)

	assert.GreaterOrEqual(t, out.Metadata.Darkness, 0.0)
	assert.LessOrEqual(t, out.Metadata.Darkness, 8.0)

	assert.Equal(t, 142.0, out.Metadata.BPM)
	assert.Equal(t, 0.16, out.Metadata.Swing)
	assert.Equal(t, 54, out.Metadata.TonicMidi)
	assert.Equal(t, ModeHarmonic, out.Metadata.Mode)
	assert.Equal(t, 4, out.Metadata.Compases)
	require.NotNil(t, out.Metadata.Seed)
	assert.Equal(t, uint32(1337), *out.Metadata.Seed)
}

func TestGenerateIsDeterministic(t *testing.T) {
	gen := NewDefaultGenerator()
	for _, mode := range Modes() {
		cfg := referenceConfig()
		cfg.Mode = mode
		assert.Equal(t, gen.Generate(cfg), gen.Generate(cfg), "mode %s", mode)
	}
}

func TestGenerateConcurrentCallsAreIsolated(t *testing.T) {
	gen := NewDefaultGenerator()
	want := gen.Generate(referenceConfig())

	var wg sync.WaitGroup
	results := make([]OutputPattern, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = gen.Generate(referenceConfig())
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, want, got, "call %d", i)
	}
}

func TestGenerateProperties(t *testing.T) {
	gen := NewDefaultGenerator()
	scale := NewScaleService()

	for _, mode := range Modes() {
		for seed := uint32(0); seed < 60; seed++ {
			cfg := Config{BPM: 140, Compases: 4, TonicMidi: 50, Mode: mode, RandomSeed: seedPtr(seed)}
			out := gen.Generate(cfg)
			melodyRange := DefaultMelodyRange(50)
			mask := scale.Mask(50, mode)

			require.Len(t, out.Chords, 4)
			for _, chord := range out.Chords {
				require.NotEmpty(t, chord.Notes)
			}
			for _, note := range out.Melody.Notes {
				require.GreaterOrEqual(t, note.Midi, melodyRange[0])
				require.LessOrEqual(t, note.Midi, melodyRange[1])
				require.True(t, mask.Contains(note.Midi), "mode %s seed %d midi %d", mode, seed, note.Midi)
			}
			for _, track := range []Pattern{out.Melody, out.Hats, out.Bass808} {
				for _, note := range track.Notes {
					require.GreaterOrEqual(t, note.Vel, 0)
					require.LessOrEqual(t, note.Vel, 127)
					require.GreaterOrEqual(t, note.Midi, 0)
					require.LessOrEqual(t, note.Midi, 127)
				}
			}
			require.GreaterOrEqual(t, out.Metadata.Darkness, 0.0)
			require.LessOrEqual(t, out.Metadata.Darkness, out.Metadata.DarknessBeforeCorrection+1e-9)
		}
	}
}

func TestGenerateCorrectionNeverRaisesDarkness(t *testing.T) {
	gen := NewDefaultGenerator()
	corrected := 0

	for _, mode := range Modes() {
		for seed := uint32(0); seed < 80; seed++ {
			cfg := Config{
				BPM:             150,
				Compases:        4,
				TonicMidi:       48,
				Mode:            mode,
				RandomSeed:      seedPtr(seed),
				MelodyRange:     &[2]int{48, 84},
				DarknessCeiling: floatPtr(0),
			}
			out := gen.Generate(cfg)
			if !out.Metadata.Corrected {
				require.Zero(t, out.Metadata.DarknessBeforeCorrection)
				continue
			}
			corrected++
			require.LessOrEqual(t, out.Metadata.Darkness, out.Metadata.DarknessBeforeCorrection+1e-9)

			mask := NewScaleService().Mask(48, mode)
			for _, note := range out.Melody.Notes {
				require.GreaterOrEqual(t, note.Midi, 48)
				require.LessOrEqual(t, note.Midi, 84)
				require.True(t, mask.Contains(note.Midi))
			}
		}
	}
	assert.Positive(t, corrected)
}

func TestGenerateDefaults(t *testing.T) {
	gen := NewDefaultGenerator()

	tests := []struct {
		mode  Mode
		swing float64
	}{
		{ModeMinor, 0.14},
		{ModeHarmonic, 0.16},
		{ModePhrygianDom, 0.20},
	}
	for _, tt := range tests {
		out := gen.Generate(Config{BPM: 130, Compases: 1, TonicMidi: 60, Mode: tt.mode, RandomSeed: seedPtr(1)})
		assert.Equal(t, tt.swing, out.Metadata.Swing, "mode %s", tt.mode)
	}

	out := gen.Generate(Config{BPM: 130, Compases: 2, TonicMidi: 60, Mode: ModeMinor, Swing: floatPtr(0.9), RandomSeed: seedPtr(1)})
	assert.Equal(t, 0.25, out.Metadata.Swing)
	out = gen.Generate(Config{BPM: 130, Compases: 2, TonicMidi: 60, Mode: ModeMinor, Swing: floatPtr(-1), RandomSeed: seedPtr(1)})
	assert.Equal(t, 0.0, out.Metadata.Swing)
}

func TestGenerateZeroBarsDegradesSoftly(t *testing.T) {
	out := NewDefaultGenerator().Generate(Config{BPM: 140, Compases: 0, TonicMidi: 60, Mode: ModeMinor, RandomSeed: seedPtr(5)})
	assert.Empty(t, out.Chords)
	assert.Empty(t, out.Melody.Notes)
	assert.Empty(t, out.Hats.Notes)
	assert.Empty(t, out.Bass808.Notes)
	assert.Zero(t, out.Metadata.Darkness)
}

func TestGenerateWithoutSeed(t *testing.T) {
	out := NewDefaultGenerator().Generate(Config{BPM: 140, Compases: 2, TonicMidi: 60, Mode: ModeMinor})
	assert.Len(t, out.Chords, 2)
	assert.Nil(t, out.Metadata.Seed)
	assert.NotEmpty(t, out.Hats.Notes)
}

func TestGenerateNonPositiveTempoDoesNotFail(t *testing.T) {
	out := NewDefaultGenerator().Generate(Config{BPM: 0, Compases: 2, TonicMidi: 60, Mode: ModeMinor, RandomSeed: seedPtr(5)})
	assert.Len(t, out.Chords, 2)
	for _, note := range out.Melody.Notes {
		assert.False(t, math.IsNaN(note.T))
		assert.False(t, math.IsInf(note.T, 0))
	}
}

// emptyHarmony never produces chords.
type emptyHarmony struct {
	DefaultHarmonyService
}

func (emptyHarmony) BuildProgression(params ProgressionParams) []Chord {
	params.Random.Float64()
	return nil
}

func TestGenerateFallbackChord(t *testing.T) {
	deps := DefaultDependencies()
	deps.Harmony = emptyHarmony{}
	deps.Melody = NewMelodyGenerator(deps.Harmony)

	out := NewGenerator(deps).Generate(Config{BPM: 140, Compases: 3, TonicMidi: 57, Mode: ModeMinor, RandomSeed: seedPtr(8)})
	require.Len(t, out.Chords, 1)
	assert.Equal(t, Chord{Degree: 0, Notes: []int{57, 60, 64, 67}, BassNote: 45}, out.Chords[0])
	assert.NotEmpty(t, out.Melody.Notes)
	assert.NotEmpty(t, out.Bass808.Notes)
}

// fixedEvaluator reports scripted scores in call order.
type fixedEvaluator struct {
	scores []float64
	calls  int
}

func (f *fixedEvaluator) Dissonance(Pattern, []Chord, int) float64 {
	score := f.scores[f.calls]
	f.calls++
	return score
}

func TestGenerateSingleCorrectivePass(t *testing.T) {
	deps := DefaultDependencies()
	eval := &fixedEvaluator{scores: []float64{9, 7}}
	deps.Evaluator = eval

	out := NewGenerator(deps).Generate(referenceConfig())
	assert.Equal(t, 2, eval.calls, "darkness above the ceiling after correction is not re-corrected")
	assert.True(t, out.Metadata.Corrected)
	assert.Equal(t, 9.0, out.Metadata.DarknessBeforeCorrection)
	assert.Equal(t, 7.0, out.Metadata.Darkness)
}

func TestGenerateNoCorrectionUnderCeiling(t *testing.T) {
	deps := DefaultDependencies()
	eval := &fixedEvaluator{scores: []float64{8}}
	deps.Evaluator = eval

	baseline := NewDefaultGenerator().Generate(referenceConfig())
	out := NewGenerator(deps).Generate(referenceConfig())
	assert.Equal(t, 1, eval.calls)
	assert.False(t, out.Metadata.Corrected)
	assert.Equal(t, baseline.Melody, out.Melody)
}

func TestGenerateRandomConsumptionOrder(t *testing.T) {
	// Draw counts per stage must line up exactly with the documented order.
	deps := DefaultDependencies()
	rng := &countingRandom{inner: NewSeededRandom(1337)}
	out := NewGenerator(deps).generate(referenceConfig(), rng)

	humanizeDraws := 4 * (len(out.Melody.Notes) + len(out.Hats.Notes) + len(out.Bass808.Notes))
	melodyDraws := 3 * len(out.Melody.Notes)
	assert.Greater(t, rng.calls, 1+melodyDraws+humanizeDraws)

	replay := &countingRandom{inner: NewSeededRandom(1337)}
	again := NewGenerator(deps).generate(referenceConfig(), replay)
	assert.Equal(t, rng.calls, replay.calls)
	assert.Equal(t, out, again)
}

func TestPullTowardChords(t *testing.T) {
	gen := NewDefaultGenerator()
	mask := NewScaleService().Mask(0, ModeMinor)
	progression := []Chord{{Degree: 0, Notes: []int{48, 51, 55, 58}, BassNote: 36}}
	melody := Pattern{Notes: []Note{
		{T: 0, Dur: 1, Midi: 67, Vel: 90},
		{T: 1, Dur: 1, Midi: 62, Vel: 90},
	}}

	out := gen.pullTowardChords(melody, progression, mask, [2]int{60, 72})
	assert.Equal(t, 63, out.Notes[0].Midi, "half way from 67 to 58, rounded up")
	assert.Equal(t, 60, out.Notes[1].Midi)
	assert.Equal(t, 67, melody.Notes[0].Midi, "input untouched")

	blocked := gen.pullTowardChords(melody, progression, mask, [2]int{64, 72})
	assert.Equal(t, 67, blocked.Notes[0].Midi, "a move below the range is dropped")
}

func TestPullTowardChordsWalksBackIntoScale(t *testing.T) {
	gen := NewDefaultGenerator()
	mask := NewScaleService().Mask(0, ModeMinor)
	progression := []Chord{{Degree: 0, Notes: []int{60}, BassNote: 48}}
	melody := Pattern{Notes: []Note{{T: 0, Dur: 1, Midi: 68, Vel: 90}}}

	// the blend lands on E (64), outside C minor, and steps on to Eb
	out := gen.pullTowardChords(melody, progression, mask, [2]int{48, 84})
	assert.Equal(t, 63, out.Notes[0].Midi)
}
