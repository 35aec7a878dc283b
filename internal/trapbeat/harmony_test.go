package trapbeat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProgressionPatternChoice(t *testing.T) {
	harmony := NewHarmonyService()
	scale := NewScaleService().ScaleNotes(60, ModeMinor, 3)

	tests := []struct {
		name     string
		mode     Mode
		draw     float64
		expected []int
	}{
		{"first pattern", ModeMinor, 0.1, []int{0, 5, 6, 5, 0, 5}},
		{"second pattern", ModeMinor, 0.5, []int{0, 3, 4, 0, 0, 3}},
		{"third pattern", ModeHarmonic, 0.9, []int{0, 6, 5, 6, 0, 6}},
		{"phrygian dominant first eligible", ModePhrygianDom, 0.2, []int{0, 6, 5, 6, 0, 6}},
		{"phrygian dominant second eligible", ModePhrygianDom, 0.7, []int{0, 3, 4, 0, 0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &sequenceRandom{values: []float64{tt.draw}}
			chords := harmony.BuildProgression(ProgressionParams{
				Compases:  6,
				TonicMidi: 60,
				Mode:      tt.mode,
				Scale:     scale,
				Random:    rng,
			})
			require.Len(t, chords, 6)
			degrees := make([]int, len(chords))
			for i, c := range chords {
				degrees[i] = c.Degree
			}
			assert.Equal(t, tt.expected, degrees)
			assert.Equal(t, 1, rng.calls, "progression draws exactly once")
		})
	}
}

func TestBuildProgressionChordVoicing(t *testing.T) {
	harmony := NewHarmonyService()
	scale := NewScaleService().ScaleNotes(60, ModeMinor, 3)
	rng := &sequenceRandom{values: []float64{0.1}} // pattern 0, 5, 6, 5

	chords := harmony.BuildProgression(ProgressionParams{
		Compases:  3,
		TonicMidi: 60,
		Mode:      ModeMinor,
		Scale:     scale,
		Random:    rng,
	})
	require.Len(t, chords, 3)

	// C minor: i7 = C Eb G Bb
	assert.Equal(t, []int{60, 63, 67, 70}, chords[0].Notes)
	assert.Equal(t, 48, chords[0].BassNote)

	// degree 5 (Ab) restacks within the first octave before climbing
	assert.Equal(t, []int{68, 60, 63, 67}, chords[1].Notes)
	assert.Equal(t, 56, chords[1].BassNote)

	assert.Equal(t, []int{70, 62, 65, 68}, chords[2].Notes)
}

func TestBuildProgressionBassFloor(t *testing.T) {
	harmony := NewHarmonyService()
	rng := &sequenceRandom{values: []float64{0.1}}

	// A scale starting far below the tonic pushes the bass under the floor.
	chords := harmony.BuildProgression(ProgressionParams{
		Compases:  1,
		TonicMidi: 60,
		Mode:      ModeMinor,
		Scale:     NewScaleService().ScaleNotes(30, ModeMinor, 3),
		Random:    rng,
	})
	require.Len(t, chords, 1)
	assert.Equal(t, 36, chords[0].BassNote)
}

func TestBuildProgressionEmptyScale(t *testing.T) {
	harmony := NewHarmonyService()
	rng := &sequenceRandom{values: []float64{0.4}}

	chords := harmony.BuildProgression(ProgressionParams{
		Compases:  4,
		TonicMidi: 60,
		Mode:      ModeMinor,
		Random:    rng,
	})
	assert.Empty(t, chords)
	assert.Equal(t, 1, rng.calls, "pattern draw happens before the empty check")
}

func TestBuildProgressionUnsortedScale(t *testing.T) {
	harmony := NewHarmonyService()
	scale := NewScaleService().ScaleNotes(60, ModeMinor, 3)
	shuffled := append([]int(nil), scale...)
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	a := harmony.BuildProgression(ProgressionParams{Compases: 4, TonicMidi: 60, Mode: ModeMinor, Scale: scale, Random: NewSeededRandom(7)})
	b := harmony.BuildProgression(ProgressionParams{Compases: 4, TonicMidi: 60, Mode: ModeMinor, Scale: shuffled, Random: NewSeededRandom(7)})
	assert.Equal(t, a, b)
	assert.Equal(t, []int{60, 62, 63, 65}, scale[:4], "input scale is not mutated")
}

func TestChordTones(t *testing.T) {
	chord := Chord{Degree: 0, Notes: []int{60, 63, 67}, BassNote: 48}
	assert.Equal(t, []int{60, 63, 67}, NewHarmonyService().ChordTones(chord))
}

func TestNearestToneTiesKeepFirst(t *testing.T) {
	assert.Equal(t, 60, nearestTone(62, []int{60, 64}))
	assert.Equal(t, 64, nearestTone(62, []int{64, 60}))
	assert.Equal(t, 67, nearestTone(70, []int{60, 63, 67}))
	assert.Equal(t, 5, nearestTone(5, nil))
}
