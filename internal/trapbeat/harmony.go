package trapbeat

import (
	"math"
	"sort"
)

const (
	chordSize      = 4
	scaleOctaves   = 3
	bassFloorDepth = 24
)

// Four-bar scale-degree patterns. The last two use the darker degrees.
var degreePatterns = [][]int{
	{0, 5, 6, 5},
	{0, 3, 4, 0},
	{0, 6, 5, 6},
}

// ProgressionParams are the inputs to BuildProgression. Scale holds three octaves of
// in-scale pitches.
type ProgressionParams struct {
	Compases  int
	TonicMidi int
	Mode      Mode
	Scale     []int
	Random    RandomSource
}

// HarmonyService builds the per-bar chord progression.
type HarmonyService interface {
	BuildProgression(params ProgressionParams) []Chord
	ChordTones(chord Chord) []int
}

// DefaultHarmonyService implements HarmonyService.
type DefaultHarmonyService struct{}

// NewHarmonyService returns the default harmony service.
func NewHarmonyService() *DefaultHarmonyService {
	return &DefaultHarmonyService{}
}

// BuildProgression draws one degree pattern and cycles it over the bars.
// The pattern draw happens even when the scale is empty, so the stream position does not
// depend on the scale.
func (DefaultHarmonyService) BuildProgression(params ProgressionParams) []Chord {
	available := degreePatterns
	if params.Mode == ModePhrygianDom {
		available = [][]int{degreePatterns[2], degreePatterns[1]}
	}
	pattern := available[choose(len(available), params.Random)]

	chords := []Chord{}
	if len(params.Scale) == 0 {
		return chords
	}
	ordered := append([]int(nil), params.Scale...)
	sort.Ints(ordered)

	for bar := 0; bar < params.Compases; bar++ {
		degree := pattern[bar%len(pattern)]
		notes := chordNotes(ordered, degree, chordSize)
		bassNote := notes[0] - 12
		if floor := params.TonicMidi - bassFloorDepth; bassNote < floor {
			bassNote = floor
		}
		chords = append(chords, Chord{Degree: degree, Notes: notes, BassNote: bassNote})
	}
	return chords
}

// ChordTones exposes the chord's notes.
func (DefaultHarmonyService) ChordTones(chord Chord) []int {
	return chord.Notes
}

// rotateToDegree restacks one octave of the scale starting at degree, over three octaves.
func rotateToDegree(scale []int, degree int) []int {
	octaveLength := len(scale) / scaleOctaves
	if octaveLength == 0 {
		octaveLength = len(scale)
	}
	rotated := make([]int, 0, octaveLength*scaleOctaves)
	for octave := 0; octave < scaleOctaves; octave++ {
		for step := 0; step < octaveLength; step++ {
			ix := posMod(step+degree, octaveLength)
			rotated = append(rotated, scale[ix]+octave*12)
		}
	}
	return rotated
}

// chordNotes stacks every other note of the rotated scale.
func chordNotes(scale []int, degree, size int) []int {
	rotated := rotateToDegree(scale, degree)
	notes := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if ix := i * 2; ix < len(rotated) {
			notes = append(notes, rotated[ix])
		}
	}
	return notes
}

// fallbackChord stands in for an empty progression: a tonic minor seventh.
func fallbackChord(tonic int) Chord {
	return Chord{
		Degree:   0,
		Notes:    []int{tonic, tonic + 3, tonic + 7, tonic + 10},
		BassNote: tonic - 12,
	}
}

// chordForTime returns the chord for the bar containing t, clamped to the progression.
func chordForTime(t float64, progression []Chord) Chord {
	return progression[barIndex(t, len(progression))]
}

func barIndex(t float64, bars int) int {
	ix := int(math.Floor(t / 4))
	return clampInt(ix, 0, bars-1)
}

// nearestTone returns the tone closest to midi; ties keep the earliest tone.
func nearestTone(midi int, tones []int) int {
	if len(tones) == 0 {
		return midi
	}
	best := tones[0]
	bestDist := absInt(midi - best)
	for _, tone := range tones[1:] {
		if dist := absInt(midi - tone); dist < bestDist {
			best, bestDist = tone, dist
		}
	}
	return best
}
