package trapbeat

import "fmt"

// Mode is a scale template relative to a tonic.
type Mode string

const (
	ModeMinor       Mode = "minor"
	ModeHarmonic    Mode = "harmonic"
	ModePhrygianDom Mode = "phrygianDom"
)

// Canonical masks rooted at pitch class 0.
var scaleMasks = map[Mode]ScaleMask{
	ModeMinor:       {true, false, true, true, false, true, false, true, true, false, true, false},
	ModeHarmonic:    {true, false, true, true, false, true, false, true, false, false, true, true},
	ModePhrygianDom: {true, true, false, true, false, true, false, true, true, false, true, false},
}

// Modes returns every supported mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeMinor, ModeHarmonic, ModePhrygianDom}
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	_, ok := scaleMasks[m]
	return ok
}

// ParseMode converts a name into a Mode.
func ParseMode(name string) (Mode, error) {
	m := Mode(name)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (allowed: minor, harmonic, phrygianDom)", name)
	}
	return m, nil
}

// Intervals returns the in-scale semitone offsets of the mode, ascending.
func (m Mode) Intervals() []int {
	base := canonicalMask(m)
	intervals := make([]int, 0, 7)
	for ix, in := range base {
		if in {
			intervals = append(intervals, ix)
		}
	}
	return intervals
}

func canonicalMask(m Mode) ScaleMask {
	if base, ok := scaleMasks[m]; ok {
		return base
	}
	return scaleMasks[ModeMinor]
}

// ScaleMask marks scale membership by absolute pitch class.
type ScaleMask [12]bool

// Contains reports whether the pitch class of midi is in the scale.
func (s ScaleMask) Contains(midi int) bool {
	return s[posMod(midi, 12)]
}

// Ints renders the mask as 0/1 values.
func (s ScaleMask) Ints() []int {
	out := make([]int, len(s))
	for i, in := range s {
		if in {
			out[i] = 1
		}
	}
	return out
}

// ScaleService owns pitch-class masks, scale construction and quantization.
type ScaleService interface {
	Mask(tonic int, mode Mode) ScaleMask
	ScaleNotes(tonicMidi int, mode Mode, octaves int) []int
	Quantize(midi int, mask ScaleMask, tonic int) int
}

// DefaultScaleService implements ScaleService.
type DefaultScaleService struct{}

// NewScaleService returns the default scale service.
func NewScaleService() *DefaultScaleService {
	return &DefaultScaleService{}
}

// Mask rotates the mode's canonical mask so that index i answers for absolute pitch class i.
func (DefaultScaleService) Mask(tonic int, mode Mode) ScaleMask {
	base := canonicalMask(mode)
	var rotated ScaleMask
	for i := range rotated {
		rotated[i] = base[posMod(i-tonic, 12)]
	}
	return rotated
}

// ScaleNotes lists the in-scale pitches of octaves octaves starting at tonicMidi.
func (DefaultScaleService) ScaleNotes(tonicMidi int, mode Mode, octaves int) []int {
	intervals := mode.Intervals()
	if octaves <= 0 {
		return []int{}
	}
	notes := make([]int, 0, len(intervals)*octaves)
	for octave := 0; octave < octaves; octave++ {
		for _, interval := range intervals {
			notes = append(notes, tonicMidi+interval+octave*12)
		}
	}
	return notes
}

// Quantize moves midi to the closest in-scale pitch, trying upward first at each distance.
func (DefaultScaleService) Quantize(midi int, mask ScaleMask, tonic int) int {
	if mask.Contains(midi) {
		return midi
	}
	for delta := 1; delta <= 6; delta++ {
		if mask.Contains(midi + delta) {
			return midi + delta
		}
		if mask.Contains(midi - delta) {
			return midi - delta
		}
	}
	return tonic
}
