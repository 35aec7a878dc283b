// Package trapbeat generates multi-track trap patterns (melody, hi-hats, 808 bass and
// the chord progression beneath them) from a compact configuration.
//
// Generation is deterministic for a given seed: every collaborator draws from a single
// RandomSource owned by the Generate call, in a fixed order.
package trapbeat

// Note is a single event on a track. T and Dur are in beats (bar = 4 beats).
type Note struct {
	T    float64 `json:"t"`
	Dur  float64 `json:"dur"`
	Midi int     `json:"midi"`
	Vel  int     `json:"vel"`
}

// GlideEvent annotates a pitch slide between two consecutive bass notes.
// CurveK controls curvature; higher is sharper.
type GlideEvent struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	FromMidi int     `json:"from_midi"`
	ToMidi   int     `json:"to_midi"`
	CurveK   float64 `json:"curve_k"`
}

// Pattern is one track.
type Pattern struct {
	Notes  []Note       `json:"notes"`
	Glides []GlideEvent `json:"glides,omitempty"`
}

// Chord is assigned per bar. Notes[0] is the chord root in the working octave.
type Chord struct {
	Degree   int   `json:"degree"`
	Notes    []int `json:"notes"`
	BassNote int   `json:"bass_note"`
}

// Config drives a single Generate call. Nil optional fields take their defaults.
type Config struct {
	BPM             float64  `json:"bpm"`
	Compases        int      `json:"compases"`
	TonicMidi       int      `json:"tonic_midi"`
	Mode            Mode     `json:"mode"`
	Swing           *float64 `json:"swing,omitempty"`
	RandomSeed      *uint32  `json:"random_seed,omitempty"`
	MelodyRange     *[2]int  `json:"melody_range,omitempty"`
	DarknessCeiling *float64 `json:"darkness_ceiling,omitempty"`
}

// Metadata describes the resolved configuration and the final dissonance score.
type Metadata struct {
	BPM       float64 `json:"bpm"`
	Swing     float64 `json:"swing"`
	TonicMidi int     `json:"tonic_midi"`
	Mode      Mode    `json:"mode"`
	Compases  int     `json:"compases"`
	Darkness  float64 `json:"darkness"`

	Seed                     *uint32 `json:"seed,omitempty"`
	DarknessBeforeCorrection float64 `json:"darkness_before_correction"`
	Corrected                bool    `json:"corrected"`
}

// OutputPattern is the full result of a generation.
type OutputPattern struct {
	Melody   Pattern  `json:"melody"`
	Hats     Pattern  `json:"hats"`
	Bass808  Pattern  `json:"bass_808"`
	Chords   []Chord  `json:"chords"`
	Metadata Metadata `json:"metadata"`
}

const (
	defaultDarknessCeiling = 6.5
	maxSwing               = 0.25
	midiMax                = 127
)

// DefaultSwing returns the swing amount used when a config leaves it unset.
func DefaultSwing(mode Mode) float64 {
	switch mode {
	case ModePhrygianDom:
		return 0.20
	case ModeHarmonic:
		return 0.16
	default:
		return 0.14
	}
}

// DefaultMelodyRange returns the melody range used when a config leaves it unset.
func DefaultMelodyRange(tonicMidi int) [2]int {
	return [2]int{tonicMidi - 5, tonicMidi + 18}
}

// resolved holds a config with every default applied.
type resolved struct {
	bpm         float64
	compases    int
	tonic       int
	mode        Mode
	swing       float64
	melodyRange [2]int
	ceiling     float64
}

func resolveConfig(cfg Config) resolved {
	swing := DefaultSwing(cfg.Mode)
	if cfg.Swing != nil {
		swing = *cfg.Swing
	}
	melodyRange := DefaultMelodyRange(cfg.TonicMidi)
	if cfg.MelodyRange != nil {
		melodyRange = *cfg.MelodyRange
	}
	if melodyRange[0] > melodyRange[1] {
		melodyRange[0], melodyRange[1] = melodyRange[1], melodyRange[0]
	}
	ceiling := defaultDarknessCeiling
	if cfg.DarknessCeiling != nil {
		ceiling = *cfg.DarknessCeiling
	}
	compases := cfg.Compases
	if compases < 0 {
		compases = 0
	}
	return resolved{
		bpm:         cfg.BPM,
		compases:    compases,
		tonic:       cfg.TonicMidi,
		mode:        cfg.Mode,
		swing:       clampFloat(swing, 0, maxSwing),
		melodyRange: melodyRange,
		ceiling:     ceiling,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// posMod is the non-negative remainder of n / m.
func posMod(n, m int) int {
	return ((n % m) + m) % m
}

// choose picks an index in [0, n) with a single draw.
func choose(n int, random RandomSource) int {
	return int(random.Float64()*float64(n)) % n
}
