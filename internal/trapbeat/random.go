package trapbeat

import (
	"math/rand/v2"
)

// RandomSource yields floats uniformly distributed in [0, 1).
// Implementations are stateful and not safe for concurrent use; each Generate call owns one.
type RandomSource interface {
	Float64() float64
}

const (
	mulberryIncrement = 0x6d2b79f5
	twoPow32          = 4294967296.0
)

// Mulberry32 is a small-state seeded generator. The same seed always yields the same stream.
type Mulberry32 struct {
	state uint32
}

// NewSeededRandom returns a reproducible stream for seed.
func NewSeededRandom(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Float64 advances the state and returns the next value.
func (m *Mulberry32) Float64() float64 {
	m.state += mulberryIncrement
	t := m.state
	r := (t ^ (t >> 15)) * (t | 1)
	r ^= r + (r^(r>>7))*(r|61)
	return float64(r^(r>>14)) / twoPow32
}

// NewRandom returns a non-reproducible stream with its own state.
func NewRandom() RandomSource {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
