package devices

import "math/rand"

// RandPort returns a fresh pseudorandom byte on every read. A write
// reseeds the generator with the written byte, which keeps demo runs
// reproducible under test. The generator is touched only from the
// emulation thread.
type RandPort struct {
	rng *rand.Rand
}

// NewRandPort creates a random port seeded with seed
func NewRandPort(seed int64) *RandPort {
	return &RandPort{rng: rand.New(rand.NewSource(seed))}
}

// Read returns the next pseudorandom byte
func (r *RandPort) Read(_ uint16) uint8 {
	return uint8(r.rng.Intn(256))
}

// Write reseeds the generator
func (r *RandPort) Write(_ uint16, value uint8) {
	r.rng = rand.New(rand.NewSource(int64(value)))
}
