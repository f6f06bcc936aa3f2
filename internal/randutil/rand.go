// Package randutil derives reproducible random sources from a single seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Both PCG
// state words are derived from the one int64 so that a seed printed in a
// log line is enough to replay a session.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// NewSeed picks a seed from the wall clock
func NewSeed() int64 {
	return time.Now().UnixNano()
}

// Derive returns an independent generator for stream n of the same seed.
// Simulation workers use it so results do not depend on scheduling.
func Derive(seed int64, n int) *rand.Rand {
	return New(seed + int64(n)*int64(goldenRatio64>>1))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
