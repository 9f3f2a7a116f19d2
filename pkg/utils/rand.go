package utils

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// RandSource is a seeded, thread-safe random number generator. A zero
// seed selects a time-based seed.
type RandSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Int63 returns a non-negative random int64
func (r *RandSource) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int63()
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// PowerLaw returns a random number from a power-law distribution with the
// given spectral index over [min, max]
func (r *RandSource) PowerLaw(min, max, index float64) float64 {
	if min <= 0 || max < min {
		return min
	}
	u := r.Float64()
	if index == -1 {
		return math.Exp(math.Log(min) + u*math.Log(max/min))
	}
	a := index + 1
	return math.Pow(math.Pow(min, a)+u*(math.Pow(max, a)-math.Pow(min, a)), 1/a)
}
