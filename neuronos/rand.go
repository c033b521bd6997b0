// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"math"
	"math/rand"
	"sync"
)

// neuronos.Rand is a seeded random source that counts every draw, so that a
// restored snapshot can rebuild the exact same stream position by reseeding
// and replaying Calls draws.  All stochastic decisions in the network
// (weight initialization, content-based routing) go through one Rand.
type Rand struct {
	Seed  int64  `desc:"seed used to initialize the stream"`
	Calls uint64 `desc:"number of draws made since seeding"`
	src   *rand.Rand
	mu    sync.Mutex
}

// NewRand returns a new counted source with the given seed.
func NewRand(seed int64) *Rand {
	rn := &Rand{}
	rn.NewSeed(seed)
	return rn
}

// NewSeed reseeds the stream and resets the draw count.
func (rn *Rand) NewSeed(seed int64) {
	rn.Seed = seed
	rn.Calls = 0
	rn.src = rand.New(rand.NewSource(seed))
}

// Restore reseeds and burns off calls draws, restoring the stream to the
// position recorded in a snapshot.
func (rn *Rand) Restore(seed int64, calls uint64) {
	rn.NewSeed(seed)
	for i := uint64(0); i < calls; i++ {
		rn.src.Float64()
	}
	rn.Calls = calls
}

// Float64 is the primitive draw -- every other method is built on it so
// that Restore can replay the stream with Float64 alone.  Safe for
// concurrent use.
func (rn *Rand) Float64() float64 {
	rn.mu.Lock()
	rn.Calls++
	v := rn.src.Float64()
	rn.mu.Unlock()
	return v
}

func (rn *Rand) Float32() float32 {
	return float32(rn.Float64())
}

// NormFloat64 returns a standard normal deviate via the Box-Muller
// transform, which consumes a fixed two draws.
func (rn *Rand) NormFloat64() float64 {
	u1 := rn.Float64()
	u2 := rn.Float64()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func (rn *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(rn.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
