// Package workload fills benchmark operands with pseudo-random values.
// A Generator owns its random stream; callers that need reproducible
// operands pass an explicit seed.
package workload

import (
	"fmt"
	"math"
	mrand "math/rand"
	"time"

	"github.com/weiihann/matbench/matrix"
)

// MaxValue is the exclusive upper bound of generated cell values.
const MaxValue = 100.0

// Generator produces uniformly distributed operands from a single stream.
// It is not safe for concurrent use.
type Generator struct {
	seed int64
	rng  *mrand.Rand
}

// NewGenerator creates a Generator. A zero seed is replaced by one derived
// from the current time.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		seed: seed,
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// Seed returns the seed the stream was started from.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Generate overwrites every cell of a and b with a value in [0, MaxValue).
// Draws alternate between a and b cell by cell, and successive calls
// continue the same stream.
func (g *Generator) Generate(a, b *matrix.Matrix) error {
	if a.N() != b.N() {
		return fmt.Errorf("generate %dx%d and %dx%d: %w",
			a.N(), a.N(), b.N(), b.N(), matrix.ErrDimensionMismatch)
	}

	n := a.N()
	for i := 0; i < n; i++ {
		ra, rb := a.Row(i), b.Row(i)
		for j := 0; j < n; j++ {
			ra[j] = g.value()
			rb[j] = g.value()
		}
	}

	return nil
}

func (g *Generator) value() float64 {
	v := g.rng.Float64() * MaxValue
	if v >= MaxValue {
		v = math.Nextafter(MaxValue, 0)
	}

	return v
}
