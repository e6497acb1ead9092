package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/weiihann/matbench/matrix"
)

func TestAllocateFreeNoLeak(t *testing.T) {
	for _, n := range []int{0, 1, 2, 17, 128} {
		var alloc matrix.Allocator

		m, err := alloc.Allocate(n)
		require.NoError(t, err)
		require.Equal(t, n, m.N())
		require.Equal(t, n, m.Rows())
		require.Equal(t, matrix.Footprint(n), alloc.Live())
		require.Equal(t, 1, alloc.Outstanding())

		alloc.Free(m)
		require.Zero(t, alloc.Live(), "n=%d", n)
		require.Zero(t, alloc.Outstanding(), "n=%d", n)
		require.Zero(t, m.Rows())
	}
}

func TestFreeNilAndTwice(t *testing.T) {
	var alloc matrix.Allocator

	alloc.Free(nil)

	m, err := alloc.Allocate(4)
	require.NoError(t, err)

	alloc.Free(m)
	alloc.Free(m)
	require.Zero(t, alloc.Live())
	require.Zero(t, alloc.Outstanding())
}

func TestAllocateRejects(t *testing.T) {
	tests := []struct {
		name  string
		limit uint64
		n     int
	}{
		{"negative", 0, -1},
		{"overflow", 0, math.MaxInt},
		{"over limit", 1024, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := matrix.Allocator{Limit: tt.limit}

			m, err := alloc.Allocate(tt.n)
			require.ErrorIs(t, err, matrix.ErrAllocation)
			require.Nil(t, m)
			require.Zero(t, alloc.Live())
			require.Zero(t, alloc.Outstanding())
		})
	}
}

func TestAllocateLimitCountsLiveStorage(t *testing.T) {
	alloc := matrix.Allocator{Limit: 2 * matrix.Footprint(8)}

	a, err := alloc.Allocate(8)
	require.NoError(t, err)
	b, err := alloc.Allocate(8)
	require.NoError(t, err)

	_, err = alloc.Allocate(8)
	require.ErrorIs(t, err, matrix.ErrAllocation)

	alloc.Free(a)

	c, err := alloc.Allocate(8)
	require.NoError(t, err)

	alloc.Free(b)
	alloc.Free(c)
	require.Zero(t, alloc.Live())
}

func TestMultiplyKnownProduct(t *testing.T) {
	a, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	b, err := matrix.FromRows([][]float64{{5, 6}, {7, 8}})
	require.NoError(t, err)

	var alloc matrix.Allocator
	c, err := alloc.Allocate(2)
	require.NoError(t, err)
	defer alloc.Free(c)

	require.NoError(t, matrix.Multiply(a, b, c))

	want := [][]float64{{19, 22}, {43, 50}}
	for i := range want {
		require.Equal(t, want[i], c.Row(i))
	}
}

func TestMultiplyOverwritesOutput(t *testing.T) {
	a, _ := matrix.FromRows([][]float64{{1, 0}, {0, 1}})
	b, _ := matrix.FromRows([][]float64{{2, 3}, {4, 5}})
	c, _ := matrix.FromRows([][]float64{{99, 99}, {99, 99}})

	require.NoError(t, matrix.Multiply(a, b, c))
	require.Equal(t, []float64{2, 3}, c.Row(0))
	require.Equal(t, []float64{4, 5}, c.Row(1))
}

func TestMultiplyDeterministic(t *testing.T) {
	const n = 33

	rng := rand.New(rand.NewSource(7))
	var alloc matrix.Allocator

	a, _ := alloc.Allocate(n)
	b, _ := alloc.Allocate(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, rng.Float64()*100)
			b.Set(i, j, rng.Float64()*100)
		}
	}

	first, _ := alloc.Allocate(n)
	second, _ := alloc.Allocate(n)
	require.NoError(t, matrix.Multiply(a, b, first))
	require.NoError(t, matrix.Multiply(a, b, second))

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.Equal(t,
				math.Float64bits(first.At(i, j)),
				math.Float64bits(second.At(i, j)),
				"cell (%d,%d)", i, j,
			)
		}
	}
}

func TestMultiplyMatchesGonum(t *testing.T) {
	const n = 24

	rng := rand.New(rand.NewSource(11))
	var alloc matrix.Allocator

	a, _ := alloc.Allocate(n)
	b, _ := alloc.Allocate(n)
	c, _ := alloc.Allocate(n)

	ga := mat.NewDense(n, n, nil)
	gb := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := rng.Float64()*100, rng.Float64()*100
			a.Set(i, j, x)
			b.Set(i, j, y)
			ga.Set(i, j, x)
			gb.Set(i, j, y)
		}
	}

	require.NoError(t, matrix.Multiply(a, b, c))

	var want mat.Dense
	want.Mul(ga, gb)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.InEpsilon(t, want.At(i, j), c.At(i, j), 1e-12)
		}
	}
}

func TestMultiplyPreconditions(t *testing.T) {
	var alloc matrix.Allocator

	a, _ := alloc.Allocate(2)
	b, _ := alloc.Allocate(3)
	c, _ := alloc.Allocate(2)

	require.ErrorIs(t, matrix.Multiply(a, b, c), matrix.ErrDimensionMismatch)
	require.ErrorIs(t, matrix.Multiply(a, c, a), matrix.ErrAliased)
	require.ErrorIs(t, matrix.Multiply(a, c, c), matrix.ErrAliased)
}

func TestMultiplyEmpty(t *testing.T) {
	var alloc matrix.Allocator

	a, _ := alloc.Allocate(0)
	b, _ := alloc.Allocate(0)
	c, _ := alloc.Allocate(0)

	require.NoError(t, matrix.Multiply(a, b, c))
	require.Zero(t, c.Rows())
}

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := matrix.FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
