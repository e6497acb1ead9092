package harness

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/weiihann/matbench/matrix"
)

// ErrVerify is returned when a benchmarked product disagrees with the
// reference multiplication.
var ErrVerify = errors.New("harness: product verification failed")

// verifyTolerance bounds the relative difference allowed between the
// naive product and gonum's, which sums in a different order.
const verifyTolerance = 1e-9

// verifyProduct recomputes a×b with gonum and compares it to c.
func verifyProduct(a, b, c *matrix.Matrix) error {
	n := a.N()
	if n == 0 {
		return nil
	}

	var want mat.Dense
	want.Mul(toDense(a), toDense(b))

	for i := 0; i < n; i++ {
		row := c.Row(i)
		for j := 0; j < n; j++ {
			got, exp := row[j], want.At(i, j)
			scale := math.Max(1, math.Max(math.Abs(got), math.Abs(exp)))

			if math.Abs(got-exp) > verifyTolerance*scale {
				return fmt.Errorf("cell (%d,%d) = %g, reference %g: %w",
					i, j, got, exp, ErrVerify)
			}
		}
	}

	return nil
}

func toDense(m *matrix.Matrix) *mat.Dense {
	n := m.N()
	data := make([]float64, 0, n*n)

	for i := 0; i < n; i++ {
		data = append(data, m.Row(i)...)
	}

	return mat.NewDense(n, n, data)
}
