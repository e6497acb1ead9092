package matrix

import "fmt"

// Multiply stores a×b into c using the textbook triple loop. Each cell is
// accumulated from zero over k in ascending order, so identical inputs
// always produce bit-identical output.
//
// The cubic cost is what the benchmark measures; do not reorder the loops.
func Multiply(a, b, c *Matrix) error {
	n := a.n
	if b.n != n || c.n != n {
		return fmt.Errorf("multiply %dx%d by %dx%d into %dx%d: %w",
			n, n, b.n, b.n, c.n, c.n, ErrDimensionMismatch)
	}

	if n > 0 && (shares(c, a) || shares(c, b)) {
		return ErrAliased
	}

	for i := 0; i < n; i++ {
		ai := a.data[i*n : (i+1)*n]
		ci := c.data[i*n : (i+1)*n]

		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				// The conversion forces the product to be rounded,
				// which keeps the compiler from fusing it into an FMA.
				sum += float64(ai[k] * b.data[k*n+j])
			}
			ci[j] = sum
		}
	}

	return nil
}

func shares(x, y *Matrix) bool {
	return x == y || (len(x.data) > 0 && len(y.data) > 0 && &x.data[0] == &y.data[0])
}
