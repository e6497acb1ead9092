// Package matrix provides the square float64 matrices multiplied by the
// benchmark, together with the allocator that owns their storage.
package matrix

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

var (
	// ErrAllocation is returned when backing memory for a matrix cannot be
	// obtained.
	ErrAllocation = errors.New("matrix: allocation failed")

	// ErrDimensionMismatch is returned when operands differ in dimension.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAliased is returned when the product would overwrite an operand.
	ErrAliased = errors.New("matrix: output aliases an operand")
)

const cellBytes = 8

// Matrix is an n×n grid of float64 values stored row-major in a single
// contiguous buffer.
type Matrix struct {
	n    int
	data []float64
}

// N returns the dimension of the matrix.
func (m *Matrix) N() int {
	return m.n
}

// Rows returns the number of addressable rows. It is equal to N while the
// matrix is allocated and 0 once it has been freed.
func (m *Matrix) Rows() int {
	if m.data == nil {
		return 0
	}

	return m.n
}

// At returns the value at (row, col).
func (m *Matrix) At(row, col int) float64 {
	return m.data[row*m.n+col]
}

// Set stores v at (row, col).
func (m *Matrix) Set(row, col int, v float64) {
	m.data[row*m.n+col] = v
}

// Row returns row i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// FromRows builds an allocator-independent matrix from literal rows.
// Every row must have exactly len(rows) elements.
func FromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)

	for i, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("row %d has %d elements, want %d: %w",
				i, len(r), n, ErrDimensionMismatch)
		}

		data = append(data, r...)
	}

	return &Matrix{n: n, data: data}, nil
}

// Allocator hands out matrices and tracks the storage it has handed out.
// The zero value is ready to use and has no byte limit.
type Allocator struct {
	// Limit caps the bytes of storage live at any one time. Zero means
	// unlimited.
	Limit uint64

	live        uint64
	outstanding int
}

// Allocate returns an n×n matrix. Cell contents are unspecified.
func (a *Allocator) Allocate(n int) (m *Matrix, err error) {
	if n < 0 {
		return nil, fmt.Errorf("size %d: %w", n, ErrAllocation)
	}

	cells, size, ok := footprint(n)
	if !ok {
		return nil, fmt.Errorf("size %d overflows: %w", n, ErrAllocation)
	}

	if a.Limit > 0 && a.live+size > a.Limit {
		return nil, fmt.Errorf(
			"size %d needs %d bytes, %d of %d in use: %w",
			n, size, a.live, a.Limit, ErrAllocation,
		)
	}

	// make panics rather than returning an error when the runtime cannot
	// satisfy the length.
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("size %d: %v: %w", n, r, ErrAllocation)
		}
	}()

	data := make([]float64, cells)

	a.live += size
	a.outstanding++

	return &Matrix{n: n, data: data}, nil
}

// Free releases the storage owned by m. Freeing nil or an already freed
// matrix does nothing.
func (a *Allocator) Free(m *Matrix) {
	if m == nil || m.data == nil {
		return
	}

	a.live -= uint64(len(m.data)) * cellBytes
	a.outstanding--
	m.data = nil
}

// Live returns the bytes of matrix storage currently allocated.
func (a *Allocator) Live() uint64 {
	return a.live
}

// Outstanding returns the number of matrices allocated but not yet freed.
func (a *Allocator) Outstanding() int {
	return a.outstanding
}

// Footprint returns the bytes of storage an n×n matrix occupies.
func Footprint(n int) uint64 {
	_, size, ok := footprint(n)
	if !ok {
		return math.MaxUint64
	}

	return size
}

func footprint(n int) (cells int, size uint64, ok bool) {
	if n < 0 {
		return 0, 0, false
	}

	hi, lo := bits.Mul64(uint64(n), uint64(n))
	if hi != 0 || lo > math.MaxInt64/cellBytes {
		return 0, 0, false
	}

	if lo > uint64(math.MaxInt) {
		return 0, 0, false
	}

	return int(lo), lo * cellBytes, true
}
