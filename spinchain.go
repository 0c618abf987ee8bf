// Package spinchain builds dense operators for an open one dimensional chain of spin-1/2 sites.
//
// The chain operators are assembled term by term with the Kronecker product.
// A term is an operator list that is the identity everywhere, except for a
// window of local operators starting at some site i.
// Site 0 is the outermost Kronecker factor, which is the most significant bit of a basis index.
//
// The builders return unsigned sums.
// A Hamiltonian such as -J*ZZ - h*X is formed by the caller, or by Ising.
package spinchain

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/spinchain/op"
)

const localDim = 2

var (
	// ErrDomain is returned for chains with fewer than one site.
	ErrDomain = errors.New("number of sites must be positive")
	// ErrLocalShape is returned when a window operator is not 2x2.
	ErrLocalShape = errors.New("local operator is not 2x2")
)

// ZZ returns the sum of Sz Sz over all nearest neighbour pairs.
func ZZ(n int) (*mat.Dense, error) {
	return Sum(n, op.SigmaZ, op.SigmaZ)
}

// X returns the sum of Sx over all sites.
func X(n int) (*mat.Dense, error) {
	return Sum(n, op.SigmaX)
}

// Z returns the sum of Sz over all sites.
func Z(n int) (*mat.Dense, error) {
	return Sum(n, op.SigmaZ)
}

// YY returns the sum of Sy Sy over all nearest neighbour pairs.
func YY(n int) (*mat.CDense, error) {
	return SumC(n, op.SigmaY, op.SigmaY)
}

// Ising returns the Hamiltonian -j*ZZ - hx*X - hz*Z.
func Ising(n int, j, hx, hz float64) (*mat.Dense, error) {
	h, err := newZeros(n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	terms := []struct {
		c     float64
		build func(int) (*mat.Dense, error)
	}{
		{c: -j, build: ZZ},
		{c: -hx, build: X},
		{c: -hz, build: Z},
	}
	for _, t := range terms {
		if t.c == 0 {
			continue
		}
		m, err := t.build(n)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		m.Scale(t.c, m)
		h.Add(h, m)
	}
	return h, nil
}

// Sum slides window across a chain of n sites, and returns the sum of all placements.
// A window longer than the chain has no placements, and the zero matrix is returned.
func Sum(n int, window ...mat.Matrix) (*mat.Dense, error) {
	if err := checkWindow(len(window), func(i int) (int, int) { return window[i].Dims() }); err != nil {
		return nil, errors.Wrap(err, "")
	}
	sum, err := newZeros(n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	operators := make([]mat.Matrix, n)
	for i := 0; i+len(window) <= n; i++ {
		for k := range operators {
			operators[k] = op.Identity
		}
		copy(operators[i:], window)

		term, err := op.ReduceKronecker(operators...)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		sum.Add(sum, term)
	}
	return sum, nil
}

// SumC is Sum with a complex accumulator, and is needed whenever the window contains Sy.
func SumC(n int, window ...mat.CMatrix) (*mat.CDense, error) {
	if err := checkWindow(len(window), func(i int) (int, int) { return window[i].Dims() }); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if n < 1 {
		return nil, errors.Wrap(ErrDomain, fmt.Sprintf("%d", n))
	}
	sum := mat.NewCDense(1<<n, 1<<n, nil)

	identity := op.Complex(op.Identity)
	operators := make([]mat.CMatrix, n)
	for i := 0; i+len(window) <= n; i++ {
		for k := range operators {
			operators[k] = identity
		}
		copy(operators[i:], window)

		term, err := op.ReduceKroneckerC(operators...)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		op.AddC(sum, term)
	}
	return sum, nil
}

func newZeros(n int) (*mat.Dense, error) {
	if n < 1 {
		return nil, errors.Wrap(ErrDomain, fmt.Sprintf("%d", n))
	}
	return mat.NewDense(1<<n, 1<<n, nil), nil
}

func checkWindow(k int, dims func(int) (int, int)) error {
	if k == 0 {
		return op.ErrEmpty
	}
	for i := 0; i < k; i++ {
		r, c := dims(i)
		if r != localDim || c != localDim {
			return errors.Wrap(ErrLocalShape, fmt.Sprintf("%d %dx%d", i, r, c))
		}
	}
	return nil
}
