// Package mpo builds Matrix Product Operator representations of the chain operators.
//
// Each site tensor has the axes {left bond, right bond, up, down}.
// The bulk tensor W is lower triangular in its bond indices, the first site is
// the last row of W, and the last site is the first column of W.
//
// References:
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package mpo

import (
	"fmt"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/spinchain/op"
)

const (
	// leftAxis is the axis of b_{l-1} in Figure 35.
	leftAxis  = 0
	rightAxis = 1
	upAxis    = 2
	downAxis  = 3
)

// ErrBond is returned when the bond dimensions of neighbouring tensors do not match.
var ErrBond = errors.New("bond dimension mismatch")

var (
	zero = [][]complex64{
		{0, 0},
		{0, 0},
	}
	identity = slice2(op.Complex(op.Identity))
	pauliX   = slice2(op.Complex(op.SigmaX))
	pauliZ   = slice2(op.Complex(op.SigmaZ))
)

// ZZ returns the MPO of the sum of Sz Sz over nearest neighbours.
func ZZ(n int) ([]*tensor.Dense, error) {
	w := tensor.T4([][][][]complex64{
		{identity, zero, zero},
		{pauliZ, zero, zero},
		{zero, pauliZ, identity},
	})
	return newMPO(w, n)
}

// X returns the MPO of the sum of Sx over all sites.
func X(n int) ([]*tensor.Dense, error) {
	return field(pauliX, n)
}

// Z returns the MPO of the sum of Sz over all sites.
func Z(n int) ([]*tensor.Dense, error) {
	return field(pauliZ, n)
}

// Ising returns the MPO of -j*ZZ - hx*X - hz*Z.
func Ising(n int, j, hx, hz complex64) ([]*tensor.Dense, error) {
	mul := func(c complex64, x [][]complex64) [][]complex64 {
		return tensor.T2(clone(x)).Mul(c).ToSlice2()
	}
	onsite := mul(-hx, pauliX)
	for i, row := range mul(-hz, pauliZ) {
		for k, v := range row {
			onsite[i][k] += v
		}
	}
	w := tensor.T4([][][][]complex64{
		{identity, zero, zero},
		{pauliZ, zero, zero},
		{onsite, mul(-j, pauliZ), identity},
	})
	return newMPO(w, n)
}

func field(local [][]complex64, n int) ([]*tensor.Dense, error) {
	w := tensor.T4([][][][]complex64{
		{identity, zero},
		{local, identity},
	})
	return newMPO(w, n)
}

func newMPO(w *tensor.Dense, n int) ([]*tensor.Dense, error) {
	if n < 1 {
		return nil, errors.Errorf("number of sites must be positive %d", n)
	}
	d0, d1, d2, d3 := w.Shape()[0], w.Shape()[1], w.Shape()[2], w.Shape()[3]

	// A single site is the corner w[-1, 0].
	if n == 1 {
		return []*tensor.Dense{w.Slice([][2]int{{d0 - 1, d0}, {0, 1}, {0, d2}, {0, d3}})}, nil
	}

	mpo := make([]*tensor.Dense, 0, n)
	// First MPO is w[-1].
	mpo = append(mpo, w.Slice([][2]int{{d0 - 1, d0}, {0, d1}, {0, d2}, {0, d3}}))
	for range n - 2 {
		mpo = append(mpo, w)
	}
	// Last MPO is w[:, 0].
	mpo = append(mpo, w.Slice([][2]int{{0, d0}, {0, 1}, {0, d2}, {0, d3}}))
	return mpo, nil
}

// Contract multiplies out the bonds of mpo, and returns the dense operator on the full chain.
func Contract(mpo []*tensor.Dense) (*mat.CDense, error) {
	if len(mpo) == 0 {
		return nil, op.ErrEmpty
	}

	// partial[b] is the operator on the sites contracted so far, with the open right bond at b.
	partial := []*mat.CDense{scalar(1)}
	for i, w := range mpo {
		s := w.Shape()
		if s[leftAxis] != len(partial) {
			return nil, errors.Wrap(ErrBond, fmt.Sprintf("%d %#v %d", i, s, len(partial)))
		}
		pr, pc := partial[0].Dims()

		next := make([]*mat.CDense, s[rightAxis])
		for c := range next {
			next[c] = mat.NewCDense(pr*s[upAxis], pc*s[downAxis], nil)
			for b, p := range partial {
				l := local(w, b, c)
				if l == nil {
					continue
				}
				op.AddC(next[c], op.KronC(p, l))
			}
		}
		partial = next
	}

	if len(partial) != 1 {
		return nil, errors.Wrap(ErrBond, fmt.Sprintf("%d", len(partial)))
	}
	return partial[0], nil
}

// local returns the physical operator w[l, r], or nil if it is zero.
func local(w *tensor.Dense, l, r int) *mat.CDense {
	s := w.Shape()
	var m *mat.CDense
	for i := 0; i < s[upAxis]; i++ {
		for j := 0; j < s[downAxis]; j++ {
			v := w.At(l, r, i, j)
			if v == 0 {
				continue
			}
			if m == nil {
				m = mat.NewCDense(s[upAxis], s[downAxis], nil)
			}
			m.Set(i, j, complex128(v))
		}
	}
	return m
}

func scalar(v complex128) *mat.CDense {
	return mat.NewCDense(1, 1, []complex128{v})
}

func clone(x [][]complex64) [][]complex64 {
	c := make([][]complex64, len(x))
	for i, row := range x {
		c[i] = append([]complex64(nil), row...)
	}
	return c
}

func slice2(m mat.CMatrix) [][]complex64 {
	rows, cols := m.Dims()
	s := make([][]complex64, rows)
	for i := range s {
		s[i] = make([]complex64, cols)
		for j := range s[i] {
			s[i][j] = complex64(m.At(i, j))
		}
	}
	return s
}
