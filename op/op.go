// Package op provides the local spin-1/2 operators and the Kronecker product
// reduction used to lift them onto a chain of sites.
package op

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmpty is returned when reducing an empty operator list.
	ErrEmpty = errors.New("empty operator list")
	// ErrNotReal is returned when narrowing a matrix with a nonzero imaginary part.
	ErrNotReal = errors.New("not real")
)

// The local operators must not be modified.
var (
	Identity mat.Matrix = mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1,
	})
	SigmaX mat.Matrix = mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	})
	SigmaY mat.CMatrix = mat.NewCDense(2, 2, []complex128{
		0, -1i,
		1i, 0,
	})
	SigmaZ mat.Matrix = mat.NewDense(2, 2, []float64{
		1, 0,
		0, -1,
	})
)

// ReduceKronecker folds ops from left to right with the Kronecker product,
// so that ops[0] is the outermost factor.
func ReduceKronecker(ops ...mat.Matrix) (*mat.Dense, error) {
	if len(ops) == 0 {
		return nil, ErrEmpty
	}

	term := mat.DenseCopyOf(ops[0])
	for _, o := range ops[1:] {
		var next mat.Dense
		next.Kronecker(term, o)
		term = &next
	}
	return term, nil
}

// ReduceKroneckerC is ReduceKronecker for complex matrices.
func ReduceKroneckerC(ops ...mat.CMatrix) (*mat.CDense, error) {
	if len(ops) == 0 {
		return nil, ErrEmpty
	}

	term := copyC(ops[0])
	for _, o := range ops[1:] {
		term = KronC(term, o)
	}
	return term, nil
}

// KronC returns the Kronecker product of a and b.
func KronC(a, b mat.CMatrix) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	k := mat.NewCDense(ar*br, ac*bc, nil)
	for ai := 0; ai < ar; ai++ {
		for aj := 0; aj < ac; aj++ {
			av := a.At(ai, aj)
			if av == 0 {
				continue
			}
			for bi := 0; bi < br; bi++ {
				for bj := 0; bj < bc; bj++ {
					k.Set(ai*br+bi, aj*bc+bj, av*b.At(bi, bj))
				}
			}
		}
	}
	return k
}

// AddC adds a into dst element-wise.
func AddC(dst *mat.CDense, a mat.CMatrix) {
	dr, dc := dst.Dims()
	ar, ac := a.Dims()
	if dr != ar || dc != ac {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", dr, dc, ar, ac))
	}
	for i := 0; i < dr; i++ {
		for j := 0; j < dc; j++ {
			if v := a.At(i, j); v != 0 {
				dst.Set(i, j, dst.At(i, j)+v)
			}
		}
	}
}

// Complex widens a real matrix into a complex one.
func Complex(m mat.Matrix) *mat.CDense {
	rows, cols := m.Dims()
	c := mat.NewCDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c.Set(i, j, complex(m.At(i, j), 0))
		}
	}
	return c
}

// Real narrows a complex matrix into a real one.
// Imaginary parts are never dropped, instead ErrNotReal is returned.
func Real(m mat.CMatrix) (*mat.Dense, error) {
	rows, cols := m.Dims()
	r := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if imag(v) != 0 {
				return nil, errors.Wrap(ErrNotReal, fmt.Sprintf("%d %d %v", i, j, v))
			}
			r.Set(i, j, real(v))
		}
	}
	return r, nil
}

func copyC(m mat.CMatrix) *mat.CDense {
	rows, cols := m.Dims()
	c := mat.NewCDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c.Set(i, j, m.At(i, j))
		}
	}
	return c
}
