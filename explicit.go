package spinchain

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ExplicitZZ computes ZZ directly in the computational basis, without any Kronecker products.
func ExplicitZZ(n int) (*mat.Dense, error) {
	m, err := newZeros(n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	for i, state := range bits(n) {
		m.Set(i, i, couplingDiag(state))
	}
	return m, nil
}

// ExplicitX computes X directly in the computational basis.
func ExplicitX(n int) (*mat.Dense, error) {
	m, err := newZeros(n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	// flipped is a reusable buffer for the flipped state.
	flipped := make([]byte, n)
	for i, state := range bits(n) {
		for site := range state {
			copy(flipped, state)
			flipped[site] ^= 1
			col := bitIndex(flipped)
			m.Set(i, col, m.At(i, col)+1)
		}
	}
	return m, nil
}

// ExplicitZ computes Z directly in the computational basis.
func ExplicitZ(n int) (*mat.Dense, error) {
	m, err := newZeros(n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	for i, state := range bits(n) {
		var diag float64
		for _, b := range state {
			diag += spin(b)
		}
		m.Set(i, i, diag)
	}
	return m, nil
}

// Spin returns the Sz eigenvalues of the basis state with index i in a chain of n sites.
func Spin(n, i int) ([]int8, error) {
	if n < 1 {
		return nil, errors.Wrap(ErrDomain, fmt.Sprintf("%d", n))
	}
	if i < 0 || i >= 1<<n {
		return nil, errors.Errorf("%d %d", n, i)
	}
	state := make([]byte, n)
	indexBit(state, i)
	spins := make([]int8, n)
	for k, b := range state {
		spins[k] = int8(spin(b))
	}
	return spins, nil
}

func couplingDiag(state []byte) float64 {
	var diag float64
	for site := 1; site < len(state); site++ {
		diag += spin(state[site-1]) * spin(state[site])
	}
	return diag
}

// spin maps bit 0 to spin up, and bit 1 to spin down.
func spin(b byte) float64 {
	if b == 0 {
		return 1
	}
	return -1
}

// indexBit writes the binary digits of i into state, most significant first.
func indexBit(state []byte, i int) {
	n := len(state)
	for k := range state {
		state[k] = byte(i>>(n-1-k)) & 1
	}
}

func bits(n int) func(yield func(int, []byte) bool) {
	state := make([]byte, n)
	return func(yield func(int, []byte) bool) {
		numStates := 1 << n
		for i := range numStates {
			indexBit(state, i)
			if !yield(i, state) {
				return
			}
		}
	}
}

func bitIndex(state []byte) int {
	idx := 0
	for i := len(state) - 1; i >= 0; i-- {
		if state[i] == 1 {
			idx += 1 << (len(state) - 1 - i)
		}
	}
	return idx
}
