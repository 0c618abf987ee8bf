package coo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/spinchain"
	"github.com/fumin/spinchain/op"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()
	yy, err := spinchain.YY(3)
	require.NoError(t, err)
	x, err := spinchain.X(3)
	require.NoError(t, err)

	tests := []struct {
		name string
		m    mat.CMatrix
	}{
		{name: "yy", m: yy},
		{name: "x", m: op.Complex(x)},
		{name: "sy", m: op.SigmaY},
		{name: "zeros", m: mat.NewCDense(2, 2, nil)},
		{name: "mixed", m: mat.NewCDense(2, 3, []complex128{1.5 - 2i, 1.5 - 2i, 0, 0, -0.25, 3i})},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			require.NoError(t, Write(dir, test.m))

			m, err := Read(dir)
			require.NoError(t, err)
			require.True(t, mat.CEqual(m, test.m), "%v, expected %v", m, test.m)
		})
	}
}

func TestWriteCompresses(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	m := mat.NewCDense(2, 3, []complex128{
		1, 1, 0,
		0, -1i, 2,
	})
	require.NoError(t, Write(dir, m))

	shape, err := os.ReadFile(filepath.Join(dir, FnameShape))
	require.NoError(t, err)
	require.Equal(t, "2,3", string(shape))

	b, err := os.ReadFile(filepath.Join(dir, FnameCOO))
	require.NoError(t, err)
	require.Equal(t, "1,0,0\n,,1\n0-1j,1,1\n2,,2\n", string(b))
}

func TestReadUncompressed(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FnameShape), []byte("2,2"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FnameCOO), []byte("1,0,1\n1+2j,1,0\n"), 0644))

	m, err := Read(dir)
	require.NoError(t, err)
	require.True(t, mat.CEqual(m, mat.NewCDense(2, 2, []complex128{0, 1, 1 + 2i, 0})), "%v", m)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		shape string
		coo   string
	}{
		{name: "bad shape", shape: "2", coo: ""},
		{name: "zero shape", shape: "0,2", coo: ""},
		{name: "out of range", shape: "2,2", coo: "1,2,0\n"},
		{name: "bad value", shape: "2,2", coo: "x,0,0\n"},
		{name: "bad record", shape: "2,2", coo: "1,0\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FnameShape), []byte(test.shape), 0644))
			require.NoError(t, os.WriteFile(filepath.Join(dir, FnameCOO), []byte(test.coo), 0644))
			_, err := Read(dir)
			require.Error(t, err)
		})
	}
}

func TestFormatNumpy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v complex128
		s string
	}{
		{v: 1, s: "1"},
		{v: -0.5, s: "-0.5"},
		{v: 1i, s: "0+1j"},
		{v: 2 - 3i, s: "2-3j"},
	}
	for _, test := range tests {
		require.Equal(t, test.s, FormatNumpy(test.v))
		v, err := ParseNumpy(test.s)
		require.NoError(t, err)
		require.Equal(t, test.v, v)
	}
}
