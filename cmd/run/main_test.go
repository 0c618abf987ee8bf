package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/spinchain"
	"github.com/fumin/spinchain/coo"
	"github.com/fumin/spinchain/op"
	"github.com/fumin/spinchain/store"
)

func TestSolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	st, err := store.Open(ctx, filepath.Join(root, fnameStore))
	require.NoError(t, err)
	defer st.Close()

	configs, err := newConfigs("zz, ising,yy", 1, 3, 1, 0.5, 0)
	require.NoError(t, err)
	require.Len(t, configs, 9)
	for _, cfg := range configs {
		require.NoError(t, solve(ctx, st, root, cfg))
		_, err := os.Stat(filepath.Join(cfg.dir(root), fnameDone))
		require.NoError(t, err)

		ok, err := st.Has(ctx, cfg.name(), cfg.n)
		require.NoError(t, err)
		require.True(t, ok)
	}

	m, err := coo.Read(filepath.Join(root, "ising_j1_hx0.5_hz0", "3"))
	require.NoError(t, err)
	h, err := spinchain.Ising(3, 1, 0.5, 0)
	require.NoError(t, err)
	require.True(t, mat.CEqual(m, op.Complex(h)), "%v", m)

	stats, err := gather(root, configs)
	require.NoError(t, err)
	require.Equal(t, "zz,2,4,4,4,0", formatStatistics(stats[1]))
	require.Equal(t, "yy,1,2,2,0,0", formatStatistics(stats[6]))
}

func TestSolveFromStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	st, err := store.Open(ctx, filepath.Join(root, fnameStore))
	require.NoError(t, err)
	defer st.Close()

	// An operator already in the store is exported without being rebuilt.
	cfg := Config{op: "x", n: 2}
	marker := mat.NewCDense(4, 4, nil)
	marker.Set(0, 0, 7)
	require.NoError(t, st.Put(ctx, cfg.name(), cfg.n, marker))
	require.NoError(t, solve(ctx, st, root, cfg))

	m, err := coo.Read(cfg.dir(root))
	require.NoError(t, err)
	require.True(t, mat.CEqual(m, marker), "%v", m)

	// Finished work is skipped.
	require.NoError(t, st.Delete(ctx, cfg.name(), cfg.n))
	require.NoError(t, solve(ctx, st, root, cfg))
	ok, err := st.Has(ctx, cfg.name(), cfg.n)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewConfigs(t *testing.T) {
	t.Parallel()
	_, err := newConfigs("zz,xy", 1, 2, 1, 1, 0)
	require.Error(t, err)
	_, err = newConfigs("zz", 0, 2, 1, 1, 0)
	require.Error(t, err)
	_, err = newConfigs("zz", 3, 2, 1, 1, 0)
	require.Error(t, err)
}
