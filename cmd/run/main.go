package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/spinchain"
	"github.com/fumin/spinchain/coo"
	"github.com/fumin/spinchain/op"
	"github.com/fumin/spinchain/store"
	"github.com/fumin/spinchain/util"
)

const (
	fnameDone  = "done.txt"
	fnameStore = "operators.db"
)

var (
	runDir   = flag.String("d", filepath.Join("runs", "spinchain"), "run directory")
	dbPath   = flag.String("db", "", "operator store, defaults to "+fnameStore+" in the run directory")
	opsFlag  = flag.String("ops", "zz,x,z", "comma separated operators among zz, x, z, yy, ising")
	nMin     = flag.Int("nmin", 1, "minimum number of sites")
	nMax     = flag.Int("nmax", 8, "maximum number of sites")
	coupling = flag.Float64("j", 1, "ising coupling")
	hx       = flag.Float64("hx", 1, "ising transverse field")
	hz       = flag.Float64("hz", 0, "ising longitudinal field")
)

type Config struct {
	op string
	n  int
	j  float64
	hx float64
	hz float64
}

func (cfg Config) name() string {
	if cfg.op == "ising" {
		return fmt.Sprintf("ising_j%g_hx%g_hz%g", cfg.j, cfg.hx, cfg.hz)
	}
	return cfg.op
}

func (cfg Config) dir(root string) string {
	return filepath.Join(root, cfg.name(), strconv.Itoa(cfg.n))
}

func newConfigs(ops string, nmin, nmax int, j, hx, hz float64) ([]Config, error) {
	if nmin < 1 || nmax < nmin {
		return nil, errors.Errorf("%d %d", nmin, nmax)
	}
	configs := make([]Config, 0)
	for _, o := range strings.Split(ops, ",") {
		o = strings.TrimSpace(o)
		switch o {
		case "zz", "x", "z", "yy", "ising":
		default:
			return nil, errors.Errorf("unknown operator %q", o)
		}
		for n := nmin; n <= nmax; n++ {
			configs = append(configs, Config{op: o, n: n, j: j, hx: hx, hz: hz})
		}
	}
	return configs, nil
}

func build(cfg Config) (mat.CMatrix, error) {
	var m *mat.Dense
	var err error
	switch cfg.op {
	case "zz":
		m, err = spinchain.ZZ(cfg.n)
	case "x":
		m, err = spinchain.X(cfg.n)
	case "z":
		m, err = spinchain.Z(cfg.n)
	case "ising":
		m, err = spinchain.Ising(cfg.n, cfg.j, cfg.hx, cfg.hz)
	case "yy":
		yy, err := spinchain.YY(cfg.n)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return yy, nil
	default:
		return nil, errors.Errorf("unknown operator %q", cfg.op)
	}
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return op.Complex(m), nil
}

func solve(ctx context.Context, st *store.Store, root string, cfg Config) error {
	dir := cfg.dir(root)
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	m, err := st.Get(ctx, cfg.name(), cfg.n)
	switch {
	case errors.Is(err, store.ErrNotFound):
		m, err := build(cfg)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if err := st.Put(ctx, cfg.name(), cfg.n, m); err != nil {
			return errors.Wrap(err, "")
		}
		if err := coo.Write(dir, m); err != nil {
			return errors.Wrap(err, "")
		}
	case err != nil:
		return errors.Wrap(err, "")
	default:
		if err := coo.Write(dir, m); err != nil {
			return errors.Wrap(err, "")
		}
	}

	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

type Statistics struct {
	cfg   Config
	rows  int
	cols  int
	nnz   int
	trace complex128
}

func gather(root string, configs []Config) ([]Statistics, error) {
	stats := make([]Statistics, 0, len(configs))
	for _, cfg := range configs {
		m, err := coo.Read(cfg.dir(root))
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%#v", cfg))
		}

		s := Statistics{cfg: cfg}
		s.rows, s.cols = m.Dims()
		for i := 0; i < s.rows; i++ {
			for j := 0; j < s.cols; j++ {
				v := m.At(i, j)
				if v != 0 {
					s.nnz++
				}
				if i == j {
					s.trace += v
				}
			}
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func formatStatistics(s Statistics) string {
	return fmt.Sprintf("%s,%d,%d,%d,%d,%s", s.cfg.name(), s.cfg.n, s.rows, s.cols, s.nnz, coo.FormatNumpy(s.trace))
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	ctx := context.Background()
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	if *dbPath == "" {
		*dbPath = filepath.Join(*runDir, fnameStore)
	}
	st, err := store.Open(ctx, *dbPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer st.Close()

	configs, err := newConfigs(*opsFlag, *nMin, *nMax, *coupling, *hx, *hz)
	if err != nil {
		return errors.Wrap(err, "")
	}

	// Build the operators.
	throttler := util.NewSkipThrottler(10 * time.Second)
	for i, cfg := range configs {
		if err := solve(ctx, st, *runDir, cfg); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%#v", cfg))
		}
		if throttler.Ok() || i == len(configs)-1 {
			log.Printf("%d/%d %s %d, skipped logging %d", i+1, len(configs), cfg.name(), cfg.n, throttler.Skipped())
		}
	}

	// Gather results and print them.
	stats, err := gather(*runDir, configs)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("op,n,rows,cols,nnz,trace\n")
	for _, s := range stats {
		fmt.Println(formatStatistics(s))
	}
	return nil
}
