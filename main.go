// sgpp fits a sparse grid regression to synthetic data and reports how well
// it generalizes. The target is a smooth bump that vanishes on the boundary
// of the domain, so the boundary-free hat basis can represent it.
//
// Usage:
//
//	sgpp -dim 3 -level 5 -samples 5000 -lambda 1e-5
//	sgpp -config run.json -precision float32 -v
//	sgpp -dim 2 -level 2 -stiffness
//
// A config file holds the same settings as JSON, e.g.
//
//	{"dim": 2, "level": 4, "low": [-1, 0], "up": [1, 2], "refine": 3}
//
// Flags given on the command line override the file. The report is written
// to stdout as JSON; progress goes to stderr.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"gonum.org/v1/gonum/mat"

	"github.com/SGpp/SGpp-sub010/grid"
	"github.com/SGpp/SGpp-sub010/learner"
	"github.com/SGpp/SGpp-sub010/solver"
	"github.com/SGpp/SGpp-sub010/updown"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "sgpp: %v\n", err)
		os.Exit(1)
	}
}

// round is the outcome of one fit on a fixed grid.
type round struct {
	Points     int     `json:"points"`
	Iterations int     `json:"iterations"`
	Residual   float64 `json:"residual"`
	Converged  bool    `json:"converged"`
	TrainMSE   float64 `json:"trainMSE"`
	TestMSE    float64 `json:"testMSE"`
	Seconds    float64 `json:"seconds"`
}

type report struct {
	Config config  `json:"config"`
	Rounds []round `json:"rounds"`
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sgpp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "JSON config file")
	verbose := fs.Bool("v", false, "log debug output")
	stiffness := fs.Bool("stiffness", false, "print the Laplace stiffness matrix of the grid and exit")

	def := defaultConfig()
	dim := fs.Int("dim", def.Dim, "number of dimensions")
	level := fs.Int("level", def.Level, "regular grid level")
	samples := fs.Int("samples", def.Samples, "number of training samples")
	testSamples := fs.Int("test", def.TestSamples, "number of test samples")
	strata := fs.Int("strata", def.Strata, "sub-boxes per dimension for stratified sampling")
	lambda := fs.Float64("lambda", def.Lambda, "regularization weight")
	reg := fs.String("reg", def.Regularizer, "regularizer: laplace or identity")
	maxIter := fs.Int("maxiter", def.MaxIter, "CG iteration limit")
	tol := fs.Float64("tol", def.Tol, "CG relative tolerance")
	threads := fs.Int("threads", def.Threads, "evaluation threads (0 for all CPUs)")
	precision := fs.String("precision", def.Precision, "kernel precision: float32 or float64")
	seed := fs.Int64("seed", def.Seed, "random seed")
	refine := fs.Int("refine", def.Refine, "number of refinement rounds")
	refinePoints := fs.Int("refine-points", def.RefinePoints, "points refined per round")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dim":
			cfg.Dim = *dim
		case "level":
			cfg.Level = *level
		case "samples":
			cfg.Samples = *samples
		case "test":
			cfg.TestSamples = *testSamples
		case "strata":
			cfg.Strata = *strata
		case "lambda":
			cfg.Lambda = *lambda
		case "reg":
			cfg.Regularizer = *reg
		case "maxiter":
			cfg.MaxIter = *maxIter
		case "tol":
			cfg.Tol = *tol
		case "threads":
			cfg.Threads = *threads
		case "precision":
			cfg.Precision = *precision
		case "seed":
			cfg.Seed = *seed
		case "refine":
			cfg.Refine = *refine
		case "refine-points":
			cfg.RefinePoints = *refinePoints
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl}))

	s, err := grid.Regular(cfg.Dim, cfg.Level)
	if err != nil {
		return err
	}
	box, err := cfg.box()
	if err != nil {
		return err
	}
	if *stiffness {
		return printStiffness(stdout, s, box)
	}

	opts, err := cfg.options()
	if err != nil {
		return err
	}
	r, err := learner.New(s, append(opts, learner.WithLogger(logger))...)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	x, y := sample(rng, box, cfg.Samples, cfg.Strata)
	tx, ty := sample(rng, box, cfg.TestSamples, 1)

	rep := report{Config: cfg}
	for i := 0; i <= cfg.Refine; i++ {
		if i > 0 {
			added, err := r.Refine(cfg.RefinePoints)
			if err != nil {
				return err
			}
			logger.Info("refined", slog.Int("round", i), slog.Int("added", added), slog.Int("points", s.Size()))
		}
		start := time.Now()
		if err := r.Fit(x, y); err != nil {
			return err
		}
		train, err := r.MSE(x, y)
		if err != nil {
			return err
		}
		test, err := r.MSE(tx, ty)
		if err != nil {
			return err
		}
		st := r.Stats()
		rep.Rounds = append(rep.Rounds, round{
			Points:     st.Points,
			Iterations: st.Iterations,
			Residual:   st.Residual,
			Converged:  st.Converged,
			TrainMSE:   train,
			TestMSE:    test,
			Seconds:    time.Since(start).Seconds(),
		})
	}

	data, err := sonnet.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", data)
	return err
}

// target is the synthetic function being learned, given unit coordinates.
func target(u []float64) float64 {
	v := 1.0
	for _, ud := range u {
		v *= 4 * ud * (1 - ud)
	}
	return v
}

// sample draws n points from box, cycling through its strata^dim sub-boxes
// so every region receives an equal share.
func sample(rng *rand.Rand, box *grid.BoundingBox, n, strata int) (*mat.Dense, []float64) {
	boxes := box.Split(strata)
	dim := box.Dim()
	x := mat.NewDense(n, dim, nil)
	y := make([]float64, n)
	u := make([]float64, dim)
	for i := 0; i < n; i++ {
		sub := boxes[i%len(boxes)]
		for d := range u {
			u[d] = rng.Float64()
		}
		row := sub.FromUnit(nil, u)
		for d := range row {
			row[d] = min(max(row[d], box.Low[d]), box.Up[d])
		}
		x.SetRow(i, row)
		y[i] = target(box.ToUnit(u, row))
	}
	return x, y
}

func printStiffness(w io.Writer, s *grid.Storage, box *grid.BoundingBox) error {
	lap, err := updown.NewLaplace(s, box)
	if err != nil {
		return err
	}
	a, err := solver.Assemble(lap, s.Size())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%v\n", mat.Formatted(a))
	return err
}
