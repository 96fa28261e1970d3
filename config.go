package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"github.com/SGpp/SGpp-sub010/grid"
	"github.com/SGpp/SGpp-sub010/learner"
)

var errConfig = errors.New("invalid config")

// config describes one regression run. Zero-valued fields of a config file
// keep their defaults.
type config struct {
	Dim          int       `json:"dim"`
	Level        int       `json:"level"`
	Samples      int       `json:"samples"`
	TestSamples  int       `json:"testSamples"`
	Strata       int       `json:"strata"`
	Lambda       float64   `json:"lambda"`
	Regularizer  string    `json:"regularizer"`
	MaxIter      int       `json:"maxIter"`
	Tol          float64   `json:"tol"`
	Threads      int       `json:"threads"`
	Precision    string    `json:"precision"`
	Seed         int64     `json:"seed"`
	Low          []float64 `json:"low"`
	Up           []float64 `json:"up"`
	Refine       int       `json:"refine"`
	RefinePoints int       `json:"refinePoints"`
}

func defaultConfig() config {
	return config{
		Dim:          2,
		Level:        5,
		Samples:      2000,
		TestSamples:  1000,
		Strata:       1,
		Lambda:       1e-6,
		Regularizer:  "laplace",
		MaxIter:      500,
		Tol:          1e-8,
		Precision:    "float64",
		Seed:         1,
		RefinePoints: 5,
	}
}

// loadConfig decodes the JSON file at path over the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c config) validate() error {
	switch {
	case c.Dim < 1:
		return fmt.Errorf("dim %d: %w", c.Dim, errConfig)
	case c.Level < 1 || c.Level > grid.MaxLevel:
		return fmt.Errorf("level %d: %w", c.Level, errConfig)
	case c.Samples < 1 || c.TestSamples < 1:
		return fmt.Errorf("samples %d/%d: %w", c.Samples, c.TestSamples, errConfig)
	case c.Strata < 1 || math.Pow(float64(c.Strata), float64(c.Dim)) > float64(c.Samples):
		return fmt.Errorf("%d strata per dim for %d samples: %w", c.Strata, c.Samples, errConfig)
	case c.Lambda < 0:
		return fmt.Errorf("lambda %g: %w", c.Lambda, errConfig)
	case c.MaxIter < 1 || c.Tol <= 0:
		return fmt.Errorf("maxIter %d tol %g: %w", c.MaxIter, c.Tol, errConfig)
	case c.Precision != "float32" && c.Precision != "float64":
		return fmt.Errorf("precision %q: %w", c.Precision, errConfig)
	case c.Refine < 0 || c.RefinePoints < 1:
		return fmt.Errorf("refine %d x %d: %w", c.Refine, c.RefinePoints, errConfig)
	}
	if _, err := learner.ParseRegularizer(c.Regularizer); err != nil {
		return err
	}
	_, err := c.box()
	return err
}

// box returns the data domain, the unit cube unless both bounds are set.
func (c config) box() (*grid.BoundingBox, error) {
	if c.Low == nil && c.Up == nil {
		return grid.UnitBox(c.Dim), nil
	}
	if len(c.Low) != c.Dim || len(c.Up) != c.Dim {
		return nil, fmt.Errorf("box bounds %v %v for dim %d: %w", c.Low, c.Up, c.Dim, errConfig)
	}
	return grid.NewBoundingBox(c.Low, c.Up)
}

func (c config) options() ([]learner.Option, error) {
	reg, err := learner.ParseRegularizer(c.Regularizer)
	if err != nil {
		return nil, err
	}
	box, err := c.box()
	if err != nil {
		return nil, err
	}
	opts := []learner.Option{
		learner.WithLambda(c.Lambda),
		learner.WithRegularizer(reg),
		learner.WithMaxIter(c.MaxIter),
		learner.WithTol(c.Tol),
		learner.WithBox(box),
	}
	if c.Threads > 0 {
		opts = append(opts, learner.WithThreads(c.Threads))
	}
	if c.Precision == "float32" {
		opts = append(opts, learner.WithSinglePrecision())
	}
	return opts, nil
}
