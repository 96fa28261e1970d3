package learner

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/SGpp/SGpp-sub010/grid"
)

// Regularizer selects the operator C of the penalty term lambda*M*C.
type Regularizer int

const (
	// Laplace penalizes the H1 seminorm of the surrogate.
	Laplace Regularizer = iota
	// Identity penalizes the Euclidean norm of the surpluses.
	Identity
)

// ParseRegularizer maps "laplace" and "identity" to their Regularizer.
func ParseRegularizer(name string) (Regularizer, error) {
	switch name {
	case "laplace":
		return Laplace, nil
	case "identity":
		return Identity, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrRegularizer)
}

func (r Regularizer) String() string {
	if r == Identity {
		return "identity"
	}
	return "laplace"
}

type options struct {
	lambda  float64
	reg     Regularizer
	maxIter int
	tol     float64
	threads int
	single  bool
	box     *grid.BoundingBox
	logger  *slog.Logger
}

// Option configures a Regression.
type Option func(*options)

// WithLambda sets the regularization weight.
func WithLambda(lambda float64) Option { return func(o *options) { o.lambda = lambda } }

// WithRegularizer sets the regularization operator.
func WithRegularizer(r Regularizer) Option { return func(o *options) { o.reg = r } }

// WithMaxIter sets the CG iteration limit.
func WithMaxIter(n int) Option { return func(o *options) { o.maxIter = n } }

// WithTol sets the CG tolerance relative to the norm of B^T*y.
func WithTol(tol float64) Option { return func(o *options) { o.tol = tol } }

// WithThreads sets the number of evaluation workers.
func WithThreads(n int) Option { return func(o *options) { o.threads = n } }

// WithSinglePrecision evaluates the basis in float32.
func WithSinglePrecision() Option { return func(o *options) { o.single = true } }

// WithBox sets the domain the data lives in. The default is the unit cube.
func WithBox(box *grid.BoundingBox) Option { return func(o *options) { o.box = box } }

// WithLogger sets the logger for fit summaries.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func gatherOptions(opts []Option) options {
	o := options{
		lambda:  1e-6,
		reg:     Laplace,
		maxIter: 500,
		tol:     1e-8,
		threads: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
