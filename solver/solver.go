// Package solver holds iterative and direct solvers for linear systems given
// as matrix-free operators.
package solver

import (
	"bytes"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNotConverged is returned together with the last iterate when CG
// reaches MaxIter before the tolerance.
var ErrNotConverged = errors.New("solver: no convergence")

// Operator is a square linear map. Mult sets y = A*x.
type Operator interface {
	Mult(x, y []float64) error
}

// OperatorFunc adapts a function to the Operator interface.
type OperatorFunc func(x, y []float64) error

func (f OperatorFunc) Mult(x, y []float64) error { return f(x, y) }

type Solver interface {
	Solve(A Operator, b []float64) (soln []float64, err error)
	Status() string
}

// Preconditioner is a function that takes a (e.g. residual) vector r and
// applies a preconditioning matrix to it and stores the result in z.
type Preconditioner func(z, r []float64)

// Identity is the preconditioner that does nothing.
func Identity(z, r []float64) { copy(z, r) }

// Jacobi returns a preconditioner dividing by the operator's diagonal.
func Jacobi(diag []float64) Preconditioner {
	inv := make([]float64, len(diag))
	for i, v := range diag {
		inv[i] = 1 / v
	}
	return func(z, r []float64) { floats.MulTo(z, inv, r) }
}

// Diagonal extracts the diagonal of an n×n operator by applying it to unit
// vectors.
func Diagonal(A Operator, n int) ([]float64, error) {
	diag := make([]float64, n)
	e := make([]float64, n)
	col := make([]float64, n)
	for i := range diag {
		e[i] = 1
		if err := A.Mult(e, col); err != nil {
			return nil, err
		}
		diag[i] = col[i]
		e[i] = 0
	}
	return diag, nil
}

// CG implements a linear conjugate gradient solver (see
// http://wikipedia.org/wiki/Conjugate_gradient_method) for symmetric
// positive definite operators. It stops once the residual norm drops below
// Tol times the norm of the right hand side.
type CG struct {
	MaxIter int
	Tol     float64
	// Preconditioner is the preconditioning matrix used for each iteration of
	// the CG solver. If it is nil, Identity is used.
	Preconditioner Preconditioner
	niter          int
	ndof           int
	residual       float64
}

// Niter returns the number of iterations of the last solve.
func (cg *CG) Niter() int { return cg.niter }

// Residual returns the relative residual norm reached by the last solve.
func (cg *CG) Residual() float64 { return cg.residual }

func (cg *CG) Status() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "CG Solver Stats:\n")
	fmt.Fprintf(&buf, "    %v dof\n", cg.ndof)
	fmt.Fprintf(&buf, "    converged in %v iterations\n", cg.niter)
	fmt.Fprintf(&buf, "    relative residual %.3g", cg.residual)
	return buf.String()
}

// Solve returns x with A*x = b. If MaxIter is reached first, the last
// iterate is returned with ErrNotConverged.
func (cg *CG) Solve(A Operator, b []float64) (x []float64, err error) {
	precond := cg.Preconditioner
	if precond == nil {
		precond = Identity
	}

	size := len(b)
	cg.ndof = size
	cg.niter = 0
	cg.residual = 0
	x = make([]float64, size)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return x, nil
	}

	r := make([]float64, size)
	z := make([]float64, size)
	p := make([]float64, size)
	ap := make([]float64, size)

	copy(r, b) // x = 0
	precond(z, r)
	copy(p, z)
	rz := floats.Dot(r, z)

	for cg.niter = 1; cg.niter <= cg.MaxIter; cg.niter++ {
		if err := A.Mult(p, ap); err != nil {
			return nil, err
		}
		alpha := rz / floats.Dot(p, ap)
		floats.AddScaled(x, alpha, p)   // xnext = x+alpha*p
		floats.AddScaled(r, -alpha, ap) // rnext = r-alpha*A*p
		cg.residual = floats.Norm(r, 2) / bnorm
		if cg.residual < cg.Tol {
			return x, nil
		}
		precond(z, r)
		rznext := floats.Dot(r, z)
		beta := rznext / rz
		rz = rznext
		floats.AddScaledTo(p, z, beta, p) // pnext = z + beta*p
	}
	cg.niter = cg.MaxIter
	return x, fmt.Errorf("residual %.3g after %d iterations: %w", cg.residual, cg.MaxIter, ErrNotConverged)
}

// Assemble builds the dense n×n matrix of A column by column.
func Assemble(A Operator, n int) (*mat.Dense, error) {
	m := mat.NewDense(n, n, nil)
	e := make([]float64, n)
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		e[j] = 1
		if err := A.Mult(e, col); err != nil {
			return nil, err
		}
		m.SetCol(j, col)
		e[j] = 0
	}
	return m, nil
}

// DenseLU assembles the operator and solves by LU factorization. It is
// meant for small systems and as a reference for the iterative solvers.
type DenseLU struct{}

func (DenseLU) Status() string { return "" }

func (DenseLU) Solve(A Operator, b []float64) ([]float64, error) {
	m, err := Assemble(A, len(b))
	if err != nil {
		return nil, err
	}
	var u mat.VecDense
	if err := u.SolveVec(m, mat.NewVecDense(len(b), b)); err != nil {
		return nil, err
	}
	return u.RawVector().Data, nil
}
