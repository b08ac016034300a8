package trace

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Fit status ordinals, from worst to best error matrix.
const (
	FitStatusFailed       = 0
	FitStatusApproximate  = 1
	FitStatusForcedPosDef = 2
	FitStatusGood         = 3
)

var ErrNoFreeParameters = errors.New("no free parameters")

// Parameter is one fit parameter. Infinite bounds leave that side open.
type Parameter struct {
	Name  string
	Value float64
	Lower float64
	Upper float64
	Fixed bool
}

func (p Parameter) hasLower() bool { return !math.IsInf(p.Lower, -1) }
func (p Parameter) hasUpper() bool { return !math.IsInf(p.Upper, 1) }

// internal maps a bounded external value to the unbounded space the
// minimiser works in.
func (p Parameter) internal(v float64) float64 {
	switch {
	case p.hasLower() && p.hasUpper():
		arg := 2.*(v-p.Lower)/(p.Upper-p.Lower) - 1.
		return math.Asin(math.Max(-1, math.Min(1, arg)))
	case p.hasLower():
		d := math.Max(v-p.Lower, 0) + 1.
		return math.Sqrt(d*d - 1.)
	case p.hasUpper():
		d := math.Max(p.Upper-v, 0) + 1.
		return math.Sqrt(d*d - 1.)
	}
	return v
}

func (p Parameter) external(u float64) float64 {
	switch {
	case p.hasLower() && p.hasUpper():
		return p.Lower + (p.Upper-p.Lower)*(math.Sin(u)+1.)/2.
	case p.hasLower():
		return p.Lower - 1. + math.Sqrt(u*u+1.)
	case p.hasUpper():
		return p.Upper + 1. - math.Sqrt(u*u+1.)
	}
	return u
}

// SolverResult holds the external parameter values at the minimum.
type SolverResult struct {
	Values      []float64
	Min         float64
	Status      int
	Free        int
	Evaluations int
}

// Solver minimises a function of bounded parameters with Nelder-Mead. It
// holds only settings; parameters and bounds are passed with every call, so
// one Solver can be shared between goroutines.
type Solver struct {
	MaxEvaluations int
	Tolerance      float64
	Iterations     int
}

func NewSolver() *Solver {
	return &Solver{
		MaxEvaluations: 5000,
		Tolerance:      1.e-8,
		Iterations:     100,
	}
}

// Minimize finds the minimum of f starting from the parameter values. The
// returned status grades the error matrix: 3 if the Hessian at the minimum is
// positive definite, 2 if only its diagonal is positive, 1 otherwise.
func (s *Solver) Minimize(f func(p []float64) float64, params []Parameter) (SolverResult, error) {
	var free []int
	for i, p := range params {
		if !p.Fixed {
			free = append(free, i)
		}
	}
	res := SolverResult{Free: len(free)}
	if len(free) == 0 {
		return res, ErrNoFreeParameters
	}

	values := make([]float64, len(params))
	for i, p := range params {
		values[i] = p.Value
	}
	toExternal := func(u []float64) []float64 {
		ext := append([]float64(nil), values...)
		for k, i := range free {
			ext[i] = params[i].external(u[k])
		}
		return ext
	}
	objective := func(u []float64) float64 {
		v := f(toExternal(u))
		if math.IsNaN(v) {
			return math.MaxFloat64
		}
		return v
	}

	u0 := make([]float64, len(free))
	for k, i := range free {
		u0[k] = params[i].internal(params[i].Value)
	}

	settings := &optimize.Settings{
		FuncEvaluations: s.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.Tolerance,
			Iterations: s.Iterations,
		},
	}
	result, err := optimize.Minimize(optimize.Problem{Func: objective}, u0, settings, &optimize.NelderMead{})
	if result == nil {
		return res, fmt.Errorf("minimisation failed: %w", err)
	}
	res.Values = toExternal(result.X)
	res.Min = result.F
	res.Evaluations = result.Stats.FuncEvaluations
	if err != nil {
		res.Status = FitStatusFailed
		return res, fmt.Errorf("minimisation failed: %w", err)
	}
	res.Status = errorMatrixStatus(objective, result.X)
	return res, nil
}

func errorMatrixStatus(f func([]float64) float64, x []float64) int {
	hess := mat.NewSymDense(len(x), nil)
	fd.Hessian(hess, f, x, nil)

	var chol mat.Cholesky
	if chol.Factorize(hess) {
		return FitStatusGood
	}
	for i := 0; i < len(x); i++ {
		if !(hess.At(i, i) > 0) {
			return FitStatusApproximate
		}
	}
	return FitStatusForcedPosDef
}
