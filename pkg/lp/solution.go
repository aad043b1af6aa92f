package lp

import (
	"context"
	"fmt"
	"math"
)

// Status is the terminal outcome reported by a solver
type Status int

const (
	StatusOptimal Status = iota + 1
	StatusInfeasible
	StatusUnbounded
	StatusSolverError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusSolverError:
		return "SOLVER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// DefaultTolerance is how far a value may sit from 0 or 1 and still count
const DefaultTolerance = 1e-6

// Solution is what a solver returns. Values is only populated, one entry per
// Var, when Status is StatusOptimal.
type Solution struct {
	Status     Status
	Values     []float64
	Objective  float64
	Iterations int
	Message    string
}

// Value returns the value of a variable, or 0 when there is no solution
func (s *Solution) Value(v Var) float64 {
	if s == nil || int(v) < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// Options tune an engine. Zero values mean "engine default".
type Options struct {
	MaxIterations int
	Tolerance     float64
	Bland         bool
}

// Solver solves a Problem. A returned error means the call itself was
// misused (nil problem, cancelled context); every engine outcome, including
// infeasibility, is reported through Solution.Status.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// Prepare performs the checks every engine needs before doing any work. It
// returns a non-nil Solution when the problem can be decided without an
// engine: a problem with no variables is optimal if all of its constraints
// hold at zero, and infeasible otherwise.
func Prepare(ctx context.Context, p *Problem) (*Solution, error) {
	if p == nil {
		return nil, fmt.Errorf("lp: nil problem")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lp: solve not started: %w", err)
	}
	if p.NumVariables() > 0 {
		return nil, nil
	}
	if err := p.Check([]float64{}, DefaultTolerance); err != nil {
		return &Solution{Status: StatusInfeasible, Message: err.Error()}, nil
	}
	return &Solution{Status: StatusOptimal, Values: []float64{}, Message: "no variables"}, nil
}

// Finish turns raw engine output for an optimal basis into a Solution. The
// values are snapped to 0/1 and checked against every constraint, so an
// engine that returns a fractional vertex, or a point that does not satisfy
// the model, is reported as StatusSolverError rather than trusted.
func Finish(p *Problem, raw []float64, iterations int, tol float64) *Solution {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if len(raw) < p.NumVariables() {
		return &Solution{
			Status:     StatusSolverError,
			Iterations: iterations,
			Message:    fmt.Sprintf("engine returned %d values for %d variables", len(raw), p.NumVariables()),
		}
	}

	values := make([]float64, p.NumVariables())
	for i := range values {
		v := raw[i]
		switch {
		case math.IsNaN(v):
			return &Solution{Status: StatusSolverError, Iterations: iterations,
				Message: fmt.Sprintf("variable %s has no value", p.VariableName(Var(i)))}
		case math.Abs(v) <= tol:
			values[i] = 0
		case math.Abs(v-1) <= tol:
			values[i] = 1
		default:
			return &Solution{Status: StatusSolverError, Iterations: iterations,
				Message: fmt.Sprintf("variable %s has fractional value %g", p.VariableName(Var(i)), v)}
		}
	}

	if err := p.Check(values, tol); err != nil {
		return &Solution{Status: StatusSolverError, Iterations: iterations, Message: err.Error()}
	}

	return &Solution{
		Status:     StatusOptimal,
		Values:     values,
		Objective:  p.Evaluate(values),
		Iterations: iterations,
	}
}
