// Package gonumsolver solves lp problems with gonum's standard-form simplex.
package gonumsolver

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/jakechorley/badge-groups/pkg/lp"
)

const defaultTolerance = 1e-10

// Solver is an lp.Solver backed by gonum
type Solver struct {
	opts lp.Options
}

// New creates a Solver. Only Tolerance is used; gonum picks its own pivot
// rule and has no iteration limit.
func New(opts lp.Options) *Solver {
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTolerance
	}
	return &Solver{opts: opts}
}

// Name implements lp.Solver
func (s *Solver) Name() string {
	return "gonum"
}

// Solve implements lp.Solver
func (s *Solver) Solve(ctx context.Context, p *lp.Problem) (sol *lp.Solution, err error) {
	if decided, err := lp.Prepare(ctx, p); decided != nil || err != nil {
		return decided, err
	}

	sf, infeasible := toStandardForm(p)
	if infeasible != "" {
		return &lp.Solution{Status: lp.StatusInfeasible, Message: infeasible}, nil
	}

	if sf.a == nil {
		return lp.Finish(p, make([]float64, p.NumVariables()), 0, lp.DefaultTolerance), nil
	}

	rows, cols := sf.a.Dims()
	if rows > cols {
		return &lp.Solution{
			Status:  lp.StatusSolverError,
			Message: fmt.Sprintf("standard form has %d rows but only %d columns", rows, cols),
		}, nil
	}

	// gonum panics on malformed input rather than returning an error
	defer func() {
		if r := recover(); r != nil {
			sol = &lp.Solution{Status: lp.StatusSolverError, Message: fmt.Sprint(r)}
			err = nil
		}
	}()

	_, x, solveErr := gonumlp.Simplex(sf.c, sf.a, sf.b, s.opts.Tolerance, nil)
	switch {
	case solveErr == nil:
		return lp.Finish(p, sf.expand(x), 0, lp.DefaultTolerance), nil
	case errors.Is(solveErr, gonumlp.ErrInfeasible):
		return &lp.Solution{Status: lp.StatusInfeasible, Message: solveErr.Error()}, nil
	case errors.Is(solveErr, gonumlp.ErrUnbounded):
		return &lp.Solution{Status: lp.StatusUnbounded, Message: solveErr.Error()}, nil
	default:
		return &lp.Solution{Status: lp.StatusSolverError, Message: solveErr.Error()}, nil
	}
}

// standardForm is min cᵀx s.t. Ax = b, x >= 0 over the variables left after
// presolve plus one slack per inequality and per upper bound row
type standardForm struct {
	c []float64
	a *mat.Dense
	b []float64

	// columnOf maps an original variable to its column, or -1 when presolve
	// fixed it to zero
	columnOf []int
}

// expand maps a standard-form solution back onto the original variables
func (sf *standardForm) expand(x []float64) []float64 {
	values := make([]float64, len(sf.columnOf))
	for v, col := range sf.columnOf {
		if col >= 0 && col < len(x) {
			values[v] = x[col]
		}
	}
	return values
}

// toStandardForm converts the problem. Constraints of the form "x = 0" are
// applied by removing x. A constraint left with no variables is checked
// directly; when it cannot hold its name is returned as the reason the
// problem is infeasible.
func toStandardForm(p *lp.Problem) (*standardForm, string) {
	n := p.NumVariables()
	constraints := p.Constraints()

	fixed := make([]bool, n)
	isFixing := make([]bool, len(constraints))
	for i, con := range constraints {
		if con.Sense == lp.SenseEQ && con.RHS == 0 && len(con.Terms) == 1 && con.Terms[0].Coeff != 0 {
			fixed[con.Terms[0].Var] = true
			isFixing[i] = true
		}
	}

	columnOf := make([]int, n)
	free := 0
	for v := 0; v < n; v++ {
		if fixed[v] {
			columnOf[v] = -1
			continue
		}
		columnOf[v] = free
		free++
	}

	type row struct {
		coeffs map[int]float64
		sense  lp.Sense
		rhs    float64
	}
	var kept []row
	for i, con := range constraints {
		if isFixing[i] {
			continue
		}
		coeffs := make(map[int]float64)
		for _, term := range con.Terms {
			if col := columnOf[term.Var]; col >= 0 {
				coeffs[col] += term.Coeff
			}
		}
		if isEmpty(coeffs) {
			if !holdsAtZero(con.Sense, con.RHS) {
				return nil, fmt.Sprintf("constraint %q cannot be satisfied", con.Name)
			}
			continue
		}
		kept = append(kept, row{coeffs: coeffs, sense: con.Sense, rhs: con.RHS})
	}

	slacks := 0
	bounded := make([]bool, free)
	for _, r := range kept {
		if r.sense != lp.SenseEQ {
			slacks++
		}
		if boundsByOne(r.coeffs, r.sense, r.rhs) {
			for col, coeff := range r.coeffs {
				if coeff != 0 {
					bounded[col] = true
				}
			}
		}
	}

	var unbounded []int
	for col, ok := range bounded {
		if !ok {
			unbounded = append(unbounded, col)
		}
	}

	rows := len(kept) + len(unbounded)
	cols := free + slacks + len(unbounded)
	if rows == 0 {
		return &standardForm{columnOf: columnOf}, ""
	}
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	objective := p.Objective()
	for v, col := range columnOf {
		if col >= 0 {
			c[col] = objective[v]
		}
	}

	slack := free
	for i, r := range kept {
		for col, coeff := range r.coeffs {
			a.Set(i, col, coeff)
		}
		switch r.sense {
		case lp.SenseLE:
			a.Set(i, slack, 1)
			slack++
		case lp.SenseGE:
			a.Set(i, slack, -1)
			slack++
		}
		b[i] = r.rhs
	}

	// x + u = 1 for variables no row already holds within [0, 1]
	for k, col := range unbounded {
		i := len(kept) + k
		a.Set(i, col, 1)
		a.Set(i, free+slacks+k, 1)
		b[i] = 1
	}

	return &standardForm{c: c, a: a, b: b, columnOf: columnOf}, ""
}

// boundsByOne reports whether a row of +1 coefficients with RHS at most 1
// already forces each of its non-negative variables to be at most 1
func boundsByOne(coeffs map[int]float64, sense lp.Sense, rhs float64) bool {
	if sense == lp.SenseGE || rhs > 1 {
		return false
	}
	for _, coeff := range coeffs {
		if coeff != 0 && coeff != 1 {
			return false
		}
	}
	return true
}

func isEmpty(coeffs map[int]float64) bool {
	for _, coeff := range coeffs {
		if coeff != 0 {
			return false
		}
	}
	return true
}

func holdsAtZero(sense lp.Sense, rhs float64) bool {
	switch sense {
	case lp.SenseEQ:
		return rhs == 0
	case lp.SenseLE:
		return rhs >= 0
	case lp.SenseGE:
		return rhs <= 0
	}
	return false
}
