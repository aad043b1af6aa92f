// Package simplexsolver solves lp problems with the two-phase simplex from
// github.com/willauld/lpsimplex.
package simplexsolver

import (
	"context"
	"sync"

	"github.com/willauld/lpsimplex"

	"github.com/jakechorley/badge-groups/pkg/lp"
)

const (
	defaultMaxIterations = 50000
	defaultTolerance     = 1e-9
)

// lpsimplex keeps pivot bookkeeping in package variables
var engineMu sync.Mutex

// Solver is an lp.Solver backed by lpsimplex
type Solver struct {
	opts lp.Options
}

// New creates a Solver. Zero options fall back to the package defaults.
func New(opts lp.Options) *Solver {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultMaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTolerance
	}
	return &Solver{opts: opts}
}

// Name implements lp.Solver
func (s *Solver) Name() string {
	return "simplex"
}

// Solve implements lp.Solver. The LP relaxation is solved with every
// variable bounded to [0, 1]; the returned vertex must already be integral.
func (s *Solver) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	if decided, err := lp.Prepare(ctx, p); decided != nil || err != nil {
		return decided, err
	}

	c, aub, bub, aeq, beq := buildMatrices(p)
	bounds := []lpsimplex.Bound{{Lb: 0, Ub: 1}}

	engineMu.Lock()
	result := lpsimplex.LPSimplex(c, aub, bub, aeq, beq, bounds, nil, false, s.opts.MaxIterations, s.opts.Tolerance, s.opts.Bland)
	engineMu.Unlock()

	switch result.Status {
	case 0:
		return lp.Finish(p, result.X, result.Nitr, lp.DefaultTolerance), nil
	case 2:
		return &lp.Solution{Status: lp.StatusInfeasible, Iterations: result.Nitr, Message: result.Message}, nil
	case 3:
		return &lp.Solution{Status: lp.StatusUnbounded, Iterations: result.Nitr, Message: result.Message}, nil
	default:
		return &lp.Solution{Status: lp.StatusSolverError, Iterations: result.Nitr, Message: result.Message}, nil
	}
}

// buildMatrices lays the problem out the way LPSimplex expects: dense
// upper-bound rows and equality rows. ">=" rows are negated into "<=".
func buildMatrices(p *lp.Problem) (c []float64, aub [][]float64, bub []float64, aeq [][]float64, beq []float64) {
	n := p.NumVariables()
	c = p.Objective()

	for _, con := range p.Constraints() {
		row := make([]float64, n)
		for _, term := range con.Terms {
			row[term.Var] += term.Coeff
		}

		switch con.Sense {
		case lp.SenseEQ:
			aeq = append(aeq, row)
			beq = append(beq, con.RHS)
		case lp.SenseLE:
			aub = append(aub, row)
			bub = append(bub, con.RHS)
		case lp.SenseGE:
			for j := range row {
				row[j] = -row[j]
			}
			aub = append(aub, row)
			bub = append(bub, -con.RHS)
		}
	}

	return c, aub, bub, aeq, beq
}
