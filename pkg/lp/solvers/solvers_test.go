package solvers

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/badge-groups/pkg/lp"
)

func allSolvers(t *testing.T) []lp.Solver {
	t.Helper()

	var out []lp.Solver
	for _, name := range Names() {
		s, err := New(name, lp.Options{Bland: true})
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

// assignmentProblem builds people x badges with exactly-one rows, capacity
// rows and "x = 0" rows for the forbidden pairs
func assignmentProblem(t *testing.T, costs [][]float64, capacity []float64, forbidden [][2]int) (*lp.Problem, [][]lp.Var) {
	t.Helper()

	p := lp.NewProblem("assignment")
	vars := make([][]lp.Var, len(costs))
	for i, row := range costs {
		vars[i] = make([]lp.Var, len(row))
		for j, cost := range row {
			vars[i][j] = p.AddBinary(fmt.Sprintf("p%d_b%d", i, j))
			require.NoError(t, p.SetObjective(vars[i][j], cost))
		}
	}

	for i := range costs {
		terms := make([]lp.Term, len(vars[i]))
		for j, v := range vars[i] {
			terms[j] = lp.Term{Var: v, Coeff: 1}
		}
		require.NoError(t, p.AddConstraint(fmt.Sprintf("one p%d", i), terms, lp.SenseEQ, 1))
	}

	for _, pair := range forbidden {
		require.NoError(t, p.AddConstraint(fmt.Sprintf("no p%d b%d", pair[0], pair[1]),
			[]lp.Term{{Var: vars[pair[0]][pair[1]], Coeff: 1}}, lp.SenseEQ, 0))
	}

	for j, limit := range capacity {
		terms := make([]lp.Term, 0, len(costs))
		for i := range costs {
			terms = append(terms, lp.Term{Var: vars[i][j], Coeff: 1})
		}
		require.NoError(t, p.AddConstraint(fmt.Sprintf("cap b%d", j), terms, lp.SenseLE, limit))
	}

	return p, vars
}

// bruteForce enumerates every 0/1 vector and returns the best objective
func bruteForce(p *lp.Problem) (float64, bool) {
	n := p.NumVariables()
	best := math.Inf(1)
	found := false
	values := make([]float64, n)

	for mask := 0; mask < 1<<n; mask++ {
		for i := 0; i < n; i++ {
			values[i] = float64((mask >> i) & 1)
		}
		if p.Check(values, 1e-9) != nil {
			continue
		}
		found = true
		best = math.Min(best, p.Evaluate(values))
	}
	return best, found
}

func TestNew(t *testing.T) {
	s, err := New("", lp.Options{})
	require.NoError(t, err)
	assert.Equal(t, Default, s.Name())

	s, err = New("GONUM", lp.Options{})
	require.NoError(t, err)
	assert.Equal(t, "gonum", s.Name())

	_, err = New("cplex", lp.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gonum, simplex")
}

func TestSolvers_UniqueOptimum(t *testing.T) {
	for _, s := range allSolvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			p, vars := assignmentProblem(t, [][]float64{{1, 5}, {5, 1}}, []float64{1, 1}, nil)

			sol, err := s.Solve(context.Background(), p)
			require.NoError(t, err)
			require.Equal(t, lp.StatusOptimal, sol.Status, sol.Message)

			assert.Equal(t, 2.0, sol.Objective)
			assert.Equal(t, 1.0, sol.Value(vars[0][0]))
			assert.Equal(t, 1.0, sol.Value(vars[1][1]))
			assert.Equal(t, 0.0, sol.Value(vars[0][1]))
			assert.Equal(t, 0.0, sol.Value(vars[1][0]))
		})
	}
}

func TestSolvers_CapacityPressure(t *testing.T) {
	costs := [][]float64{
		{1, 3, 5},
		{1, 5, 3},
		{1, 3, 0},
		{3, 1, 10},
	}
	capacity := []float64{1, 2, 2}

	for _, s := range allSolvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			p, _ := assignmentProblem(t, costs, capacity, nil)
			want, ok := bruteForce(p)
			require.True(t, ok)

			sol, err := s.Solve(context.Background(), p)
			require.NoError(t, err)
			require.Equal(t, lp.StatusOptimal, sol.Status, sol.Message)
			assert.InDelta(t, want, sol.Objective, 1e-9)
			assert.NoError(t, p.Check(sol.Values, 1e-9))
		})
	}
}

func TestSolvers_ForbiddenPairsHonoured(t *testing.T) {
	// Person 0 would love badge 0 but is not allowed it
	costs := [][]float64{
		{0, 15, 10},
		{1, 3, 5},
		{5, 1, 3},
	}
	forbidden := [][2]int{{0, 0}, {2, 2}}

	for _, s := range allSolvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			p, vars := assignmentProblem(t, costs, []float64{1, 1, 1}, forbidden)
			want, ok := bruteForce(p)
			require.True(t, ok)

			sol, err := s.Solve(context.Background(), p)
			require.NoError(t, err)
			require.Equal(t, lp.StatusOptimal, sol.Status, sol.Message)
			assert.InDelta(t, want, sol.Objective, 1e-9)
			assert.Equal(t, 0.0, sol.Value(vars[0][0]))
			assert.Equal(t, 0.0, sol.Value(vars[2][2]))
		})
	}
}

func TestSolvers_Infeasible(t *testing.T) {
	tests := []struct {
		name      string
		costs     [][]float64
		capacity  []float64
		forbidden [][2]int
	}{
		{
			name:     "zero capacity",
			costs:    [][]float64{{0}},
			capacity: []float64{0},
		},
		{
			name:      "only badge forbidden",
			costs:     [][]float64{{0}},
			capacity:  []float64{1},
			forbidden: [][2]int{{0, 0}},
		},
		{
			name:     "too many people",
			costs:    [][]float64{{1, 3}, {3, 1}, {1, 1}},
			capacity: []float64{1, 1},
		},
		{
			name:      "forbidden pushes over capacity",
			costs:     [][]float64{{1, 3}, {3, 1}},
			capacity:  []float64{1, 1},
			forbidden: [][2]int{{0, 1}, {1, 1}},
		},
	}

	for _, s := range allSolvers(t) {
		for _, tt := range tests {
			t.Run(s.Name()+"/"+tt.name, func(t *testing.T) {
				p, _ := assignmentProblem(t, tt.costs, tt.capacity, tt.forbidden)

				sol, err := s.Solve(context.Background(), p)
				require.NoError(t, err)
				assert.Equal(t, lp.StatusInfeasible, sol.Status)
				assert.Empty(t, sol.Values)
			})
		}
	}
}

func TestSolvers_GreaterOrEqual(t *testing.T) {
	for _, s := range allSolvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			p := lp.NewProblem("cover")
			a := p.AddBinary("a")
			b := p.AddBinary("b")
			require.NoError(t, p.SetObjective(a, 2))
			require.NoError(t, p.SetObjective(b, 3))
			require.NoError(t, p.AddConstraint("cover", []lp.Term{{Var: a, Coeff: 1}, {Var: b, Coeff: 1}}, lp.SenseGE, 1))

			sol, err := s.Solve(context.Background(), p)
			require.NoError(t, err)
			require.Equal(t, lp.StatusOptimal, sol.Status, sol.Message)
			assert.Equal(t, 2.0, sol.Objective)
			assert.Equal(t, 1.0, sol.Value(a))
		})
	}
}

func TestSolvers_EmptyAndCancelled(t *testing.T) {
	for _, s := range allSolvers(t) {
		t.Run(s.Name(), func(t *testing.T) {
			sol, err := s.Solve(context.Background(), lp.NewProblem("empty"))
			require.NoError(t, err)
			assert.Equal(t, lp.StatusOptimal, sol.Status)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			p, _ := assignmentProblem(t, [][]float64{{1}}, []float64{1}, nil)
			_, err = s.Solve(ctx, p)
			assert.ErrorIs(t, err, context.Canceled)

			_, err = s.Solve(context.Background(), nil)
			assert.Error(t, err)
		})
	}
}
