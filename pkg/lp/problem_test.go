package lp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoByTwo(t *testing.T) (*Problem, [2][2]Var) {
	t.Helper()

	p := NewProblem("test")
	var x [2][2]Var
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			x[i][j] = p.AddBinary(string(rune('a'+i)) + "_" + string(rune('A'+j)))
		}
	}
	require.NoError(t, p.AddConstraint("row a", []Term{{x[0][0], 1}, {x[0][1], 1}}, SenseEQ, 1))
	require.NoError(t, p.AddConstraint("row b", []Term{{x[1][0], 1}, {x[1][1], 1}}, SenseEQ, 1))
	require.NoError(t, p.AddConstraint("col A", []Term{{x[0][0], 1}, {x[1][0], 1}}, SenseLE, 1))
	return p, x
}

func TestFormatConstraint(t *testing.T) {
	p := NewProblem("fmt")
	a := p.AddBinary("a")
	b := p.AddBinary("b")
	c := p.AddBinary("c")

	require.NoError(t, p.AddConstraint("mixed", []Term{{a, 1}, {b, -2}, {c, 3}}, SenseGE, 2))
	require.NoError(t, p.AddConstraint("neg first", []Term{{a, -1}, {b, 1}}, SenseLE, 0))
	require.NoError(t, p.AddConstraint("empty", nil, SenseEQ, 0))

	cons := p.Constraints()
	assert.Equal(t, "mixed: a - 2*b + 3*c >= 2", p.FormatConstraint(cons[0]))
	assert.Equal(t, "neg first: -a + b <= 0", p.FormatConstraint(cons[1]))
	assert.Equal(t, "empty: 0 = 0", p.FormatConstraint(cons[2]))
	assert.Equal(t, "mixed: a - 2*b + 3*c >= 2\nneg first: -a + b <= 0\nempty: 0 = 0", p.String())
}

func TestAddConstraint_RejectsForeignVariable(t *testing.T) {
	p := NewProblem("p")
	p.AddBinary("a")

	err := p.AddConstraint("bad", []Term{{Var(3), 1}}, SenseEQ, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	assert.Error(t, p.SetObjective(Var(-1), 1))
	assert.Equal(t, "", p.VariableName(Var(9)))
}

func TestAddConstraint_CopiesTerms(t *testing.T) {
	p := NewProblem("p")
	a := p.AddBinary("a")
	terms := []Term{{a, 1}}
	require.NoError(t, p.AddConstraint("c", terms, SenseLE, 1))

	terms[0].Coeff = 5
	assert.Equal(t, 1.0, p.Constraints()[0].Terms[0].Coeff)
}

func TestCheckAndEvaluate(t *testing.T) {
	p, x := twoByTwo(t)
	require.NoError(t, p.SetObjective(x[0][0], 1))
	require.NoError(t, p.SetObjective(x[0][1], 5))
	require.NoError(t, p.SetObjective(x[1][0], 5))
	require.NoError(t, p.SetObjective(x[1][1], 1))

	good := []float64{1, 0, 0, 1}
	assert.NoError(t, p.Check(good, DefaultTolerance))
	assert.Equal(t, 2.0, p.Evaluate(good))

	overCapacity := []float64{1, 0, 1, 0}
	err := p.Check(overCapacity, DefaultTolerance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "col A")

	assert.Error(t, p.Check([]float64{1}, DefaultTolerance))
}

func TestPrepare(t *testing.T) {
	ctx := context.Background()

	_, err := Prepare(ctx, nil)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Prepare(cancelled, NewProblem("p"))
	assert.ErrorIs(t, err, context.Canceled)

	empty := NewProblem("empty")
	sol, err := Prepare(ctx, empty)
	require.NoError(t, err)
	require.NotNil(t, sol)
	assert.Equal(t, StatusOptimal, sol.Status)

	impossible := NewProblem("impossible")
	require.NoError(t, impossible.AddConstraint("need one", nil, SenseEQ, 1))
	sol, err = Prepare(ctx, impossible)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)

	withVars, _ := twoByTwo(t)
	sol, err = Prepare(ctx, withVars)
	require.NoError(t, err)
	assert.Nil(t, sol)
}

func TestFinish(t *testing.T) {
	p, _ := twoByTwo(t)

	sol := Finish(p, []float64{0.9999999999, 1e-12, 0, 1}, 7, 0)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Equal(t, []float64{1, 0, 0, 1}, sol.Values)
	assert.Equal(t, 7, sol.Iterations)

	sol = Finish(p, []float64{0.5, 0.5, 0, 1}, 0, 0)
	assert.Equal(t, StatusSolverError, sol.Status)
	assert.Contains(t, sol.Message, "fractional")

	sol = Finish(p, []float64{1, 0}, 0, 0)
	assert.Equal(t, StatusSolverError, sol.Status)

	sol = Finish(p, []float64{1, 0, 1, 0}, 0, 0)
	assert.Equal(t, StatusSolverError, sol.Status)
	assert.Contains(t, sol.Message, "col A")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OPTIMAL", StatusOptimal.String())
	assert.Equal(t, "INFEASIBLE", StatusInfeasible.String())
	assert.Equal(t, "UNBOUNDED", StatusUnbounded.String())
	assert.Equal(t, "SOLVER_ERROR", StatusSolverError.String())
	assert.Equal(t, "UNKNOWN", Status(0).String())
}

func TestSolutionValue(t *testing.T) {
	var nilSolution *Solution
	assert.Equal(t, 0.0, nilSolution.Value(0))

	sol := &Solution{Values: []float64{0, 1}}
	assert.Equal(t, 1.0, sol.Value(1))
	assert.Equal(t, 0.0, sol.Value(5))
}
