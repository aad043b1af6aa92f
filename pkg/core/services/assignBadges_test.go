package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/badge-groups/internal/config"
	"github.com/jakechorley/badge-groups/pkg/core/assignment"
	"github.com/jakechorley/badge-groups/pkg/core/model"
	"github.com/jakechorley/badge-groups/pkg/core/preference"
	"github.com/jakechorley/badge-groups/pkg/lp"
	"github.com/jakechorley/badge-groups/pkg/lp/solvers"
)

// mockSource implements PreferenceSource for testing
type mockSource struct {
	records []model.PreferenceRecord
	loadErr error
	loads   int
}

func (m *mockSource) Load(ctx context.Context) ([]model.PreferenceRecord, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.records, nil
}

func (m *mockSource) Describe() string {
	return "mock"
}

// mockSolver implements lp.Solver and records what it was asked to solve
type mockSolver struct {
	solution *lp.Solution
	err      error
	problem  *lp.Problem
}

func (m *mockSolver) Name() string {
	return "mock"
}

func (m *mockSolver) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	m.problem = p
	return m.solution, m.err
}

func twoBadgeConfig() *config.Config {
	return &config.Config{
		Badges: []config.BadgeConfig{
			{Name: "A", Capacity: 1},
			{Name: "B", Capacity: 1},
		},
	}
}

func twoPeopleSource() *mockSource {
	return &mockSource{records: []model.PreferenceRecord{
		{Name: "person1", Tokens: map[string]string{"A": "1", "B": "3"}},
		{Name: "person2", Tokens: map[string]string{"A": "3", "B": "1"}},
	}}
}

func TestAssignBadges_Optimal(t *testing.T) {
	for _, name := range solvers.Names() {
		t.Run(name, func(t *testing.T) {
			solver, err := solvers.New(name, twoBadgeConfig().Solver.Options())
			require.NoError(t, err)

			result, err := AssignBadges(context.Background(), twoPeopleSource(), solver, twoBadgeConfig(), zap.NewNop())
			require.NoError(t, err)

			assert.NotEmpty(t, result.RunID)
			assert.Equal(t, "mock", result.Source)
			assert.Equal(t, name, result.Solver)
			assert.Equal(t, lp.StatusOptimal, result.Outcome.Status)
			assert.Equal(t, 2, result.Outcome.TotalCost)
			assert.Equal(t, []assignment.Assignment{
				{Person: "person1", Badge: "A", Label: "1st", Cost: 1},
				{Person: "person2", Badge: "B", Label: "1st", Cost: 1},
			}, result.Outcome.Assignments)

			// 2 exactly-one rows and 2 capacity rows
			assert.Equal(t, []string{
				"One badge for person1: person1_A + person1_B = 1",
				"One badge for person2: person2_A + person2_B = 1",
				"Max 1 people in A: person1_A + person2_A <= 1",
				"Max 1 people in B: person1_B + person2_B <= 1",
			}, result.Constraints)
		})
	}
}

func TestAssignBadges_RunIDsDiffer(t *testing.T) {
	solver, err := solvers.New("", lp.Options{Bland: true})
	require.NoError(t, err)

	first, err := AssignBadges(context.Background(), twoPeopleSource(), solver, twoBadgeConfig(), zap.NewNop())
	require.NoError(t, err)
	second, err := AssignBadges(context.Background(), twoPeopleSource(), solver, twoBadgeConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAssignBadges_Infeasible(t *testing.T) {
	cfg := &config.Config{Badges: []config.BadgeConfig{{Name: "A", Capacity: 1}}}
	source := &mockSource{records: []model.PreferenceRecord{
		{Name: "person1", Tokens: map[string]string{"A": "-1"}},
	}}
	solver, err := solvers.New("", lp.Options{Bland: true})
	require.NoError(t, err)

	result, err := AssignBadges(context.Background(), source, solver, cfg, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotOptimal)

	var statusErr *RunStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, lp.StatusInfeasible, statusErr.Status)

	// The result still reports the status
	require.NotNil(t, result)
	assert.Equal(t, lp.StatusInfeasible, result.Outcome.Status)
	assert.Empty(t, result.Outcome.Assignments)
	assert.Len(t, result.Constraints, 3)
}

func TestAssignBadges_InvalidTokenNeverReachesSolver(t *testing.T) {
	source := &mockSource{records: []model.PreferenceRecord{
		{Name: "person1", Tokens: map[string]string{"A": "7", "B": ""}},
	}}
	solver := &mockSolver{}

	_, err := AssignBadges(context.Background(), source, solver, twoBadgeConfig(), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, preference.ErrInvalidPreference)
	assert.Nil(t, solver.problem)
}

func TestAssignBadges_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   *mockSource
		solver   *mockSolver
		is       error
		contains string
	}{
		{
			name:     "source fails",
			source:   &mockSource{loadErr: errors.New("sheet offline")},
			solver:   &mockSolver{},
			contains: "failed to load preferences: sheet offline",
		},
		{
			name: "unknown badge column",
			source: &mockSource{records: []model.PreferenceRecord{
				{Name: "p", Tokens: map[string]string{"A": "1", "B": "2", "C": "3"}},
			}},
			solver: &mockSolver{},
			is:     model.ErrUnknownBadge,
		},
		{
			name: "missing badge column",
			source: &mockSource{records: []model.PreferenceRecord{
				{Name: "p", Tokens: map[string]string{"A": "1"}},
			}},
			solver: &mockSolver{},
			is:     model.ErrMissingPreference,
		},
		{
			name:     "solver misuse",
			source:   twoPeopleSource(),
			solver:   &mockSolver{err: context.DeadlineExceeded},
			is:       context.DeadlineExceeded,
			contains: "failed to solve",
		},
		{
			name:   "solver selects two badges",
			source: twoPeopleSource(),
			solver: &mockSolver{solution: &lp.Solution{
				Status: lp.StatusOptimal,
				Values: []float64{1, 1, 0, 1},
			}},
			is:       assignment.ErrAssignmentIntegrity,
			contains: "failed to extract assignments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssignBadges(context.Background(), tt.source, tt.solver, twoBadgeConfig(), zap.NewNop())
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestDescribeModel(t *testing.T) {
	source := &mockSource{records: []model.PreferenceRecord{
		{Name: "Ann Lee", Tokens: map[string]string{"A": "-1", "B": ""}},
	}}

	result, err := DescribeModel(context.Background(), source, twoBadgeConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, source.loads)
	assert.Equal(t, 1, result.People)
	assert.Equal(t, 2, result.Variables)
	assert.Equal(t, []string{
		"One badge for Ann Lee: Ann_Lee_A + Ann_Lee_B = 1",
		"No A badge for Ann Lee: Ann_Lee_A = 0",
		"Max 1 people in A: Ann_Lee_A <= 1",
		"Max 1 people in B: Ann_Lee_B <= 1",
	}, result.Constraints)
}

func TestRunStatusError(t *testing.T) {
	err := &RunStatusError{Status: lp.StatusInfeasible}
	assert.Equal(t, "no optimal assignment: solver status INFEASIBLE", err.Error())

	err = &RunStatusError{Status: lp.StatusSolverError, Message: "iteration limit"}
	assert.Equal(t, "no optimal assignment: solver status SOLVER_ERROR: iteration limit", err.Error())
	assert.ErrorIs(t, err, ErrNotOptimal)
}
