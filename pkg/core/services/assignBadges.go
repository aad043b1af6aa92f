package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/badge-groups/internal/config"
	"github.com/jakechorley/badge-groups/pkg/core/assignment"
	"github.com/jakechorley/badge-groups/pkg/core/model"
	"github.com/jakechorley/badge-groups/pkg/core/preference"
	"github.com/jakechorley/badge-groups/pkg/lp"
)

// ErrNotOptimal matches any *RunStatusError via errors.Is
var ErrNotOptimal = errors.New("no optimal assignment")

// RunStatusError is returned when the solver finished without an optimal
// assignment. The run's result is still returned alongside it.
type RunStatusError struct {
	Status  lp.Status
	Message string
}

func (e *RunStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("no optimal assignment: solver status %s", e.Status)
	}
	return fmt.Sprintf("no optimal assignment: solver status %s: %s", e.Status, e.Message)
}

func (e *RunStatusError) Is(target error) bool {
	return target == ErrNotOptimal
}

// PreferenceSource supplies the raw preference rows for a run
type PreferenceSource interface {
	Load(ctx context.Context) ([]model.PreferenceRecord, error)
	Describe() string
}

// AssignBadgesResult contains everything needed to report a run
type AssignBadgesResult struct {
	RunID       string
	Source      string
	Solver      string
	Constraints []string
	Outcome     *assignment.Result
	Duration    time.Duration
}

// AssignBadges loads preferences, builds and solves the assignment program
// and extracts the result. A non-optimal solver status returns the result
// together with a *RunStatusError.
func AssignBadges(
	ctx context.Context,
	source PreferenceSource,
	solver lp.Solver,
	cfg *config.Config,
	logger *zap.Logger,
) (*AssignBadgesResult, error) {
	started := time.Now()
	result := &AssignBadgesResult{
		RunID:  uuid.New().String(),
		Source: source.Describe(),
		Solver: solver.Name(),
	}
	logger = logger.With(zap.String("run_id", result.RunID))

	logger.Debug("Starting assignBadges",
		zap.String("source", result.Source),
		zap.String("solver", result.Solver))

	f, scale, err := formulate(ctx, source, cfg, logger)
	if err != nil {
		return nil, err
	}
	result.Constraints = describeConstraints(f.Problem())

	logger.Debug("Solving")
	sol, err := solver.Solve(ctx, f.Problem())
	if err != nil {
		return nil, fmt.Errorf("failed to solve assignment problem: %w", err)
	}
	logger.Debug("Solver finished",
		zap.String("status", sol.Status.String()),
		zap.Float64("objective", sol.Objective),
		zap.Int("iterations", sol.Iterations))

	outcome, err := assignment.Extract(f, sol, scale)
	if err != nil {
		return nil, fmt.Errorf("failed to extract assignments: %w", err)
	}
	result.Outcome = outcome
	result.Duration = time.Since(started)

	if outcome.Status != lp.StatusOptimal {
		logger.Warn("No optimal assignment",
			zap.String("status", outcome.Status.String()),
			zap.String("message", outcome.Message))
		return result, &RunStatusError{Status: outcome.Status, Message: outcome.Message}
	}

	logger.Info("Badges assigned",
		zap.Int("people", len(outcome.Assignments)),
		zap.Int("total_cost", outcome.TotalCost),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// DescribeModelResult is the formulated program without solving it
type DescribeModelResult struct {
	Source      string
	People      int
	Variables   int
	Constraints []string
}

// DescribeModel builds the program for the current preferences and returns
// its constraints
func DescribeModel(
	ctx context.Context,
	source PreferenceSource,
	cfg *config.Config,
	logger *zap.Logger,
) (*DescribeModelResult, error) {
	f, _, err := formulate(ctx, source, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &DescribeModelResult{
		Source:      source.Describe(),
		People:      len(f.People()),
		Variables:   f.Problem().NumVariables(),
		Constraints: describeConstraints(f.Problem()),
	}, nil
}

// formulate runs every step up to the solver. Invalid preferences stop the
// run here, before any program exists.
func formulate(
	ctx context.Context,
	source PreferenceSource,
	cfg *config.Config,
	logger *zap.Logger,
) (*assignment.Formulation, *preference.Scale, error) {
	runCfg, err := cfg.RunConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid badge configuration: %w", err)
	}
	scale, err := cfg.Scale()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid preference scale: %w", err)
	}

	logger.Debug("Loading preferences")
	rows, err := source.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	logger.Debug("Loaded preferences", zap.Int("count", len(rows)))

	people, err := model.NewPopulation(runCfg, rows, scale)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	if len(people) > runCfg.TotalCapacity() {
		logger.Warn("More people than badge places",
			zap.Int("people", len(people)),
			zap.Int("capacity", runCfg.TotalCapacity()))
	}

	f, err := assignment.Formulate(runCfg, people)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to formulate assignment problem: %w", err)
	}
	logger.Debug("Formulated assignment problem",
		zap.Int("people", len(people)),
		zap.Int("badges", len(runCfg.BadgeNames())),
		zap.Int("variables", f.Problem().NumVariables()),
		zap.Int("constraints", len(f.Problem().Constraints())))

	return f, scale, nil
}

func describeConstraints(p *lp.Problem) []string {
	constraints := p.Constraints()
	out := make([]string, len(constraints))
	for i, c := range constraints {
		out[i] = p.FormatConstraint(c)
	}
	return out
}
