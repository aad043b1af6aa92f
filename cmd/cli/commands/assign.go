package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/badge-groups/pkg/core/services"
	"github.com/jakechorley/badge-groups/pkg/lp/solvers"
)

const separator = "\n================\n"

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	var (
		source          sourceFlags
		solverName      string
		showConstraints bool
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign everyone to a badge group",
		Long:  "Solve for the lowest-cost assignment of people to badge groups, respecting capacities and \"not allowed\" answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.Source(&source)
			if err != nil {
				return err
			}

			backend := app.Cfg.Solver.Backend
			if solverName != "" {
				backend = solverName
			}
			solver, err := solvers.New(backend, app.Cfg.Solver.Options())
			if err != nil {
				return err
			}

			app.Logger.Debug("assign command",
				zap.String("source", src.Describe()),
				zap.String("solver", solver.Name()))

			result, err := services.AssignBadges(app.Ctx, src, solver, app.Cfg, app.Logger)
			var statusErr *services.RunStatusError
			if err != nil && !errors.As(err, &statusErr) {
				return fmt.Errorf("assignment failed: %w", err)
			}

			printAssignReport(os.Stdout, result, showConstraints)
			return err
		},
	}

	cmd.Flags().AddFlagSet(source.flagSet())
	cmd.Flags().StringVar(&solverName, "solver", "", fmt.Sprintf("LP backend, one of %v", solvers.Names()))
	cmd.Flags().BoolVar(&showConstraints, "show-constraints", true, "Print every constraint before the results (--show-constraints=false to hide)")

	return cmd
}

// printAssignReport prints constraints, badge counts, rank counts, each
// person's badge and finally the solver status
func printAssignReport(w io.Writer, result *services.AssignBadgesResult, showConstraints bool) {
	if showConstraints {
		for _, c := range result.Constraints {
			fmt.Fprintln(w, c)
		}
		fmt.Fprintln(w, separator)
	}

	outcome := result.Outcome
	if len(outcome.Assignments) > 0 {
		for _, bc := range outcome.BadgeCounts {
			fmt.Fprintf(w, "%s: %d/%d\n", bc.Badge, bc.Count, bc.Capacity)
		}
		fmt.Fprintln(w, separator)

		for _, lc := range outcome.LabelCounts {
			fmt.Fprintf(w, "%s: %d\n", lc.Label, lc.Count)
		}
		fmt.Fprintln(w, separator)

		for _, a := range outcome.Assignments {
			fmt.Fprintf(w, "%s: %s (%s)\n", a.Person, a.Badge, a.Label)
		}
		fmt.Fprintln(w, separator)

		fmt.Fprintf(w, "Total cost: %d\n", outcome.TotalCost)
	}

	fmt.Fprintln(w, outcome.Status)
}
