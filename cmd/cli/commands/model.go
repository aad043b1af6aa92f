package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/badge-groups/pkg/core/services"
)

// ModelCmd creates the model command
func ModelCmd(app *AppContext) *cobra.Command {
	var source sourceFlags

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Print the assignment program without solving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.Source(&source)
			if err != nil {
				return err
			}

			result, err := services.DescribeModel(app.Ctx, src, app.Cfg, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to build model: %w", err)
			}

			fmt.Printf("\nSource:      %s\n", result.Source)
			fmt.Printf("People:      %d\n", result.People)
			fmt.Printf("Variables:   %d\n", result.Variables)
			fmt.Printf("Constraints: %d\n\n", len(result.Constraints))
			for _, c := range result.Constraints {
				fmt.Println(c)
			}

			return nil
		},
	}

	cmd.Flags().AddFlagSet(source.flagSet())
	return cmd
}
