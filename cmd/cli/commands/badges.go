package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BadgesCmd creates the badges command
func BadgesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List the configured badge groups and their capacities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg, err := app.Cfg.RunConfig()
			if err != nil {
				return err
			}
			scale, err := app.Cfg.Scale()
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d badges (%d places):\n\n", len(runCfg.BadgeNames()), runCfg.TotalCapacity())
			for _, b := range runCfg.Badges() {
				fmt.Printf("- %s: %d\n", b.Name, b.Capacity)
			}

			fmt.Printf("\nPreference scale:\n\n")
			for _, e := range scale.Entries() {
				token := e.Token
				if token == "" {
					token = "(blank)"
				}
				fmt.Printf("- %-8s cost %3d  %s\n", token, e.Cost, e.Label)
			}

			return nil
		},
	}
}
