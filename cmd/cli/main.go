package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/badge-groups/cmd/cli/commands"
	"github.com/jakechorley/badge-groups/internal/config"
	"github.com/jakechorley/badge-groups/pkg/utils/logging"
)

var (
	env    string
	logDir string
	app    = &commands.AppContext{Ctx: context.Background()}
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "badges",
		Short:        "Badge groups CLI - assign people to badge groups",
		Long:         `A CLI tool that assigns every person to one badge group, honouring ranked preferences, "not allowed" answers and group capacities.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", logging.DefaultDir, "Directory for run logs")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.AssignCmd(app))
	rootCmd.AddCommand(commands.ModelCmd(app))
	rootCmd.AddCommand(commands.BadgesCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger and config
func initApp() error {
	var err error
	app.Env = env

	app.Logger, _, err = logging.InitLogger(env, logDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.Int("badges", len(app.Cfg.Badges)))

	return nil
}
