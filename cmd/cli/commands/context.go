package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/badge-groups/internal/config"
	"github.com/jakechorley/badge-groups/pkg/clients/sheetsclient"
	"github.com/jakechorley/badge-groups/pkg/core/services"
	"github.com/jakechorley/badge-groups/pkg/records"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context

	// sheetsClient is created on first use; CSV runs never need OAuth
	sheetsClient *sheetsclient.Client
}

// sourceFlags holds the flags that pick where preferences come from
type sourceFlags struct {
	csv        string
	sheetID    string
	tab        string
	nameColumn string
}

// flagSet registers the source flags so several commands can share them
func (s *sourceFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("source", pflag.ContinueOnError)
	fs.StringVar(&s.csv, "csv", "", "Read preferences from this CSV file")
	fs.StringVar(&s.sheetID, "sheet", "", "Read preferences from this spreadsheet ID")
	fs.StringVar(&s.tab, "tab", "", "Spreadsheet tab (or range) holding the preferences")
	fs.StringVar(&s.nameColumn, "name-column", "", "Header of the person column (default \"Name\")")
	return fs
}

// resolve merges the flags over the configured source. A flag naming one kind
// of source replaces the configured one entirely.
func (s *sourceFlags) resolve(cfg config.SourceConfig) (config.SourceConfig, error) {
	if s.csv != "" && s.sheetID != "" {
		return cfg, fmt.Errorf("use only one of --csv and --sheet")
	}

	switch {
	case s.csv != "":
		cfg.CSV, cfg.SheetID, cfg.Tab = s.csv, "", ""
	case s.sheetID != "":
		cfg.CSV, cfg.SheetID = "", s.sheetID
	}
	if s.tab != "" {
		cfg.Tab = s.tab
	}
	if s.nameColumn != "" {
		cfg.NameColumn = s.nameColumn
	}

	switch {
	case cfg.CSV != "":
		return cfg, nil
	case cfg.SheetID != "":
		if cfg.Tab == "" {
			return cfg, fmt.Errorf("a sheet source needs a tab (--tab or source.tab)")
		}
		return cfg, nil
	default:
		return cfg, fmt.Errorf("no preference source: pass --csv or --sheet, or set source in the config file")
	}
}

// Source builds the preference source for a command
func (app *AppContext) Source(flags *sourceFlags) (services.PreferenceSource, error) {
	src, err := flags.resolve(app.Cfg.Source)
	if err != nil {
		return nil, err
	}

	if src.CSV != "" {
		app.Logger.Debug("Using CSV source", zap.String("path", src.CSV))
		return records.CSVFile{Path: src.CSV, Layout: src.Layout()}, nil
	}

	client, err := app.SheetsClient()
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("Using sheet source", zap.String("sheet_id", src.SheetID), zap.String("tab", src.Tab))
	return sheetsclient.SheetSource{Reader: client, SheetID: src.SheetID, Tab: src.Tab, Layout: src.Layout()}, nil
}

// SheetsClient returns the sheets client, authenticating on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully")

	app.sheetsClient = client
	return client, nil
}
