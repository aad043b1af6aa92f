package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/badge-groups/pkg/core/model"
	"github.com/jakechorley/badge-groups/pkg/core/preference"
	"github.com/jakechorley/badge-groups/pkg/lp"
	"github.com/jakechorley/badge-groups/pkg/records"
)

// BadgeConfig is one badge group and how many people it can take
type BadgeConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Capacity int    `yaml:"capacity" validate:"min=0"`
}

// ScaleEntry overrides one row of the preference scale
type ScaleEntry struct {
	Token     string `yaml:"token"`
	Cost      int    `yaml:"cost"`
	Label     string `yaml:"label" validate:"required"`
	Forbidden bool   `yaml:"forbidden,omitempty"`
}

// SourceConfig says where preferences are read from. At most one of CSV and
// SheetID may be set; command line flags can supply either. IgnoreColumns
// lists headers that are not badges, such as a form's Timestamp.
type SourceConfig struct {
	CSV           string   `yaml:"csv,omitempty"`
	SheetID       string   `yaml:"sheetID,omitempty"`
	Tab           string   `yaml:"tab,omitempty" validate:"required_with=SheetID"`
	NameColumn    string   `yaml:"nameColumn,omitempty"`
	IgnoreColumns []string `yaml:"ignoreColumns,omitempty"`
}

// Layout returns how the preference table is laid out
func (s SourceConfig) Layout() records.Layout {
	return records.Layout{NameColumn: s.NameColumn, Ignore: s.IgnoreColumns}
}

// SolverConfig tunes the LP backend
type SolverConfig struct {
	Backend       string  `yaml:"backend,omitempty" validate:"omitempty,oneof=simplex gonum"`
	MaxIterations int     `yaml:"maxIterations,omitempty" validate:"min=0"`
	Tolerance     float64 `yaml:"tolerance,omitempty" validate:"min=0"`
	Bland         *bool   `yaml:"bland,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Badges          []BadgeConfig `yaml:"badges" validate:"required,min=1,dive"`
	PreferenceScale []ScaleEntry  `yaml:"preferenceScale,omitempty" validate:"dive"`
	Source          SourceConfig  `yaml:"source,omitempty"`
	Solver          SolverConfig  `yaml:"solver,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration for an environment
// For example, env="test" will look for "badge_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, then checks the badge list
// and preference scale build cleanly
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Source.CSV != "" && cfg.Source.SheetID != "" {
		return fmt.Errorf("config validation failed: source must set only one of csv and sheetID")
	}

	if _, err := cfg.RunConfig(); err != nil {
		return fmt.Errorf("invalid badges: %w", err)
	}

	if _, err := cfg.Scale(); err != nil {
		return fmt.Errorf("invalid preferenceScale: %w", err)
	}

	return nil
}

// RunConfig converts the badge list into the model's run configuration
func (c *Config) RunConfig() (*model.RunConfig, error) {
	badges := make([]model.Badge, len(c.Badges))
	for i, b := range c.Badges {
		badges[i] = model.Badge{Name: b.Name, Capacity: b.Capacity}
	}
	return model.NewRunConfig(badges)
}

// Scale returns the configured preference scale, or the default when none is set
func (c *Config) Scale() (*preference.Scale, error) {
	if len(c.PreferenceScale) == 0 {
		return preference.DefaultScale(), nil
	}

	entries := make([]preference.Entry, len(c.PreferenceScale))
	for i, e := range c.PreferenceScale {
		entries[i] = preference.Entry{
			Token:     e.Token,
			Cost:      e.Cost,
			Label:     e.Label,
			Forbidden: e.Forbidden,
		}
	}
	return preference.NewScale(entries)
}

// Options returns the solver options. Bland's rule is on unless disabled.
func (s SolverConfig) Options() lp.Options {
	bland := true
	if s.Bland != nil {
		bland = *s.Bland
	}
	return lp.Options{
		MaxIterations: s.MaxIterations,
		Tolerance:     s.Tolerance,
		Bland:         bland,
	}
}

// findConfigFile searches for badge_config.<env>.yaml
func findConfigFile(env string) (string, error) {
	return findFile(envFileName("badge_config", env, "yaml"))
}

func envFileName(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// findFile looks in the current directory, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
