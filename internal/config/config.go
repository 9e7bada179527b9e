//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-salespipe.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// AnchorFormat is the layout used for calendar anchor dates.
const AnchorFormat = "2006-01-02"

// Config holds all configuration for pgedge-salespipe.
type Config struct {
	// DataDir is the directory relative paths are resolved against.
	DataDir string `mapstructure:"data_dir"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Calendar holds the day-code to calendar-date mapping settings.
	Calendar CalendarConfig `mapstructure:"calendar"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`

	// Materialize holds configuration for the materialize subcommand.
	Materialize MaterializeConfig `mapstructure:"materialize"`

	// Analyze holds configuration for the analyze subcommand.
	Analyze AnalyzeConfig `mapstructure:"analyze"`

	// Export holds configuration for the export subcommand.
	Export ExportConfig `mapstructure:"export"`
}

// CalendarConfig controls how integer day codes map to calendar dates.
type CalendarConfig struct {
	// Anchor is the date day code 0 maps to, in YYYY-MM-DD form.
	// Day code i maps to anchor + i days.
	Anchor string `mapstructure:"anchor"`
}

// GenerateConfig holds configuration for synthetic archive generation.
type GenerateConfig struct {
	// Stores is the number of stores on the first cube axis.
	Stores int `mapstructure:"stores"`

	// Products is the number of products on the second cube axis.
	Products int `mapstructure:"products"`

	// Days is the number of day steps on the third cube axis.
	Days int `mapstructure:"days"`

	// Seed makes generation reproducible. Zero uses a time-based seed.
	Seed uint64 `mapstructure:"seed"`

	// Output is the archive path to write.
	Output string `mapstructure:"output"`
}

// MaterializeConfig holds configuration for archive materialization.
type MaterializeConfig struct {
	// Input is the packed archive to read.
	Input string `mapstructure:"input"`

	// Output is the long-format table path to write.
	Output string `mapstructure:"output"`
}

// AnalyzeConfig holds configuration for the analysis stage.
type AnalyzeConfig struct {
	// Input is the long-format table to read.
	Input string `mapstructure:"input"`

	// OutputDir is the directory analysis outputs are written to.
	OutputDir string `mapstructure:"output_dir"`

	// Reduction collapses the store axis: "sum" or "mean".
	Reduction string `mapstructure:"reduction"`

	// Model is the per-product model to fit.
	Model string `mapstructure:"model"`

	// Chart selects the rendered chart: "box" or "lines".
	Chart string `mapstructure:"chart"`

	// FitWorkers is the number of concurrent per-product fits.
	FitWorkers int `mapstructure:"fit_workers"`
}

// ExportConfig holds configuration for the PostgreSQL export stage.
type ExportConfig struct {
	// Input is the long-format table to read.
	Input string `mapstructure:"input"`

	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Reduction collapses the store axis for the product-level table.
	Reduction string `mapstructure:"reduction"`

	// DropExisting drops existing tables before loading.
	DropExisting bool `mapstructure:"drop_existing"`

	// BatchSize is the number of rows per batch insert.
	BatchSize int `mapstructure:"batch_size"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "data",
		LogLevel: "info",
		Calendar: CalendarConfig{
			Anchor: "2025-06-01",
		},
		Generate: GenerateConfig{
			Stores:   4,
			Products: 10,
			Days:     92,
			Output:   "synthetic_data.npz",
		},
		Materialize: MaterializeConfig{
			Input:  "synthetic_data.npz",
			Output: "synthetic_data.csv.gz",
		},
		Analyze: AnalyzeConfig{
			Input:      "synthetic_data.csv.gz",
			OutputDir:  "analysis",
			Reduction:  "sum",
			Model:      "dow-ols",
			Chart:      "box",
			FitWorkers: 1,
		},
		Export: ExportConfig{
			Input:     "synthetic_data.csv.gz",
			Reduction: "sum",
			BatchSize: 1000,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-salespipe.yaml
// 3. ~/.config/pgedge-salespipe/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-salespipe")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-salespipe"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Resolve joins a path to the data directory unless it is absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// AnchorDate parses the configured calendar anchor.
func (c *Config) AnchorDate() (time.Time, error) {
	t, err := time.Parse(AnchorFormat, c.Calendar.Anchor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar anchor %q: %w", c.Calendar.Anchor, err)
	}
	return t, nil
}

// Validate checks configuration shared by all subcommands.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := c.AnchorDate(); err != nil {
		return err
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Generate.Stores < 1 {
		return fmt.Errorf("generate stores must be at least 1")
	}
	if c.Generate.Products < 1 {
		return fmt.Errorf("generate products must be at least 1")
	}
	if c.Generate.Days < 1 {
		return fmt.Errorf("generate days must be at least 1")
	}
	if c.Generate.Output == "" {
		return fmt.Errorf("generate output path is required")
	}
	return nil
}

// ValidateMaterialize checks configuration required for the materialize command.
func (c *Config) ValidateMaterialize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Materialize.Input == "" {
		return fmt.Errorf("materialize input path is required")
	}
	if c.Materialize.Output == "" {
		return fmt.Errorf("materialize output path is required")
	}
	return nil
}

// ValidateAnalyze checks configuration required for the analyze command.
func (c *Config) ValidateAnalyze() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Analyze.Input == "" {
		return fmt.Errorf("analyze input path is required")
	}
	if c.Analyze.OutputDir == "" {
		return fmt.Errorf("analyze output directory is required")
	}
	if c.Analyze.Reduction != "sum" && c.Analyze.Reduction != "mean" {
		return fmt.Errorf("reduction must be 'sum' or 'mean'")
	}
	if c.Analyze.Model == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Analyze.Chart != "box" && c.Analyze.Chart != "lines" {
		return fmt.Errorf("chart must be 'box' or 'lines'")
	}
	if c.Analyze.FitWorkers < 1 {
		return fmt.Errorf("fit_workers must be at least 1")
	}
	return nil
}

// ValidateExport checks configuration required for the export command.
func (c *Config) ValidateExport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Export.Input == "" {
		return fmt.Errorf("export input path is required")
	}
	if c.Export.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.Export.Reduction != "sum" && c.Export.Reduction != "mean" {
		return fmt.Errorf("reduction must be 'sum' or 'mean'")
	}
	if c.Export.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}
