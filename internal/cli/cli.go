//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-salespipe.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salespipe/internal/config"
	"github.com/pgEdge/pgedge-salespipe/internal/logging"
	"github.com/pgEdge/pgedge-salespipe/internal/model"
	"github.com/pgEdge/pgedge-salespipe/pkg/version"
)

var (
	// Global flags
	cfgFile  string
	dataDir  string
	logLevel string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-salespipe",
		Short: "Synthetic retail sales analysis pipeline",
		Long: `pgedge-salespipe is a CLI tool that generates a synthetic retail sales
dataset, unpacks it into a long-format table, fits per-product statistical
models over the aggregated daily series, renders charts of the results,
and optionally loads the tables into PostgreSQL.

The stages are file-based and composable: each subcommand reads the
previous stage's output from the data directory, so any stage can be
re-run on its own while earlier outputs stay untouched.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-salespipe.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"directory pipeline inputs and outputs are resolved against")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(modelsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available fit models",
	Long: `List the models the analyze stage can fit per product over the
aggregated daily sales series.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available models:")
		cmd.Println()
		for _, name := range model.List() {
			m, err := model.Get(name)
			if err != nil {
				continue
			}
			cmd.Printf("  %-10s - %s\n", name, m.Description())
		}
	},
}
