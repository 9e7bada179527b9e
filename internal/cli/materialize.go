package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salespipe/internal/cube"
	"github.com/pgEdge/pgedge-salespipe/internal/logging"
	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

var (
	materializeInput  string
	materializeOutput string
)

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Unpack a sales archive into a long-format table",
	Long: `Read a packed sales archive and write one row per store, product,
and day to a compressed CSV table. Rows carry the integer day code;
calendar dates are resolved by the downstream stages.

Example:
  pgedge-salespipe materialize --input synthetic_data.npz --output synthetic_data.csv.gz`,
	RunE: runMaterialize,
}

func init() {
	materializeCmd.Flags().StringVar(&materializeInput, "input", "",
		"archive path to read")
	materializeCmd.Flags().StringVar(&materializeOutput, "output", "",
		"table path to write")
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if materializeInput != "" {
		cfg.Materialize.Input = materializeInput
	}
	if materializeOutput != "" {
		cfg.Materialize.Output = materializeOutput
	}

	// Validate configuration
	if err := cfg.ValidateMaterialize(); err != nil {
		return err
	}

	input := cfg.Resolve(cfg.Materialize.Input)
	c, err := cube.ReadArchive(input)
	if err != nil {
		return err
	}

	logging.Info().
		Str("input", input).
		Int("stores", c.Stores).
		Int("products", c.Products).
		Int("days", c.Days).
		Msg("Loaded sales archive")

	rows, err := pipeline.Materialize(c)
	if err != nil {
		return err
	}

	output := cfg.Resolve(cfg.Materialize.Output)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := table.WriteRows(output, rows); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	logging.Info().
		Str("output", output).
		Int("rows", len(rows)).
		Msg("Long-format table written")

	return nil
}
