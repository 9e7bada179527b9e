package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salespipe/internal/export"
	"github.com/pgEdge/pgedge-salespipe/internal/logging"
	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

var (
	exportInput        string
	exportConnection   string
	exportReduce       string
	exportBatchSize    int
	exportDropExisting bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load the sales tables into PostgreSQL",
	Long: `Read the long-format sales table and load both the store-level rows
and the product-day aggregation into PostgreSQL. Re-exporting the same
source updates the loaded rows in place.

Example:
  pgedge-salespipe export --connection "postgres://user@localhost/sales"`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "",
		"table path to read")
	exportCmd.Flags().StringVar(&exportConnection, "connection", "",
		"PostgreSQL connection string")
	exportCmd.Flags().StringVar(&exportReduce, "reduce", "",
		"store-axis reduction for the product-level table: sum or mean")
	exportCmd.Flags().IntVar(&exportBatchSize, "batch-size", 0,
		"rows per batch insert")
	exportCmd.Flags().BoolVar(&exportDropExisting, "drop-existing", false,
		"drop existing tables before loading")
}

func runExport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if exportInput != "" {
		cfg.Export.Input = exportInput
	}
	if exportConnection != "" {
		cfg.Export.Connection = exportConnection
	}
	if exportReduce != "" {
		cfg.Export.Reduction = exportReduce
	}
	if exportBatchSize > 0 {
		cfg.Export.BatchSize = exportBatchSize
	}
	if exportDropExisting {
		cfg.Export.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateExport(); err != nil {
		return err
	}

	anchor, err := cfg.AnchorDate()
	if err != nil {
		return err
	}

	input := cfg.Resolve(cfg.Export.Input)
	rows, err := table.ReadRows(input)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows in %s", input)
	}

	cal := pipeline.NewCalendar(anchor, distinctDays(rows))
	enriched, err := pipeline.Enrich(rows, cal)
	if err != nil {
		return err
	}

	reduce, err := pipeline.ParseReduction(cfg.Export.Reduction)
	if err != nil {
		return err
	}
	agg, err := pipeline.Aggregate(enriched, reduce)
	if err != nil {
		return err
	}

	// Connect to database
	ctx := context.Background()
	pool, err := export.Connect(ctx, cfg.Export.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Check whether the database holds an export of a different source
	exists, err := export.MetadataExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check metadata: %w", err)
	}
	if exists {
		existingSource, err := export.GetMetadataValue(ctx, pool, "source")
		if err == nil && existingSource != "" && existingSource != cfg.Export.Input {
			if !cfg.Export.DropExisting {
				return fmt.Errorf(
					"database holds an export of '%s' but '%s' was specified; "+
						"use --drop-existing to replace it",
					existingSource, cfg.Export.Input)
			}
			logging.Warn().
				Str("existing_source", existingSource).
				Str("new_source", cfg.Export.Input).
				Msg("Dropping existing tables")
		}
	}

	// Drop existing tables if requested
	if cfg.Export.DropExisting {
		logging.Info().Msg("Dropping existing tables")
		if err := export.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	// Create schema
	logging.Info().Msg("Creating schema")
	if err := export.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	loader := export.NewLoader(pool, cfg.Export.BatchSize)
	if err := loader.LoadStoreSales(ctx, enriched); err != nil {
		return fmt.Errorf("failed to load store sales: %w", err)
	}
	if err := loader.LoadProductSales(ctx, agg); err != nil {
		return fmt.Errorf("failed to load product sales: %w", err)
	}

	meta := export.Metadata{
		Source:      cfg.Export.Input,
		Anchor:      cfg.Calendar.Anchor,
		Reduction:   cfg.Export.Reduction,
		StoreRows:   len(enriched),
		ProductRows: len(agg),
	}
	if err := export.SaveMetadata(ctx, pool, meta); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Int("store_rows", len(enriched)).
		Int("product_rows", len(agg)).
		Msg("Export complete")

	return nil
}
