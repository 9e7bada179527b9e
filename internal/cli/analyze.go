package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salespipe/internal/chart"
	"github.com/pgEdge/pgedge-salespipe/internal/logging"
	"github.com/pgEdge/pgedge-salespipe/internal/model"
	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

var (
	analyzeInput      string
	analyzeOutputDir  string
	analyzeReduce     string
	analyzeModel      string
	analyzeChart      string
	analyzeFitWorkers int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate the sales table, fit models, and render charts",
	Long: `Read the long-format sales table, map day codes to calendar dates,
collapse the store axis, and fit the selected model to each product's
daily series. The fitted table, the coefficient table, and a chart are
written to the output directory.

Example:
  pgedge-salespipe analyze --reduce sum --model dow-ols --chart box`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "",
		"table path to read")
	analyzeCmd.Flags().StringVar(&analyzeOutputDir, "output-dir", "",
		"directory analysis outputs are written to")
	analyzeCmd.Flags().StringVar(&analyzeReduce, "reduce", "",
		"store-axis reduction: sum or mean")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "",
		"model to fit per product (see 'models')")
	analyzeCmd.Flags().StringVar(&analyzeChart, "chart", "",
		"chart to render: box or lines")
	analyzeCmd.Flags().IntVar(&analyzeFitWorkers, "fit-workers", 0,
		"number of concurrent per-product fits")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if analyzeInput != "" {
		cfg.Analyze.Input = analyzeInput
	}
	if analyzeOutputDir != "" {
		cfg.Analyze.OutputDir = analyzeOutputDir
	}
	if analyzeReduce != "" {
		cfg.Analyze.Reduction = analyzeReduce
	}
	if analyzeModel != "" {
		cfg.Analyze.Model = analyzeModel
	}
	if analyzeChart != "" {
		cfg.Analyze.Chart = analyzeChart
	}
	if analyzeFitWorkers > 0 {
		cfg.Analyze.FitWorkers = analyzeFitWorkers
	}

	// Validate configuration
	if err := cfg.ValidateAnalyze(); err != nil {
		return err
	}

	anchor, err := cfg.AnchorDate()
	if err != nil {
		return err
	}

	input := cfg.Resolve(cfg.Analyze.Input)
	rows, err := table.ReadRows(input)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows in %s", input)
	}

	logging.Info().
		Str("input", input).
		Int("rows", len(rows)).
		Msg("Loaded sales table")

	cal := pipeline.NewCalendar(anchor, distinctDays(rows))
	enriched, err := pipeline.Enrich(rows, cal)
	if err != nil {
		return err
	}

	reduce, err := pipeline.ParseReduction(cfg.Analyze.Reduction)
	if err != nil {
		return err
	}
	agg, err := pipeline.Aggregate(enriched, reduce)
	if err != nil {
		return err
	}

	logging.Info().
		Str("reduction", string(reduce)).
		Int("rows", len(agg)).
		Msg("Aggregated to product-day level")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	res, err := model.FitProducts(ctx, agg, model.FitConfig{
		Model:   cfg.Analyze.Model,
		Workers: cfg.Analyze.FitWorkers,
	})
	if err != nil {
		return err
	}

	outDir := cfg.Resolve(cfg.Analyze.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := res.WriteRows(filepath.Join(outDir, "product_fits.csv.gz")); err != nil {
		return fmt.Errorf("failed to write fitted table: %w", err)
	}
	if err := res.WriteCoefficients(filepath.Join(outDir, "fit_coefficients.csv.gz")); err != nil {
		return fmt.Errorf("failed to write coefficient table: %w", err)
	}

	var chartPath string
	switch cfg.Analyze.Chart {
	case "lines":
		chartPath = filepath.Join(outDir, "model_fit.png")
		err = chart.Lines(res.Rows, chartPath)
	default:
		chartPath = filepath.Join(outDir, "dow_effects.png")
		err = chart.Box(res.Fits, chartPath)
	}
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	logging.Info().
		Int("products", len(res.Fits)).
		Int("failed", len(res.Failures)).
		Str("output_dir", outDir).
		Msg("Analysis complete")

	return nil
}

// distinctDays counts the unique day codes in the table, which for a
// well-formed materialized cube is its day span.
func distinctDays(rows []table.Row) int {
	seen := make(map[int64]struct{})
	for _, r := range rows {
		seen[r.Date] = struct{}{}
	}
	return len(seen)
}
