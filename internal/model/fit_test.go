//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
)

// flakyModel fails for odd product identifiers and otherwise behaves
// like the mean baseline.
type flakyModel struct{}

func (m *flakyModel) Name() string        { return "flaky" }
func (m *flakyModel) Description() string { return "test model failing for odd products" }

func (m *flakyModel) Fit(series []pipeline.ProductDay) (*ProductFit, error) {
	if series[0].ProductID%2 == 1 {
		return nil, fmt.Errorf("odd product")
	}
	fit, err := NewMean().Fit(series)
	if err != nil {
		return nil, err
	}
	fit.Model = m.Name()
	return fit, nil
}

// brokenModel fails for every product.
type brokenModel struct{}

func (m *brokenModel) Name() string        { return "broken" }
func (m *brokenModel) Description() string { return "test model that always fails" }

func (m *brokenModel) Fit(series []pipeline.ProductDay) (*ProductFit, error) {
	return nil, fmt.Errorf("broken")
}

func init() {
	Register("flaky", func() Model { return &flakyModel{} })
	Register("broken", func() Model { return &brokenModel{} })
}

// testAgg builds an aggregated table of products numbered 0..products-1
// with one row per day, sorted the way Aggregate emits them.
func testAgg(products, days int) []pipeline.ProductDay {
	anchor := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var agg []pipeline.ProductDay
	for p := 0; p < products; p++ {
		for d := 0; d < days; d++ {
			date := anchor.AddDate(0, 0, d)
			agg = append(agg, pipeline.ProductDay{
				ProductID:   int64(p),
				Date:        date,
				Weekday:     date.Weekday(),
				SalesQty:    float64(10*p + d),
				FittedValue: float64(10*p+d) + 0.5,
			})
		}
	}
	return agg
}

func TestFitProducts(t *testing.T) {
	agg := testAgg(3, 14)

	res, err := FitProducts(context.Background(), agg, FitConfig{Model: "dow-ols", Workers: 2})
	if err != nil {
		t.Fatalf("Failed to fit products: %v", err)
	}

	if len(res.Fits) != 3 {
		t.Fatalf("Expected 3 fits, got %d", len(res.Fits))
	}
	if len(res.Failures) != 0 {
		t.Errorf("Expected no failures, got %d", len(res.Failures))
	}
	for i, fit := range res.Fits {
		if fit.ProductID != int64(i) {
			t.Errorf("Fit %d: expected product %d, got %d", i, i, fit.ProductID)
		}
	}
	if len(res.Rows) != len(agg) {
		t.Fatalf("Expected %d rows, got %d", len(agg), len(res.Rows))
	}
	for i, row := range res.Rows {
		if math.IsNaN(row.ModelFit) {
			t.Errorf("Row %d: expected model fit, got NaN", i)
		}
		if row.ProductID != agg[i].ProductID || !row.Date.Equal(agg[i].Date) {
			t.Errorf("Row %d: expected keys %d %s, got %d %s", i,
				agg[i].ProductID, agg[i].Date.Format("2006-01-02"),
				row.ProductID, row.Date.Format("2006-01-02"))
		}
	}
}

func TestFitProductsPartialFailure(t *testing.T) {
	agg := testAgg(4, 7)

	res, err := FitProducts(context.Background(), agg, FitConfig{Model: "flaky", Workers: 3})
	if err != nil {
		t.Fatalf("Expected partial failures to be non-fatal, got %v", err)
	}

	if len(res.Fits) != 2 {
		t.Fatalf("Expected 2 fits, got %d", len(res.Fits))
	}
	if res.Fits[0].ProductID != 0 || res.Fits[1].ProductID != 2 {
		t.Errorf("Expected fits for products 0 and 2, got %d and %d",
			res.Fits[0].ProductID, res.Fits[1].ProductID)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("Expected 2 failures, got %d", len(res.Failures))
	}
	if res.Failures[0].ProductID != 1 || res.Failures[1].ProductID != 3 {
		t.Errorf("Expected failures for products 1 and 3, got %d and %d",
			res.Failures[0].ProductID, res.Failures[1].ProductID)
	}

	for _, row := range res.Rows {
		failed := row.ProductID%2 == 1
		if failed && !math.IsNaN(row.ModelFit) {
			t.Errorf("Product %d: expected NaN model fit, got %v", row.ProductID, row.ModelFit)
		}
		if !failed && math.IsNaN(row.Residual) {
			t.Errorf("Product %d: expected residual, got NaN", row.ProductID)
		}
	}
}

func TestFitProductsAllFail(t *testing.T) {
	_, err := FitProducts(context.Background(), testAgg(3, 7), FitConfig{Model: "broken", Workers: 2})
	if err == nil {
		t.Fatal("Expected error when every product fails")
	}
}

func TestFitProductsUnknownModel(t *testing.T) {
	_, err := FitProducts(context.Background(), testAgg(1, 7), FitConfig{Model: "arima"})
	if err == nil {
		t.Fatal("Expected error for unknown model")
	}
}

func TestFitProductsEmpty(t *testing.T) {
	_, err := FitProducts(context.Background(), nil, FitConfig{Model: "mean"})
	if err == nil {
		t.Fatal("Expected error for empty input")
	}
}

func TestFitProductsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FitProducts(ctx, testAgg(8, 14), FitConfig{Model: "mean", Workers: 2})
	if err == nil {
		t.Fatal("Expected error for canceled context")
	}
}

func TestFitProductsDeterministic(t *testing.T) {
	agg := testAgg(8, 14)
	cfg := FitConfig{Model: "mean", Workers: 4}

	first, err := FitProducts(context.Background(), agg, cfg)
	if err != nil {
		t.Fatalf("Failed to fit products: %v", err)
	}
	second, err := FitProducts(context.Background(), agg, cfg)
	if err != nil {
		t.Fatalf("Failed to fit products: %v", err)
	}

	if len(first.Rows) != len(second.Rows) {
		t.Fatalf("Expected %d rows, got %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		if first.Rows[i] != second.Rows[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, first.Rows[i], second.Rows[i])
		}
	}
}

func readCSVGz(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to decompress %s: %v", path, err)
	}
	defer gz.Close()
	records, err := csv.NewReader(gz).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return records
}

func TestResultsWriters(t *testing.T) {
	dir := t.TempDir()
	res, err := FitProducts(context.Background(), testAgg(4, 7), FitConfig{Model: "flaky", Workers: 2})
	if err != nil {
		t.Fatalf("Failed to fit products: %v", err)
	}

	rowsPath := filepath.Join(dir, "product_fits.csv.gz")
	if err := res.WriteRows(rowsPath); err != nil {
		t.Fatalf("Failed to write rows: %v", err)
	}
	records := readCSVGz(t, rowsPath)
	if len(records) != 1+4*7 {
		t.Fatalf("Expected %d records, got %d", 1+4*7, len(records))
	}
	if records[0][0] != "product_id" || records[0][5] != "model_fit" {
		t.Errorf("Unexpected result header: %v", records[0])
	}
	// Product 1 failed, so its model_fit column reads NaN.
	foundNaN := false
	for _, rec := range records[1:] {
		if rec[0] == "1" && rec[5] == "NaN" {
			foundNaN = true
		}
		if rec[0] == "0" && rec[5] == "NaN" {
			t.Errorf("Expected model fit for product 0, got NaN")
		}
	}
	if !foundNaN {
		t.Error("Expected NaN model fit for failed product 1")
	}

	coefPath := filepath.Join(dir, "fit_coefficients.csv.gz")
	if err := res.WriteCoefficients(coefPath); err != nil {
		t.Fatalf("Failed to write coefficients: %v", err)
	}
	records = readCSVGz(t, coefPath)
	// Two surviving products with a single const term each.
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[1][0] != "0" || records[1][2] != "const" {
		t.Errorf("Unexpected first coefficient row: %v", records[1])
	}
	if records[2][0] != "2" {
		t.Errorf("Expected coefficient row for product 2, got %v", records[2])
	}
}
