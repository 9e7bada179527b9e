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
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-salespipe/internal/logging"
	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
)

// FitConfig holds configuration for a fit run.
type FitConfig struct {
	Model   string
	Workers int
}

// ResultRow is one (product, date) output row carrying the inputs
// alongside the model prediction. ModelFit and Residual are NaN for
// products whose fit failed.
type ResultRow struct {
	ProductID   int64
	Date        time.Time
	Weekday     time.Weekday
	SalesQty    float64
	FittedValue float64
	ModelFit    float64
	Residual    float64
}

// Results holds the merged output of a fit run.
type Results struct {
	Model    string
	Rows     []ResultRow
	Fits     []*ProductFit
	Failures []*FitError
}

// FitProducts partitions the aggregated table by product and fits each
// series independently across a worker pool. A failing product is
// recorded and skipped; the run errors only when every product fails.
func FitProducts(ctx context.Context, agg []pipeline.ProductDay, cfg FitConfig) (*Results, error) {
	m, err := Get(cfg.Model)
	if err != nil {
		return nil, err
	}

	units := partition(agg)
	if len(units) == 0 {
		return nil, fmt.Errorf("no products to fit")
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(units) {
		workers = len(units)
	}

	logging.Debug().
		Int("products", len(units)).
		Int("workers", workers).
		Str("model", cfg.Model).
		Msg("Starting model fits")

	var (
		mu       sync.Mutex
		fits     []*ProductFit
		failures []*FitError
	)
	var fitted, failed atomic.Int64

	jobs := make(chan []pipeline.ProductDay)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for series := range jobs {
				fit, err := m.Fit(series)
				if err != nil {
					failed.Add(1)
					ferr := &FitError{ProductID: series[0].ProductID, Model: cfg.Model, Err: err}
					logging.Warn().
						Int64("product_id", ferr.ProductID).
						Str("model", cfg.Model).
						Err(err).
						Msg("Model fit failed")
					mu.Lock()
					failures = append(failures, ferr)
					mu.Unlock()
					continue
				}
				fitted.Add(1)
				mu.Lock()
				fits = append(fits, fit)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, series := range units {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- series:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fitted.Load() == 0 {
		return nil, fmt.Errorf("all %d product fits failed: %w", len(units), failures[0])
	}

	sort.Slice(fits, func(i, j int) bool { return fits[i].ProductID < fits[j].ProductID })
	sort.Slice(failures, func(i, j int) bool { return failures[i].ProductID < failures[j].ProductID })

	logging.Info().
		Int64("fitted", fitted.Load()).
		Int64("failed", failed.Load()).
		Str("model", cfg.Model).
		Msg("Model fitting complete")

	return &Results{
		Model:    cfg.Model,
		Rows:     mergeRows(agg, fits),
		Fits:     fits,
		Failures: failures,
	}, nil
}

// partition splits the sorted aggregated table into contiguous
// per-product series.
func partition(agg []pipeline.ProductDay) [][]pipeline.ProductDay {
	var units [][]pipeline.ProductDay
	start := 0
	for i := 1; i <= len(agg); i++ {
		if i == len(agg) || agg[i].ProductID != agg[start].ProductID {
			units = append(units, agg[start:i])
			start = i
		}
	}
	return units
}

// mergeRows joins the per-product predictions back onto the aggregated
// rows, leaving NaN where the product's fit failed.
func mergeRows(agg []pipeline.ProductDay, fits []*ProductFit) []ResultRow {
	byProduct := make(map[int64]*ProductFit, len(fits))
	for _, f := range fits {
		byProduct[f.ProductID] = f
	}

	rows := make([]ResultRow, 0, len(agg))
	pos := make(map[int64]int, len(byProduct))
	for _, r := range agg {
		row := ResultRow{
			ProductID:   r.ProductID,
			Date:        r.Date,
			Weekday:     r.Weekday,
			SalesQty:    r.SalesQty,
			FittedValue: r.FittedValue,
			ModelFit:    math.NaN(),
			Residual:    math.NaN(),
		}
		if f, ok := byProduct[r.ProductID]; ok {
			i := pos[r.ProductID]
			row.ModelFit = f.Fitted[i]
			row.Residual = f.Residuals[i]
			pos[r.ProductID] = i + 1
		}
		rows = append(rows, row)
	}
	return rows
}
