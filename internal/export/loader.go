//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-salespipe/internal/logging"
	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

const dateFormat = "2006-01-02"

// Loader writes sales rows into PostgreSQL in batched inserts.
// Re-loading the same rows updates the measures in place.
type Loader struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewLoader creates a loader over the given pool.
func NewLoader(pool *pgxpool.Pool, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = 1000
	}
	return &Loader{pool: pool, batchSize: batchSize}
}

// LoadStoreSales inserts the store-level rows.
func (l *Loader) LoadStoreSales(ctx context.Context, rows []pipeline.EnrichedRow) error {
	logging.Info().Int("rows", len(rows)).Msg("Loading store_sales")

	columns := "(store_id, product_id, sale_date, day_of_week, sales_qty, fitted_value)"
	conflict := "ON CONFLICT (store_id, product_id, sale_date) DO UPDATE SET " +
		"day_of_week = EXCLUDED.day_of_week, sales_qty = EXCLUDED.sales_qty, " +
		"fitted_value = EXCLUDED.fitted_value"

	progress := NewProgressReporter("store_sales", int64(len(rows)), defaultProgressInterval)
	batch := make([]string, 0, l.batchSize)
	for _, r := range rows {
		batch = append(batch, fmt.Sprintf("(%d, %d, '%s', %d, %d, %s)",
			r.StoreID,
			r.ProductID,
			r.Date.Format(dateFormat),
			pipeline.WeekdayCode(r.Weekday),
			r.SalesQty,
			table.FormatFloat(r.FittedValue),
		))
		if len(batch) >= l.batchSize {
			if err := l.executeBatchInsert(ctx, "store_sales", columns, conflict, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}
	if err := l.executeBatchInsert(ctx, "store_sales", columns, conflict, batch); err != nil {
		return err
	}
	progress.Update(int64(len(batch)))
	progress.Done()
	return nil
}

// LoadProductSales inserts the product-level aggregated rows.
func (l *Loader) LoadProductSales(ctx context.Context, rows []pipeline.ProductDay) error {
	logging.Info().Int("rows", len(rows)).Msg("Loading product_sales")

	columns := "(product_id, sale_date, day_of_week, sales_qty, fitted_value)"
	conflict := "ON CONFLICT (product_id, sale_date) DO UPDATE SET " +
		"day_of_week = EXCLUDED.day_of_week, sales_qty = EXCLUDED.sales_qty, " +
		"fitted_value = EXCLUDED.fitted_value"

	progress := NewProgressReporter("product_sales", int64(len(rows)), defaultProgressInterval)
	batch := make([]string, 0, l.batchSize)
	for _, r := range rows {
		batch = append(batch, fmt.Sprintf("(%d, '%s', %d, %s, %s)",
			r.ProductID,
			r.Date.Format(dateFormat),
			pipeline.WeekdayCode(r.Weekday),
			table.FormatFloat(r.SalesQty),
			table.FormatFloat(r.FittedValue),
		))
		if len(batch) >= l.batchSize {
			if err := l.executeBatchInsert(ctx, "product_sales", columns, conflict, batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}
	if err := l.executeBatchInsert(ctx, "product_sales", columns, conflict, batch); err != nil {
		return err
	}
	progress.Update(int64(len(batch)))
	progress.Done()
	return nil
}

func (l *Loader) executeBatchInsert(ctx context.Context, tbl, columns, conflict string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s %s", tbl, columns, strings.Join(values, ", "), conflict)
	if _, err := l.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tbl, err)
	}
	logging.Debug().Str("table", tbl).Int("batch", len(values)).Msg("Inserted batch")
	return nil
}
