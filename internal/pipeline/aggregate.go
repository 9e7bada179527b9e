//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"fmt"
	"sort"
	"time"
)

// Reduction selects how the store axis collapses during aggregation.
type Reduction string

const (
	// ReduceSum totals the measures across stores.
	ReduceSum Reduction = "sum"
	// ReduceMean averages the measures across stores.
	ReduceMean Reduction = "mean"
)

// ParseReduction validates a reduction name.
func ParseReduction(s string) (Reduction, error) {
	switch Reduction(s) {
	case ReduceSum, ReduceMean:
		return Reduction(s), nil
	}
	return "", fmt.Errorf("unknown reduction: %s", s)
}

// ProductDay is one aggregated (product, date) observation.
type ProductDay struct {
	ProductID   int64
	Date        time.Time
	Weekday     time.Weekday
	SalesQty    float64
	FittedValue float64
}

// AggregationError reports an aggregated row count that does not cover
// the full product by date grid.
type AggregationError struct {
	Products int
	Dates    int
	Got      int
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregated to %d product-day rows, want %d (%d products x %d dates)",
		e.Got, e.Products*e.Dates, e.Products, e.Dates)
}

// Aggregate collapses the store axis, producing one row per product
// and date sorted by (product, date). Every product must cover the
// identical date set or the aggregation fails.
func Aggregate(rows []EnrichedRow, reduce Reduction) ([]ProductDay, error) {
	type key struct {
		product int64
		date    time.Time
	}

	groups := make(map[key]*ProductDay)
	counts := make(map[key]int)
	products := make(map[int64]struct{})
	dates := make(map[time.Time]struct{})

	for _, r := range rows {
		k := key{product: r.ProductID, date: r.Date}
		g, ok := groups[k]
		if !ok {
			g = &ProductDay{ProductID: r.ProductID, Date: r.Date, Weekday: r.Weekday}
			groups[k] = g
		}
		g.SalesQty += float64(r.SalesQty)
		g.FittedValue += r.FittedValue
		counts[k]++
		products[r.ProductID] = struct{}{}
		dates[r.Date] = struct{}{}
	}

	if len(groups) != len(products)*len(dates) {
		return nil, &AggregationError{
			Products: len(products),
			Dates:    len(dates),
			Got:      len(groups),
		}
	}

	if reduce == ReduceMean {
		for k, g := range groups {
			n := float64(counts[k])
			g.SalesQty /= n
			g.FittedValue /= n
		}
	}

	out := make([]ProductDay, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
