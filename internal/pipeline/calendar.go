//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline transforms the raw sales cube into the long-format
// and product-level tables the analysis stage consumes.
package pipeline

import (
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

// Calendar maps integer day codes onto calendar dates anchored at a
// fixed start day. Code i resolves to anchor plus i days, so the
// mapping is strictly increasing over the valid range.
type Calendar struct {
	anchor time.Time
	days   int
}

// NewCalendar creates a calendar covering day codes [0, days).
func NewCalendar(anchor time.Time, days int) *Calendar {
	return &Calendar{anchor: anchor, days: days}
}

// Days returns the exclusive upper bound of valid day codes.
func (c *Calendar) Days() int {
	return c.days
}

// Date resolves a day code to its calendar date.
func (c *Calendar) Date(code int64) (time.Time, error) {
	if code < 0 || code >= int64(c.days) {
		return time.Time{}, &DateIndexError{Code: code, Days: c.days}
	}
	return c.anchor.AddDate(0, 0, int(code)), nil
}

// DateIndexError reports a day code outside the calendar range.
type DateIndexError struct {
	Code int64
	Days int
}

func (e *DateIndexError) Error() string {
	return fmt.Sprintf("day code %d outside [0, %d)", e.Code, e.Days)
}

// WeekdayCode numbers weekdays Monday 0 through Sunday 6, the order
// the day-of-week model terms use.
func WeekdayCode(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// EnrichedRow is a long-table row with its day code resolved to a
// calendar date.
type EnrichedRow struct {
	StoreID     int64
	ProductID   int64
	Date        time.Time
	Weekday     time.Weekday
	SalesQty    int64
	FittedValue float64
}

// Enrich resolves every row's day code against the calendar. A code
// outside the calendar fails the whole batch.
func Enrich(rows []table.Row, cal *Calendar) ([]EnrichedRow, error) {
	out := make([]EnrichedRow, 0, len(rows))
	for i, r := range rows {
		date, err := cal.Date(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d (store %d, product %d): %w", i, r.StoreID, r.ProductID, err)
		}
		out = append(out, EnrichedRow{
			StoreID:     r.StoreID,
			ProductID:   r.ProductID,
			Date:        date,
			Weekday:     date.Weekday(),
			SalesQty:    r.SalesQty,
			FittedValue: r.FittedValue,
		})
	}
	return out, nil
}
