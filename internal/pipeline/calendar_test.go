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
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

var testAnchor = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestCalendarDate(t *testing.T) {
	cal := NewCalendar(testAnchor, 92)

	tests := []struct {
		name string
		code int64
		want time.Time
	}{
		{"anchor day", 0, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"next day", 1, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"month rollover", 30, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"second rollover", 61, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"last day", 91, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.Date(tt.code)
			if err != nil {
				t.Fatalf("Failed to resolve code %d: %v", tt.code, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %s for code %d, got %s",
					tt.want.Format("2006-01-02"), tt.code, got.Format("2006-01-02"))
			}
		})
	}
}

func TestCalendarStrictlyIncreasing(t *testing.T) {
	cal := NewCalendar(testAnchor, 92)

	prev, err := cal.Date(0)
	if err != nil {
		t.Fatalf("Failed to resolve code 0: %v", err)
	}
	for code := int64(1); code < 92; code++ {
		cur, err := cal.Date(code)
		if err != nil {
			t.Fatalf("Failed to resolve code %d: %v", code, err)
		}
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			t.Errorf("Expected code %d to land one day after code %d, got %s after %s",
				code, code-1, cur.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
		prev = cur
	}
}

func TestCalendarOutOfRange(t *testing.T) {
	cal := NewCalendar(testAnchor, 92)

	for _, code := range []int64{-1, 92, 400} {
		_, err := cal.Date(code)
		if err == nil {
			t.Errorf("Expected error for code %d but got none", code)
			continue
		}
		var dateErr *DateIndexError
		if !errors.As(err, &dateErr) {
			t.Errorf("Expected DateIndexError for code %d, got %T: %v", code, err, err)
			continue
		}
		if dateErr.Code != code || dateErr.Days != 92 {
			t.Errorf("Expected error fields (%d, 92), got (%d, %d)", code, dateErr.Code, dateErr.Days)
		}
	}
}

func TestWeekdayCode(t *testing.T) {
	tests := []struct {
		weekday time.Weekday
		want    int
	}{
		{time.Monday, 0},
		{time.Tuesday, 1},
		{time.Wednesday, 2},
		{time.Thursday, 3},
		{time.Friday, 4},
		{time.Saturday, 5},
		{time.Sunday, 6},
	}

	for _, tt := range tests {
		if got := WeekdayCode(tt.weekday); got != tt.want {
			t.Errorf("Expected code %d for %s, got %d", tt.want, tt.weekday, got)
		}
	}
}

func TestEnrich(t *testing.T) {
	cal := NewCalendar(testAnchor, 3)
	rows := []table.Row{
		{StoreID: 0, ProductID: 0, Date: 0, SalesQty: 5, FittedValue: 4.5},
		{StoreID: 0, ProductID: 0, Date: 2, SalesQty: 7, FittedValue: 6.5},
	}

	enriched, err := Enrich(rows, cal)
	if err != nil {
		t.Fatalf("Failed to enrich rows: %v", err)
	}

	if len(enriched) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(enriched))
	}
	// 2025-06-01 is a Sunday.
	if enriched[0].Weekday != time.Sunday {
		t.Errorf("Expected Sunday for code 0, got %s", enriched[0].Weekday)
	}
	if enriched[1].Weekday != time.Tuesday {
		t.Errorf("Expected Tuesday for code 2, got %s", enriched[1].Weekday)
	}
	if !enriched[1].Date.Equal(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected 2025-06-03 for code 2, got %s", enriched[1].Date.Format("2006-01-02"))
	}
	if enriched[0].SalesQty != 5 || enriched[0].FittedValue != 4.5 {
		t.Errorf("Expected measures to carry through, got %+v", enriched[0])
	}
}

func TestEnrichOutOfRange(t *testing.T) {
	cal := NewCalendar(testAnchor, 3)
	rows := []table.Row{
		{StoreID: 0, ProductID: 0, Date: 0},
		{StoreID: 1, ProductID: 2, Date: 3},
	}

	_, err := Enrich(rows, cal)
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	var dateErr *DateIndexError
	if !errors.As(err, &dateErr) {
		t.Fatalf("Expected DateIndexError, got %T: %v", err, err)
	}
	if dateErr.Code != 3 {
		t.Errorf("Expected offending code 3, got %d", dateErr.Code)
	}
}
