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
	"strconv"

	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

const dateFormat = "2006-01-02"

var resultHeader = []string{
	"product_id", "date", "day_of_week", "sales_qty", "fitted_value", "model_fit", "residual",
}

var coefficientHeader = []string{
	"product_id", "model", "term", "estimate", "std_err", "t_value", "p_value",
}

// WriteRows writes the per-product-day result table at path.
func (r *Results) WriteRows(path string) error {
	records := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		records = append(records, []string{
			strconv.FormatInt(row.ProductID, 10),
			row.Date.Format(dateFormat),
			strconv.Itoa(pipeline.WeekdayCode(row.Weekday)),
			table.FormatFloat(row.SalesQty),
			table.FormatFloat(row.FittedValue),
			table.FormatFloat(row.ModelFit),
			table.FormatFloat(row.Residual),
		})
	}
	return table.WriteCSV(path, resultHeader, records)
}

// WriteCoefficients writes one row per fitted coefficient at path.
// Failed products contribute no rows.
func (r *Results) WriteCoefficients(path string) error {
	var records [][]string
	for _, fit := range r.Fits {
		for _, c := range fit.Coefficients {
			records = append(records, []string{
				strconv.FormatInt(fit.ProductID, 10),
				fit.Model,
				c.Term,
				table.FormatFloat(c.Estimate),
				table.FormatFloat(c.StdErr),
				table.FormatFloat(c.TValue),
				table.FormatFloat(c.PValue),
			})
		}
	}
	return table.WriteCSV(path, coefficientHeader, records)
}
