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
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
)

// Mean is an intercept-only baseline fitting the grand mean of the
// series. Useful for products too sparse for the day-of-week model.
type Mean struct{}

// NewMean creates a mean baseline model.
func NewMean() Model {
	return &Mean{}
}

func (m *Mean) Name() string {
	return "mean"
}

func (m *Mean) Description() string {
	return "intercept-only baseline fitting the series mean"
}

func (m *Mean) Fit(series []pipeline.ProductDay) (*ProductFit, error) {
	n := len(series)
	if n == 0 {
		return nil, fmt.Errorf("empty series")
	}

	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i, r := range series {
		X.Set(i, 0, 1)
		y.SetVec(i, r.SalesQty)
	}

	return olsFit(m.Name(), series[0].ProductID, X, y, []string{"const"})
}
