//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model fits per-product statistical models over the
// aggregated sales table.
package model

import (
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
)

// Coefficient is one fitted model term with its inference statistics.
type Coefficient struct {
	Term     string
	Estimate float64
	StdErr   float64
	TValue   float64
	PValue   float64
}

// ProductFit holds the fitted model for one product. Fitted and
// Residuals align index-for-index with the product's input series.
type ProductFit struct {
	ProductID    int64
	Model        string
	Coefficients []Coefficient
	Fitted       []float64
	Residuals    []float64
}

// Model fits one product's aggregated series. The series arrives
// sorted by date with one entry per date.
type Model interface {
	Name() string
	Description() string
	Fit(series []pipeline.ProductDay) (*ProductFit, error)
}

// FitError reports a model failure for a single product.
type FitError struct {
	ProductID int64
	Model     string
	Err       error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("model %s failed for product %d: %v", e.Model, e.ProductID, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}

var registry = make(map[string]func() Model)

// Register adds a model constructor to the registry.
func Register(name string, constructor func() Model) {
	registry[name] = constructor
}

// Get retrieves a model by name.
func Get(name string) (Model, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return constructor(), nil
}

// List returns all registered model names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("dow-ols", NewDowOLS)
	Register("mean", NewMean)
}
