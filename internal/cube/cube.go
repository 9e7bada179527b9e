//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cube reads and writes the packed sales archive: three
// NumPy-compatible arrays sharing store, product and day axes.
package cube

import (
	"fmt"
	"strings"
)

// Member names inside the packed archive.
const (
	DatesArray  = "dates"
	SalesArray  = "synth_sales_data"
	FittedArray = "fitted_line"
)

// Cube holds the raw dataset. Sales and Fitted are flattened row-major
// with the store axis varying slowest and the day axis fastest. Dates
// carries one integer day code per day step.
type Cube struct {
	Stores   int
	Products int
	Days     int

	Dates  []int64
	Sales  []int64
	Fitted []float64
}

// New allocates a zeroed cube with the given axis lengths.
func New(stores, products, days int) *Cube {
	return &Cube{
		Stores:   stores,
		Products: products,
		Days:     days,
		Dates:    make([]int64, days),
		Sales:    make([]int64, stores*products*days),
		Fitted:   make([]float64, stores*products*days),
	}
}

// Len returns the number of (store, product, day) cells.
func (c *Cube) Len() int {
	return c.Stores * c.Products * c.Days
}

func (c *Cube) index(s, p, d int) int {
	return (s*c.Products+p)*c.Days + d
}

// SaleAt returns the sales quantity for the given cell.
func (c *Cube) SaleAt(s, p, d int) int64 {
	return c.Sales[c.index(s, p, d)]
}

// SetSale sets the sales quantity for the given cell.
func (c *Cube) SetSale(s, p, d int, v int64) {
	c.Sales[c.index(s, p, d)] = v
}

// FittedAt returns the fitted value for the given cell.
func (c *Cube) FittedAt(s, p, d int) float64 {
	return c.Fitted[c.index(s, p, d)]
}

// SetFitted sets the fitted value for the given cell.
func (c *Cube) SetFitted(s, p, d int, v float64) {
	c.Fitted[c.index(s, p, d)] = v
}

// Shape returns the (store, product, day) axis lengths.
func (c *Cube) Shape() []int {
	return []int{c.Stores, c.Products, c.Days}
}

// Validate checks that every array matches the declared axis lengths.
func (c *Cube) Validate() error {
	if c.Stores < 1 || c.Products < 1 || c.Days < 1 {
		return fmt.Errorf("invalid cube shape %s", shapeString(c.Shape()))
	}
	if len(c.Dates) != c.Days {
		return &ShapeError{Array: DatesArray, Got: []int{len(c.Dates)}, Want: []int{c.Days}}
	}
	if len(c.Sales) != c.Len() {
		return &ShapeError{Array: SalesArray, Got: []int{len(c.Sales)}, Want: c.Shape()}
	}
	if len(c.Fitted) != c.Len() {
		return &ShapeError{Array: FittedArray, Got: []int{len(c.Fitted)}, Want: c.Shape()}
	}
	return nil
}

// ShapeError reports an array whose dimensions do not agree with the
// rest of the archive.
type ShapeError struct {
	Array string
	Got   []int
	Want  []int
}

func (e *ShapeError) Error() string {
	switch {
	case len(e.Got) == 1 && len(e.Want) > 1:
		return fmt.Sprintf("array %s has %d elements, want shape %s",
			e.Array, e.Got[0], shapeString(e.Want))
	case len(e.Got) != len(e.Want):
		return fmt.Sprintf("array %s has %d dimensions, want %d",
			e.Array, len(e.Got), len(e.Want))
	default:
		return fmt.Sprintf("array %s has shape %s, want %s",
			e.Array, shapeString(e.Got), shapeString(e.Want))
	}
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, "x")
}
