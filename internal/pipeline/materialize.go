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

	"github.com/pgEdge/pgedge-salespipe/internal/cube"
	"github.com/pgEdge/pgedge-salespipe/internal/table"
)

// Materialize flattens the cube into long-format rows, one per
// (store, product, day) cell, with the store axis varying slowest and
// the day axis fastest. Store and product identifiers are the
// zero-based axis positions.
func Materialize(c *cube.Cube) ([]table.Row, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rows := make([]table.Row, 0, c.Len())
	for s := 0; s < c.Stores; s++ {
		for p := 0; p < c.Products; p++ {
			for d := 0; d < c.Days; d++ {
				rows = append(rows, table.Row{
					StoreID:     int64(s),
					ProductID:   int64(p),
					Date:        c.Dates[d],
					SalesQty:    c.SaleAt(s, p, d),
					FittedValue: c.FittedAt(s, p, d),
				})
			}
		}
	}
	return rows, nil
}

// Rebuild reconstructs a cube from rows produced by Materialize. Rows
// must carry the exact materialization order so identifiers can be
// checked positionally.
func Rebuild(rows []table.Row, stores, products, days int) (*cube.Cube, error) {
	if want := stores * products * days; len(rows) != want {
		return nil, fmt.Errorf("long table has %d rows, want %d (%dx%dx%d)",
			len(rows), want, stores, products, days)
	}

	c := cube.New(stores, products, days)
	i := 0
	for s := 0; s < stores; s++ {
		for p := 0; p < products; p++ {
			for d := 0; d < days; d++ {
				r := rows[i]
				if r.StoreID != int64(s) || r.ProductID != int64(p) {
					return nil, fmt.Errorf("row %d: got store %d product %d, want store %d product %d",
						i, r.StoreID, r.ProductID, s, p)
				}
				if s == 0 && p == 0 {
					c.Dates[d] = r.Date
				} else if r.Date != c.Dates[d] {
					return nil, fmt.Errorf("row %d: date code %d for day %d, want %d",
						i, r.Date, d, c.Dates[d])
				}
				c.SetSale(s, p, d, r.SalesQty)
				c.SetFitted(s, p, d, r.FittedValue)
				i++
			}
		}
	}
	return c, nil
}
