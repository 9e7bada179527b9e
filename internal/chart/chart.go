//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package chart renders the analysis stage's charts.
package chart

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/pgEdge/pgedge-salespipe/internal/model"
)

// Box renders the distribution of day-of-week effects across products,
// one box per indicator term.
func Box(fits []*model.ProductFit, path string) error {
	groups := make(map[string]plotter.Values)
	for _, fit := range fits {
		for _, c := range fit.Coefficients {
			if c.Term == "const" {
				continue
			}
			groups[c.Term] = append(groups[c.Term], c.Estimate)
		}
	}
	if len(groups) == 0 {
		return fmt.Errorf("no day-of-week effects to plot")
	}

	terms := make([]string, 0, len(groups))
	for term := range groups {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	p := plot.New()
	p.Title.Text = "Distribution of Day-of-Week Effects Across Products"
	p.X.Label.Text = "Weekday Dummy"
	p.Y.Label.Text = "Sales Effect"

	for i, term := range terms {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), groups[term])
		if err != nil {
			return fmt.Errorf("failed to build box for %s: %w", term, err)
		}
		p.Add(box)
	}
	p.NominalX(terms...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// Lines renders each product's model fit over calendar time.
func Lines(rows []model.ResultRow, path string) error {
	series := make(map[int64]plotter.XYs)
	for _, r := range rows {
		if math.IsNaN(r.ModelFit) {
			continue
		}
		series[r.ProductID] = append(series[r.ProductID], plotter.XY{
			X: float64(r.Date.Unix()),
			Y: r.ModelFit,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no fitted rows to plot")
	}

	ids := make([]int64, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	p := plot.New()
	p.Title.Text = "Model Fit by Product"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Sales"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	for i, id := range ids {
		line, err := plotter.NewLine(series[id])
		if err != nil {
			return fmt.Errorf("failed to build line for product %d: %w", id, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("product %d", id), line)
	}

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}
