//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"math"
	"time"

	"github.com/pgEdge/pgedge-salespipe/internal/cube"
)

// Store is a synthetic retail location.
type Store struct {
	ID   int64
	City string
}

// Product is a synthetic catalog entry.
type Product struct {
	ID         int64
	Name       string
	Category   string
	BaseDemand float64
}

// Catalog holds the synthetic stores and products.
type Catalog struct {
	Stores   []Store
	Products []Product
}

// demandTiers bucket products into daily volume ranges, weighted
// toward mid-range sellers.
var demandTiers = []struct {
	min, max float64
}{
	{5, 20},
	{20, 80},
	{80, 200},
}

var demandTierWeights = []int{30, 50, 20}

// dowMultipliers shape weekly demand, indexed by time.Weekday with
// Sunday first. Retail volume builds toward the weekend.
var dowMultipliers = [7]float64{1.25, 0.9, 0.85, 0.9, 1.0, 1.15, 1.4}

// Synthesizer produces the raw sales cube.
type Synthesizer struct {
	faker *Faker
}

// NewSynthesizer creates a Synthesizer. A zero seed draws one from the
// clock.
func NewSynthesizer(seed uint64) *Synthesizer {
	if seed == 0 {
		return &Synthesizer{faker: NewFaker()}
	}
	return &Synthesizer{faker: NewFakerWithSeed(seed)}
}

// Catalog generates the synthetic stores and products.
func (g *Synthesizer) Catalog(stores, products int) *Catalog {
	cat := &Catalog{
		Stores:   make([]Store, stores),
		Products: make([]Product, products),
	}
	for i := range cat.Stores {
		cat.Stores[i] = Store{
			ID:   int64(i),
			City: g.faker.City(),
		}
	}
	for i := range cat.Products {
		tier := ChooseWeighted(g.faker, demandTiers, demandTierWeights)
		cat.Products[i] = Product{
			ID:         int64(i),
			Name:       g.faker.ProductName(),
			Category:   g.faker.ProductCategory(),
			BaseDemand: g.faker.Float64(tier.min, tier.max),
		}
	}
	return cat
}

// Cube synthesizes daily sales for every store and product over the
// given day span, along with a fitted trend per series. Day codes run
// 0..days-1 and resolve against the anchor date.
func (g *Synthesizer) Cube(cat *Catalog, days int, anchor time.Time) *cube.Cube {
	c := cube.New(len(cat.Stores), len(cat.Products), days)
	for d := 0; d < days; d++ {
		c.Dates[d] = int64(d)
	}

	for s := range cat.Stores {
		storeFactor := g.faker.Float64(0.6, 1.4)
		for p, prod := range cat.Products {
			level := prod.BaseDemand * storeFactor
			slope := g.faker.Float64(-0.2, 0.4) * level / 100
			for d := 0; d < days; d++ {
				wd := anchor.AddDate(0, 0, d).Weekday()
				expected := level*dowMultipliers[wd] + slope*float64(d)
				noise := g.faker.Float64(0.7, 1.3)
				qty := int64(math.Round(expected * noise))
				if qty < 0 {
					qty = 0
				}
				c.SetSale(s, p, d, qty)
				c.SetFitted(s, p, d, expected)
			}
		}
	}
	return c
}
