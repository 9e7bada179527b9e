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
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pgEdge/pgedge-salespipe/internal/pipeline"
)

// DowOLS regresses sales on an intercept plus day-of-week indicator
// terms. The lowest weekday code present in the series becomes the
// baseline absorbed by the intercept; the remaining weekdays get dow_N
// indicator columns.
type DowOLS struct{}

// NewDowOLS creates a day-of-week regression model.
func NewDowOLS() Model {
	return &DowOLS{}
}

func (m *DowOLS) Name() string {
	return "dow-ols"
}

func (m *DowOLS) Description() string {
	return "least squares fit of sales on day-of-week indicators"
}

func (m *DowOLS) Fit(series []pipeline.ProductDay) (*ProductFit, error) {
	n := len(series)
	if n == 0 {
		return nil, fmt.Errorf("empty series")
	}

	present := make(map[int]bool)
	for _, r := range series {
		present[pipeline.WeekdayCode(r.Weekday)] = true
	}
	codes := make([]int, 0, len(present))
	for code := range present {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	dummies := codes[1:]

	k := 1 + len(dummies)
	if n < k {
		return nil, fmt.Errorf("%d observations cannot support %d terms", n, k)
	}

	terms := make([]string, k)
	terms[0] = "const"
	col := make(map[int]int, len(dummies))
	for j, code := range dummies {
		col[code] = j + 1
		terms[j+1] = fmt.Sprintf("dow_%d", code)
	}

	X := mat.NewDense(n, k, nil)
	y := mat.NewVecDense(n, nil)
	for i, r := range series {
		X.Set(i, 0, 1)
		if j, ok := col[pipeline.WeekdayCode(r.Weekday)]; ok {
			X.Set(i, j, 1)
		}
		y.SetVec(i, r.SalesQty)
	}

	return olsFit(m.Name(), series[0].ProductID, X, y, terms)
}

// olsFit solves the least squares system and derives per-coefficient
// standard errors, t statistics and two-sided p-values.
func olsFit(modelName string, productID int64, X *mat.Dense, y *mat.VecDense, terms []string) (*ProductFit, error) {
	n, k := X.Dims()

	var beta mat.VecDense
	if err := beta.SolveVec(X, y); err != nil {
		return nil, fmt.Errorf("singular design matrix: %w", err)
	}

	var predicted mat.VecDense
	predicted.MulVec(X, &beta)

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	var rss float64
	for i := 0; i < n; i++ {
		fitted[i] = predicted.AtVec(i)
		residuals[i] = y.AtVec(i) - fitted[i]
		rss += residuals[i] * residuals[i]
	}

	// A saturated fit leaves no residual degrees of freedom; the
	// estimates stand but their errors are undefined.
	dof := n - k
	sigma2 := math.NaN()
	if dof > 0 {
		sigma2 = rss / float64(dof)
	}

	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("singular design matrix: %w", err)
	}

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	coefs := make([]Coefficient, k)
	for j := 0; j < k; j++ {
		est := beta.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		var tval, pval float64
		switch {
		case math.IsNaN(se):
			tval, pval = math.NaN(), math.NaN()
		case se > 0:
			tval = est / se
			pval = 2 * tdist.CDF(-math.Abs(tval))
		case est == 0:
			tval, pval = 0, 1
		default:
			tval = math.Inf(1)
			if est < 0 {
				tval = math.Inf(-1)
			}
			pval = 0
		}
		coefs[j] = Coefficient{Term: terms[j], Estimate: est, StdErr: se, TValue: tval, PValue: pval}
	}

	return &ProductFit{
		ProductID:    productID,
		Model:        modelName,
		Coefficients: coefs,
		Fitted:       fitted,
		Residuals:    residuals,
	}, nil
}
