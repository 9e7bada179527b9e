//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cube

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	c := New(4, 10, 92)

	if c.Stores != 4 || c.Products != 10 || c.Days != 92 {
		t.Errorf("Expected shape 4x10x92, got %dx%dx%d", c.Stores, c.Products, c.Days)
	}
	if c.Len() != 4*10*92 {
		t.Errorf("Expected %d cells, got %d", 4*10*92, c.Len())
	}
	if len(c.Dates) != 92 {
		t.Errorf("Expected 92 dates, got %d", len(c.Dates))
	}
	if len(c.Sales) != c.Len() {
		t.Errorf("Expected %d sales values, got %d", c.Len(), len(c.Sales))
	}
	if len(c.Fitted) != c.Len() {
		t.Errorf("Expected %d fitted values, got %d", c.Len(), len(c.Fitted))
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected new cube to validate, got %v", err)
	}
}

func TestCellAccess(t *testing.T) {
	c := New(2, 3, 4)

	// Distinct values per cell so layout mistakes show up.
	for s := 0; s < 2; s++ {
		for p := 0; p < 3; p++ {
			for d := 0; d < 4; d++ {
				c.SetSale(s, p, d, int64(100*s+10*p+d))
				c.SetFitted(s, p, d, float64(100*s+10*p+d)+0.5)
			}
		}
	}

	if got := c.SaleAt(1, 2, 3); got != 123 {
		t.Errorf("Expected sale 123 at (1,2,3), got %d", got)
	}
	if got := c.FittedAt(0, 1, 2); got != 12.5 {
		t.Errorf("Expected fitted 12.5 at (0,1,2), got %v", got)
	}

	// Row-major with day fastest: (s,p,d) lands at (s*P+p)*D+d.
	if got := c.Sales[(1*3+2)*4+3]; got != 123 {
		t.Errorf("Expected flat index to hold 123, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Cube)
		wantError bool
		wantArray string
	}{
		{
			name:      "valid cube",
			mutate:    func(c *Cube) {},
			wantError: false,
		},
		{
			name:      "short dates",
			mutate:    func(c *Cube) { c.Dates = c.Dates[:2] },
			wantError: true,
			wantArray: DatesArray,
		},
		{
			name:      "short sales",
			mutate:    func(c *Cube) { c.Sales = c.Sales[:5] },
			wantError: true,
			wantArray: SalesArray,
		},
		{
			name:      "long fitted",
			mutate:    func(c *Cube) { c.Fitted = append(c.Fitted, 1.0) },
			wantError: true,
			wantArray: FittedArray,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(2, 3, 4)
			tt.mutate(c)
			err := c.Validate()
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
					return
				}
				var shapeErr *ShapeError
				if !errors.As(err, &shapeErr) {
					t.Errorf("Expected ShapeError, got %T: %v", err, err)
					return
				}
				if shapeErr.Array != tt.wantArray {
					t.Errorf("Expected error for array '%s', got '%s'", tt.wantArray, shapeErr.Array)
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestShapeErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *ShapeError
		want string
	}{
		{
			name: "flat count",
			err:  &ShapeError{Array: SalesArray, Got: []int{5}, Want: []int{2, 3, 4}},
			want: "array synth_sales_data has 5 elements, want shape 2x3x4",
		},
		{
			name: "wrong rank",
			err:  &ShapeError{Array: SalesArray, Got: []int{6, 4}, Want: make([]int, 3)},
			want: "array synth_sales_data has 2 dimensions, want 3",
		},
		{
			name: "mismatched shape",
			err:  &ShapeError{Array: FittedArray, Got: []int{2, 3, 5}, Want: []int{2, 3, 4}},
			want: "array fitted_line has shape 2x3x5, want 2x3x4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected message '%s', got '%s'", tt.want, got)
			}
		})
	}
}
