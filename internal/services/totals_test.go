package services

import (
	"math"
	"testing"

	"builddesk-estimates/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateEstimateTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.EstimateLineItem
		markup   *float64
		tax      *float64
		discount *float64
		want     EstimateTotals
	}{
		{
			name: "subtotal only",
			items: []models.EstimateLineItem{
				{Quantity: 2, UnitCost: 100},
				{Quantity: 3, UnitCost: 50},
			},
			want: EstimateTotals{Subtotal: 350, ComputedTotal: 350},
		},
		{
			name: "stored total overrides quantity times unit cost",
			items: []models.EstimateLineItem{
				{Quantity: 2, UnitCost: 100, TotalCost: floatPtr(150)},
				{Quantity: 1, UnitCost: 50},
			},
			want: EstimateTotals{Subtotal: 200, ComputedTotal: 200},
		},
		{
			name: "tax applies after markup and discount",
			items: []models.EstimateLineItem{
				{Quantity: 1, UnitCost: 1000},
			},
			markup:   floatPtr(10),
			tax:      floatPtr(8),
			discount: floatPtr(100),
			want: EstimateTotals{
				Subtotal:       1000,
				MarkupAmount:   100,
				DiscountAmount: 100,
				TaxAmount:      80,
				ComputedTotal:  1080,
			},
		},
		{
			name: "markup without tax",
			items: []models.EstimateLineItem{
				{Quantity: 4, UnitCost: 25},
			},
			markup: floatPtr(15),
			want: EstimateTotals{
				Subtotal:      100,
				MarkupAmount:  15,
				ComputedTotal: 115,
			},
		},
		{
			name: "discount exceeding subtotal goes negative",
			items: []models.EstimateLineItem{
				{Quantity: 1, UnitCost: 50},
			},
			discount: floatPtr(80),
			want: EstimateTotals{
				Subtotal:       50,
				DiscountAmount: 80,
				ComputedTotal:  -30,
			},
		},
		{
			name: "no items",
			want: EstimateTotals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEstimateTotals(tt.items, tt.markup, tt.tax, tt.discount)
			if !almostEqual(got.Subtotal, tt.want.Subtotal) {
				t.Errorf("Subtotal = %v, want %v", got.Subtotal, tt.want.Subtotal)
			}
			if !almostEqual(got.MarkupAmount, tt.want.MarkupAmount) {
				t.Errorf("MarkupAmount = %v, want %v", got.MarkupAmount, tt.want.MarkupAmount)
			}
			if !almostEqual(got.DiscountAmount, tt.want.DiscountAmount) {
				t.Errorf("DiscountAmount = %v, want %v", got.DiscountAmount, tt.want.DiscountAmount)
			}
			if !almostEqual(got.TaxAmount, tt.want.TaxAmount) {
				t.Errorf("TaxAmount = %v, want %v", got.TaxAmount, tt.want.TaxAmount)
			}
			if !almostEqual(got.ComputedTotal, tt.want.ComputedTotal) {
				t.Errorf("ComputedTotal = %v, want %v", got.ComputedTotal, tt.want.ComputedTotal)
			}
		})
	}
}

// The document prints the stored TotalAmount even when it disagrees
// with the computed total. The calculation layer must not reconcile.
func TestComputedTotalIndependentOfStoredAmount(t *testing.T) {
	estimate := models.Estimate{
		TotalAmount: 9999,
		LineItems: []models.EstimateLineItem{
			{Quantity: 1, UnitCost: 100},
		},
	}

	totals := CalculateEstimateTotals(estimate.LineItems, nil, nil, nil)
	if totals.ComputedTotal != 100 {
		t.Errorf("ComputedTotal = %v, want 100", totals.ComputedTotal)
	}
	if estimate.TotalAmount != 9999 {
		t.Errorf("TotalAmount mutated to %v", estimate.TotalAmount)
	}
}
