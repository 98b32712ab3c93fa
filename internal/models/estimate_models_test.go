package models

import (
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func TestEffectiveTotal(t *testing.T) {
	tests := []struct {
		name string
		item EstimateLineItem
		want float64
	}{
		{"derived from quantity and unit cost", EstimateLineItem{Quantity: 4, UnitCost: 12.5}, 50},
		{"stored total wins", EstimateLineItem{Quantity: 4, UnitCost: 12.5, TotalCost: floatPtr(45)}, 45},
		{"stored zero total wins", EstimateLineItem{Quantity: 4, UnitCost: 12.5, TotalCost: floatPtr(0)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.EffectiveTotal(); got != tt.want {
				t.Errorf("EffectiveTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateCalculateTotals(t *testing.T) {
	estimate := Estimate{
		MarkupPercentage: floatPtr(10),
		TaxPercentage:    floatPtr(8),
		DiscountAmount:   floatPtr(100),
		LineItems: []EstimateLineItem{
			{Quantity: 1, UnitCost: 1000},
		},
	}

	estimate.CalculateTotals()

	// 1000 + 10% markup = 1100, minus 100 discount = 1000, plus 8% tax = 1080
	if estimate.TotalAmount != 1080 {
		t.Errorf("TotalAmount = %v, want 1080", estimate.TotalAmount)
	}
}

func TestIsExpired(t *testing.T) {
	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 0, 30)

	tests := []struct {
		name     string
		estimate Estimate
		want     bool
	}{
		{"no validity date never expires", Estimate{}, false},
		{"future date not expired", Estimate{ValidUntil: &future}, false},
		{"past date expired", Estimate{ValidUntil: &past}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.estimate.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateCreateRequestValidate(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := date.AddDate(0, 0, -10)
	validItem := EstimateLineItemCreateRequest{ItemName: "Framing", Quantity: 1, UnitCost: 100}

	tests := []struct {
		name    string
		request EstimateCreateRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: EstimateCreateRequest{Title: "Remodel", EstimateDate: date, LineItems: []EstimateLineItemCreateRequest{validItem}},
			wantErr: false,
		},
		{
			name:    "missing title",
			request: EstimateCreateRequest{Title: "  ", EstimateDate: date, LineItems: []EstimateLineItemCreateRequest{validItem}},
			wantErr: true,
		},
		{
			name:    "missing date",
			request: EstimateCreateRequest{Title: "Remodel", LineItems: []EstimateLineItemCreateRequest{validItem}},
			wantErr: true,
		},
		{
			name:    "valid until before estimate date",
			request: EstimateCreateRequest{Title: "Remodel", EstimateDate: date, ValidUntil: &earlier, LineItems: []EstimateLineItemCreateRequest{validItem}},
			wantErr: true,
		},
		{
			name:    "no line items",
			request: EstimateCreateRequest{Title: "Remodel", EstimateDate: date},
			wantErr: true,
		},
		{
			name: "zero quantity line item",
			request: EstimateCreateRequest{Title: "Remodel", EstimateDate: date, LineItems: []EstimateLineItemCreateRequest{
				{ItemName: "Framing", Quantity: 0, UnitCost: 100},
			}},
			wantErr: true,
		},
		{
			name: "negative unit cost",
			request: EstimateCreateRequest{Title: "Remodel", EstimateDate: date, LineItems: []EstimateLineItemCreateRequest{
				{ItemName: "Framing", Quantity: 1, UnitCost: -5},
			}},
			wantErr: true,
		},
		{
			name: "negative stored total",
			request: EstimateCreateRequest{Title: "Remodel", EstimateDate: date, LineItems: []EstimateLineItemCreateRequest{
				{ItemName: "Framing", Quantity: 1, UnitCost: 100, TotalCost: floatPtr(-1)},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCompanyInfo(t *testing.T) {
	company := DefaultCompanyInfo()
	if company.Name != "BuildDesk" {
		t.Errorf("Name = %q, want BuildDesk", company.Name)
	}
	if company.Address == nil || company.Email == nil || company.Phone == nil || company.Website == nil {
		t.Error("default company info should fill address, phone, email and website")
	}
}
