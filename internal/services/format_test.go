package services

import (
	"math"
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "$0.00"},
		{"small amount", 5.5, "$5.50"},
		{"hundreds", 999.99, "$999.99"},
		{"thousands grouped", 1234.56, "$1,234.56"},
		{"millions grouped", 1234567.89, "$1,234,567.89"},
		{"rounds to two decimals", 1234.567, "$1,234.57"},
		{"negative", -45.5, "-$45.50"},
		{"negative thousands", -12345.6, "-$12,345.60"},
		{"exact thousand", 1000, "$1,000.00"},
		{"negative rounding to zero drops the sign", -0.004, "$0.00"},
		{"negative half cent rounds away from zero", -0.005, "-$0.01"},
		{"negative zero", math.Copysign(0, -1), "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.amount); got != tt.want {
				t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		want string
	}{
		{"whole number", 3, "3"},
		{"large whole number", 150, "150"},
		{"fractional", 2.5, "2.50"},
		{"two decimals", 1.25, "1.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatQuantity(tt.qty); got != tt.want {
				t.Errorf("FormatQuantity(%v) = %q, want %q", tt.qty, got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Mar 05, 2026" {
		t.Errorf("FormatDate = %q, want %q", got, "Mar 05, 2026")
	}
}
