// Package services provides the estimate calculation, formatting and
// document generation layer.
package services

import (
	"builddesk-estimates/internal/models"
)

// EstimateTotals holds the derived amounts for an estimate's summary
// block. ComputedTotal is the internally derived grand total; the
// rendered document prints the caller-supplied Estimate.TotalAmount
// instead and never reconciles the two.
type EstimateTotals struct {
	Subtotal       float64
	MarkupAmount   float64
	DiscountAmount float64
	TaxAmount      float64
	ComputedTotal  float64
}

// CalculateEstimateTotals derives the summary amounts from the line
// items and the percentage parameters. Tax is charged on the marked-up,
// discounted amount; that ordering is a business rule and must not
// change. No rounding happens here, only at display time.
func CalculateEstimateTotals(items []models.EstimateLineItem, markupPercentage, taxPercentage, discountAmount *float64) EstimateTotals {
	var totals EstimateTotals

	for i := range items {
		totals.Subtotal += items[i].EffectiveTotal()
	}

	if markupPercentage != nil {
		totals.MarkupAmount = totals.Subtotal * *markupPercentage / 100
	}
	if discountAmount != nil {
		totals.DiscountAmount = *discountAmount
	}

	taxBase := totals.Subtotal + totals.MarkupAmount - totals.DiscountAmount
	if taxPercentage != nil {
		totals.TaxAmount = taxBase * *taxPercentage / 100
	}

	totals.ComputedTotal = taxBase + totals.TaxAmount
	return totals
}
