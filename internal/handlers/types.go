package handlers

import "builddesk-estimates/internal/models"

// CategoryGroup represents estimate line items grouped by category,
// mirroring the grouping used in the printed document
type CategoryGroup struct {
	Category string                    `json:"category"`
	Items    []models.EstimateLineItem `json:"items"`
	Subtotal float64                   `json:"subtotal"`
	Count    int                       `json:"count"`
}
