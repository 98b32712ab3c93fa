package models

import (
	"fmt"
	"strings"
	"time"
)

// Estimate statuses. Unknown values render with the draft styling.
const (
	EstimateStatusDraft    = "draft"
	EstimateStatusSent     = "sent"
	EstimateStatusViewed   = "viewed"
	EstimateStatusAccepted = "accepted"
	EstimateStatusRejected = "rejected"
	EstimateStatusExpired  = "expired"
)

// CompanyInfo represents the business identity printed on estimates
type CompanyInfo struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name" binding:"required"`
	Address   *string   `gorm:"column:address" json:"address"`
	Phone     *string   `gorm:"column:phone" json:"phone"`
	Email     *string   `gorm:"column:email" json:"email"`
	Website   *string   `gorm:"column:website" json:"website"`
	License   *string   `gorm:"column:license" json:"license"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (CompanyInfo) TableName() string {
	return "company_info"
}

// DefaultCompanyInfo returns the fixed fallback identity used when no
// company record is configured.
func DefaultCompanyInfo() *CompanyInfo {
	address := "123 Construction Way, Builder City, BC 12345"
	phone := "(555) 123-4567"
	email := "info@builddesk.com"
	website := "www.builddesk.com"

	return &CompanyInfo{
		Name:    "BuildDesk",
		Address: &address,
		Phone:   &phone,
		Email:   &email,
		Website: &website,
	}
}

// Estimate represents a cost estimate document
type Estimate struct {
	EstimateID     uint64     `gorm:"primaryKey;autoIncrement;column:estimate_id" json:"estimateId"`
	EstimateNumber string     `gorm:"uniqueIndex;not null;column:estimate_number" json:"estimateNumber" binding:"required"`
	ProjectID      *uint      `gorm:"column:project_id" json:"projectId"`
	Title          string     `gorm:"not null;column:title" json:"title" binding:"required"`
	Description    *string    `gorm:"type:text;column:description" json:"description"`
	Status         string     `gorm:"type:enum('draft','sent','viewed','accepted','rejected','expired');not null;default:'draft';column:status" json:"status"`
	EstimateDate   time.Time  `gorm:"type:date;not null;column:estimate_date" json:"estimateDate" binding:"required"`
	ValidUntil     *time.Time `gorm:"type:date;column:valid_until" json:"validUntil"`

	// Client details (free text, no format validation here)
	ClientName  *string `gorm:"column:client_name" json:"clientName"`
	ClientEmail *string `gorm:"column:client_email" json:"clientEmail"`
	ClientPhone *string `gorm:"column:client_phone" json:"clientPhone"`
	SiteAddress *string `gorm:"column:site_address" json:"siteAddress"`

	// Financial parameters
	MarkupPercentage *float64 `gorm:"type:decimal(5,2);column:markup_percentage" json:"markupPercentage"`
	TaxPercentage    *float64 `gorm:"type:decimal(5,2);column:tax_percentage" json:"taxPercentage"`
	DiscountAmount   *float64 `gorm:"type:decimal(12,2);column:discount_amount" json:"discountAmount"`
	TotalAmount      float64  `gorm:"type:decimal(12,2);not null;default:0.00;column:total_amount" json:"totalAmount"`

	// Additional information
	Notes              *string `gorm:"type:text;column:notes" json:"notes"`
	TermsAndConditions *string `gorm:"type:text;column:terms_and_conditions" json:"termsAndConditions"`

	// Tracking
	SentAt    *time.Time `gorm:"column:sent_at" json:"sentAt"`
	CreatedBy *uint      `gorm:"column:created_by" json:"createdBy"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updatedAt"`

	// Relationships disabled to prevent foreign key constraints
	Project   *Project           `gorm:"-" json:"project,omitempty"`
	LineItems []EstimateLineItem `gorm:"-" json:"lineItems,omitempty"`

	// Resolved from the related project when loading for rendering
	ProjectName *string `gorm:"-:all" json:"projectName,omitempty"`
}

func (Estimate) TableName() string {
	return "estimates"
}

// CalculateTotals recomputes TotalAmount from the line items and the
// markup/tax/discount parameters. Used on the create/update path; the
// PDF renderer never calls this and prints the stored TotalAmount
// verbatim.
func (e *Estimate) CalculateTotals() {
	var subtotal float64
	for i := range e.LineItems {
		subtotal += e.LineItems[i].EffectiveTotal()
	}

	markup := 0.0
	if e.MarkupPercentage != nil {
		markup = subtotal * *e.MarkupPercentage / 100
	}
	discount := 0.0
	if e.DiscountAmount != nil {
		discount = *e.DiscountAmount
	}
	taxBase := subtotal + markup - discount
	tax := 0.0
	if e.TaxPercentage != nil {
		tax = taxBase * *e.TaxPercentage / 100
	}

	e.TotalAmount = taxBase + tax
}

// IsExpired reports whether the estimate's validity window has passed
func (e *Estimate) IsExpired() bool {
	return e.ValidUntil != nil && time.Now().After(*e.ValidUntil)
}

// EstimateLineItem represents one row of an estimate
type EstimateLineItem struct {
	LineItemID  uint64   `gorm:"primaryKey;autoIncrement;column:line_item_id" json:"lineItemId"`
	EstimateID  uint64   `gorm:"not null;column:estimate_id" json:"estimateId"`
	ItemName    string   `gorm:"not null;column:item_name" json:"itemName" binding:"required"`
	Description string   `gorm:"type:text;column:description" json:"description"`
	Quantity    float64  `gorm:"type:decimal(10,2);not null;default:1.00;column:quantity" json:"quantity"`
	Unit        string   `gorm:"column:unit" json:"unit"`
	UnitCost    float64  `gorm:"type:decimal(12,2);not null;default:0.00;column:unit_cost" json:"unitCost"`
	TotalCost   *float64 `gorm:"type:decimal(12,2);column:total_cost" json:"totalCost"`
	Category    *string  `gorm:"column:category" json:"category"`

	// Informational cost sub-breakdown shown under the description
	LaborCost     *float64 `gorm:"type:decimal(12,2);column:labor_cost" json:"laborCost"`
	MaterialCost  *float64 `gorm:"type:decimal(12,2);column:material_cost" json:"materialCost"`
	EquipmentCost *float64 `gorm:"type:decimal(12,2);column:equipment_cost" json:"equipmentCost"`

	SortOrder *uint     `gorm:"column:sort_order" json:"sortOrder"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`

	Estimate *Estimate `gorm:"-" json:"estimate,omitempty"`
}

func (EstimateLineItem) TableName() string {
	return "estimate_line_items"
}

// EffectiveTotal returns the authoritative per-row total: the stored
// total when present, otherwise quantity times unit cost. Both the
// table and the subtotal aggregation use this value.
func (li *EstimateLineItem) EffectiveTotal() float64 {
	if li.TotalCost != nil {
		return *li.TotalCost
	}
	return li.Quantity * li.UnitCost
}

// Validate validates the line item data
func (li *EstimateLineItem) Validate() error {
	if strings.TrimSpace(li.ItemName) == "" {
		return fmt.Errorf("item name is required")
	}
	if li.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if li.UnitCost < 0 {
		return fmt.Errorf("unit cost cannot be negative")
	}
	return nil
}

// ================================================================
// DTOs and Request/Response Models
// ================================================================

// EstimateCreateRequest represents the request to create an estimate
type EstimateCreateRequest struct {
	EstimateNumber     string                          `json:"estimateNumber"`
	ProjectID          *uint                           `json:"projectId"`
	Title              string                          `json:"title" binding:"required"`
	Description        *string                         `json:"description"`
	EstimateDate       time.Time                       `json:"estimateDate" binding:"required"`
	ValidUntil         *time.Time                      `json:"validUntil"`
	ClientName         *string                         `json:"clientName"`
	ClientEmail        *string                         `json:"clientEmail"`
	ClientPhone        *string                         `json:"clientPhone"`
	SiteAddress        *string                         `json:"siteAddress"`
	MarkupPercentage   *float64                        `json:"markupPercentage" binding:"omitempty,gte=0,lte=100"`
	TaxPercentage      *float64                        `json:"taxPercentage" binding:"omitempty,gte=0,lte=100"`
	DiscountAmount     *float64                        `json:"discountAmount" binding:"omitempty,gte=0"`
	Notes              *string                         `json:"notes"`
	TermsAndConditions *string                         `json:"termsAndConditions"`
	LineItems          []EstimateLineItemCreateRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// Validate validates the estimate create request
func (ecr *EstimateCreateRequest) Validate() error {
	if strings.TrimSpace(ecr.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if ecr.EstimateDate.IsZero() {
		return fmt.Errorf("estimate date is required")
	}
	if ecr.ValidUntil != nil && ecr.ValidUntil.Before(ecr.EstimateDate) {
		return fmt.Errorf("valid until date cannot be before estimate date")
	}
	if len(ecr.LineItems) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, item := range ecr.LineItems {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("line item %d: %v", i+1, err)
		}
	}
	return nil
}

// EstimateLineItemCreateRequest represents a line item in the create request
type EstimateLineItemCreateRequest struct {
	ItemName      string   `json:"itemName" binding:"required"`
	Description   string   `json:"description"`
	Quantity      float64  `json:"quantity" binding:"required,gt=0"`
	Unit          string   `json:"unit"`
	UnitCost      float64  `json:"unitCost" binding:"gte=0"`
	TotalCost     *float64 `json:"totalCost"`
	Category      *string  `json:"category"`
	LaborCost     *float64 `json:"laborCost"`
	MaterialCost  *float64 `json:"materialCost"`
	EquipmentCost *float64 `json:"equipmentCost"`
}

// Validate validates the line item create request
func (licr *EstimateLineItemCreateRequest) Validate() error {
	if strings.TrimSpace(licr.ItemName) == "" {
		return fmt.Errorf("item name is required")
	}
	if licr.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if licr.UnitCost < 0 {
		return fmt.Errorf("unit cost cannot be negative")
	}
	if licr.TotalCost != nil && *licr.TotalCost < 0 {
		return fmt.Errorf("total cost cannot be negative")
	}
	return nil
}

// EstimateResponse represents the response when returning estimate data
type EstimateResponse struct {
	Estimate
	Project   *Project           `json:"project,omitempty"`
	LineItems []EstimateLineItem `json:"lineItems"`
}

// EstimateListResponse represents a paginated estimate list
type EstimateListResponse struct {
	Estimates  []EstimateResponse `json:"estimates"`
	TotalCount int64              `json:"totalCount"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

// EstimateFilter represents filters for listing estimates
type EstimateFilter struct {
	Status     string     `form:"status" json:"status"`
	ProjectID  *uint      `form:"project_id" json:"projectId"`
	StartDate  *time.Time `form:"start_date" json:"startDate"`
	EndDate    *time.Time `form:"end_date" json:"endDate"`
	MinAmount  *float64   `form:"min_amount" json:"minAmount"`
	MaxAmount  *float64   `form:"max_amount" json:"maxAmount"`
	SearchTerm string     `form:"search" json:"searchTerm"`
	Page       int        `form:"page" json:"page"`
	PageSize   int        `form:"page_size" json:"pageSize"`
}
