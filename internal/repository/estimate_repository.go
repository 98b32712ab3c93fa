package repository

import (
	"fmt"
	"log"
	"strings"
	"time"

	"builddesk-estimates/internal/models"

	"gorm.io/gorm"
)

type EstimateRepository struct {
	db           *Database
	numberPrefix string
}

func NewEstimateRepository(db *Database, numberPrefix string) *EstimateRepository {
	if numberPrefix == "" {
		numberPrefix = "EST-"
	}
	return &EstimateRepository{db: db, numberPrefix: numberPrefix}
}

// GetDB returns the database instance for direct queries
func (r *EstimateRepository) GetDB() *gorm.DB {
	return r.db.DB
}

// ================================================================
// CORE ESTIMATE OPERATIONS
// ================================================================

// CreateEstimate creates a new estimate with its line items
func (r *EstimateRepository) CreateEstimate(request *models.EstimateCreateRequest) (*models.Estimate, error) {
	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	var estimate *models.Estimate
	err := r.db.DB.Transaction(func(tx *gorm.DB) error {
		estimateNumber := strings.TrimSpace(request.EstimateNumber)
		if estimateNumber == "" {
			generated, err := r.generateEstimateNumber(tx)
			if err != nil {
				return fmt.Errorf("failed to generate estimate number: %v", err)
			}
			estimateNumber = generated
		}

		estimate = &models.Estimate{
			EstimateNumber:     estimateNumber,
			ProjectID:          request.ProjectID,
			Title:              request.Title,
			Description:        request.Description,
			Status:             models.EstimateStatusDraft,
			EstimateDate:       request.EstimateDate,
			ValidUntil:         request.ValidUntil,
			ClientName:         request.ClientName,
			ClientEmail:        request.ClientEmail,
			ClientPhone:        request.ClientPhone,
			SiteAddress:        request.SiteAddress,
			MarkupPercentage:   request.MarkupPercentage,
			TaxPercentage:      request.TaxPercentage,
			DiscountAmount:     request.DiscountAmount,
			Notes:              request.Notes,
			TermsAndConditions: request.TermsAndConditions,
			CreatedAt:          time.Now(),
			UpdatedAt:          time.Now(),
		}

		for i, itemRequest := range request.LineItems {
			lineItem := models.EstimateLineItem{
				ItemName:      itemRequest.ItemName,
				Description:   itemRequest.Description,
				Quantity:      itemRequest.Quantity,
				Unit:          itemRequest.Unit,
				UnitCost:      itemRequest.UnitCost,
				TotalCost:     itemRequest.TotalCost,
				Category:      itemRequest.Category,
				LaborCost:     itemRequest.LaborCost,
				MaterialCost:  itemRequest.MaterialCost,
				EquipmentCost: itemRequest.EquipmentCost,
				SortOrder:     func() *uint { order := uint(i); return &order }(),
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
			estimate.LineItems = append(estimate.LineItems, lineItem)
		}

		estimate.CalculateTotals()

		if err := tx.Create(estimate).Error; err != nil {
			return fmt.Errorf("failed to create estimate: %v", err)
		}

		// LineItems is not a gorm relation, items are persisted explicitly
		for i := range estimate.LineItems {
			estimate.LineItems[i].EstimateID = estimate.EstimateID
			if err := tx.Create(&estimate.LineItems[i]).Error; err != nil {
				return fmt.Errorf("failed to create line item %d: %v", i+1, err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	loaded, err := r.GetEstimateByID(estimate.EstimateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created estimate: %v", err)
	}

	log.Printf("Successfully created estimate %s with ID %d, %d line items",
		loaded.EstimateNumber, loaded.EstimateID, len(loaded.LineItems))
	return loaded, nil
}

// GetEstimateByID retrieves an estimate by ID with line items and project name
func (r *EstimateRepository) GetEstimateByID(id uint64) (*models.Estimate, error) {
	var estimate models.Estimate

	if err := r.db.DB.First(&estimate, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("estimate with ID %d not found", id)
		}
		return nil, fmt.Errorf("failed to get estimate: %v", err)
	}

	if err := r.loadRelations(&estimate); err != nil {
		return nil, err
	}

	return &estimate, nil
}

// GetEstimateByNumber retrieves an estimate by its document number
func (r *EstimateRepository) GetEstimateByNumber(estimateNumber string) (*models.Estimate, error) {
	var estimate models.Estimate

	if err := r.db.DB.
		Where("estimate_number = ?", estimateNumber).
		First(&estimate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("estimate %s not found", estimateNumber)
		}
		return nil, fmt.Errorf("failed to get estimate: %v", err)
	}

	if err := r.loadRelations(&estimate); err != nil {
		return nil, err
	}

	return &estimate, nil
}

// loadRelations populates line items and the related project
func (r *EstimateRepository) loadRelations(estimate *models.Estimate) error {
	var lineItems []models.EstimateLineItem
	if err := r.db.DB.
		Where("estimate_id = ?", estimate.EstimateID).
		Order("sort_order ASC, line_item_id ASC").
		Find(&lineItems).Error; err != nil {
		return fmt.Errorf("failed to load line items: %v", err)
	}
	estimate.LineItems = lineItems

	if estimate.ProjectID != nil {
		var project models.Project
		if err := r.db.DB.First(&project, *estimate.ProjectID).Error; err == nil {
			estimate.Project = &project
			estimate.ProjectName = &project.Name
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to load project: %v", err)
		}
	}

	return nil
}

// UpdateEstimate replaces an estimate's fields and line items
func (r *EstimateRepository) UpdateEstimate(id uint64, request *models.EstimateCreateRequest) (*models.Estimate, error) {
	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	err := r.db.DB.Transaction(func(tx *gorm.DB) error {
		var estimate models.Estimate
		if err := tx.First(&estimate, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("estimate with ID %d not found", id)
			}
			return fmt.Errorf("failed to get estimate: %v", err)
		}

		estimate.ProjectID = request.ProjectID
		estimate.Title = request.Title
		estimate.Description = request.Description
		estimate.EstimateDate = request.EstimateDate
		estimate.ValidUntil = request.ValidUntil
		estimate.ClientName = request.ClientName
		estimate.ClientEmail = request.ClientEmail
		estimate.ClientPhone = request.ClientPhone
		estimate.SiteAddress = request.SiteAddress
		estimate.MarkupPercentage = request.MarkupPercentage
		estimate.TaxPercentage = request.TaxPercentage
		estimate.DiscountAmount = request.DiscountAmount
		estimate.Notes = request.Notes
		estimate.TermsAndConditions = request.TermsAndConditions
		estimate.UpdatedAt = time.Now()

		// Line items are replaced wholesale on update
		if err := tx.Where("estimate_id = ?", id).Delete(&models.EstimateLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to remove old line items: %v", err)
		}

		estimate.LineItems = nil
		for i, itemRequest := range request.LineItems {
			lineItem := models.EstimateLineItem{
				EstimateID:    id,
				ItemName:      itemRequest.ItemName,
				Description:   itemRequest.Description,
				Quantity:      itemRequest.Quantity,
				Unit:          itemRequest.Unit,
				UnitCost:      itemRequest.UnitCost,
				TotalCost:     itemRequest.TotalCost,
				Category:      itemRequest.Category,
				LaborCost:     itemRequest.LaborCost,
				MaterialCost:  itemRequest.MaterialCost,
				EquipmentCost: itemRequest.EquipmentCost,
				SortOrder:     func() *uint { order := uint(i); return &order }(),
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
			if err := tx.Create(&lineItem).Error; err != nil {
				return fmt.Errorf("failed to create line item %d: %v", i+1, err)
			}
			estimate.LineItems = append(estimate.LineItems, lineItem)
		}

		estimate.CalculateTotals()

		if err := tx.Omit("LineItems").Save(&estimate).Error; err != nil {
			return fmt.Errorf("failed to update estimate: %v", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	updated, err := r.GetEstimateByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated estimate: %v", err)
	}

	log.Printf("Successfully updated estimate %s (ID %d)", updated.EstimateNumber, updated.EstimateID)
	return updated, nil
}

// UpdateEstimateStatus transitions an estimate to a new status
func (r *EstimateRepository) UpdateEstimateStatus(id uint64, status string) error {
	validStatuses := []string{
		models.EstimateStatusDraft,
		models.EstimateStatusSent,
		models.EstimateStatusViewed,
		models.EstimateStatusAccepted,
		models.EstimateStatusRejected,
		models.EstimateStatusExpired,
	}
	isValid := false
	for _, validStatus := range validStatuses {
		if status == validStatus {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid status: %s", status)
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	if status == models.EstimateStatusSent {
		now := time.Now()
		updates["sent_at"] = &now
	}

	result := r.db.DB.Model(&models.Estimate{}).
		Where("estimate_id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update estimate status: %v", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("estimate with ID %d not found", id)
	}

	log.Printf("Successfully updated estimate %d status to %s", id, status)
	return nil
}

// DeleteEstimate removes an estimate and its line items
func (r *EstimateRepository) DeleteEstimate(id uint64) error {
	err := r.db.DB.Transaction(func(tx *gorm.DB) error {
		var estimate models.Estimate
		if err := tx.First(&estimate, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("estimate with ID %d not found", id)
			}
			return fmt.Errorf("failed to get estimate: %v", err)
		}

		if err := tx.Where("estimate_id = ?", id).Delete(&models.EstimateLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items: %v", err)
		}

		if err := tx.Delete(&models.Estimate{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete estimate: %v", err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	log.Printf("Successfully deleted estimate %d", id)
	return nil
}

// ================================================================
// ESTIMATE NUMBER GENERATION
// ================================================================

// generateEstimateNumber generates a unique estimate number
func (r *EstimateRepository) generateEstimateNumber(tx *gorm.DB) (string, error) {
	prefix := r.numberPrefix
	year := time.Now().Format("2006")

	// Find the highest existing sequence for this prefix and year
	var maxNumber int
	pattern := prefix + year + "%"

	err := tx.Raw(`
		SELECT COALESCE(MAX(
			CAST(
				SUBSTRING(estimate_number FROM ? FOR 4) AS UNSIGNED
			)
		), 0) as max_num
		FROM estimates
		WHERE estimate_number LIKE ?
	`, len(prefix)+len(year)+1, pattern).Scan(&maxNumber).Error

	if err != nil {
		// Fallback: use timestamp-based number
		maxNumber = int(time.Now().Unix()) % 10000
		log.Printf("Warning: Could not get max estimate number, using fallback: %d", maxNumber)
	}

	nextNumber := maxNumber + 1
	estimateNumber := fmt.Sprintf("%s%s%04d", prefix, year, nextNumber)

	// Ensure uniqueness
	var count int64
	for i := 0; i < 10; i++ {
		err = tx.Model(&models.Estimate{}).Where("estimate_number = ?", estimateNumber).Count(&count).Error
		if err != nil {
			return "", fmt.Errorf("failed to check estimate number uniqueness: %v", err)
		}
		if count == 0 {
			break
		}
		nextNumber++
		estimateNumber = fmt.Sprintf("%s%s%04d", prefix, year, nextNumber)
	}

	if count > 0 {
		return "", fmt.Errorf("failed to generate unique estimate number after 10 attempts")
	}

	return estimateNumber, nil
}

// GeneratePreviewEstimateNumber generates the number shown on the create form
func (r *EstimateRepository) GeneratePreviewEstimateNumber() (string, error) {
	prefix := r.numberPrefix
	year := time.Now().Format("2006")

	var maxNumber int
	pattern := prefix + year + "%"

	err := r.db.DB.Raw(`
		SELECT COALESCE(MAX(
			CAST(
				SUBSTRING(estimate_number FROM ? FOR 4) AS UNSIGNED
			)
		), 0) as max_num
		FROM estimates
		WHERE estimate_number LIKE ?
	`, len(prefix)+len(year)+1, pattern).Scan(&maxNumber).Error

	if err != nil {
		maxNumber = 0
		log.Printf("Warning: Could not get max estimate number for preview, using fallback")
	}

	return fmt.Sprintf("%s%s%04d", prefix, year, maxNumber+1), nil
}

// ================================================================
// LIST AND FILTER OPERATIONS
// ================================================================

// GetEstimates returns a paginated list of estimates with filters
func (r *EstimateRepository) GetEstimates(filter *models.EstimateFilter) ([]models.Estimate, int64, error) {
	var estimates []models.Estimate
	var totalCount int64

	query := r.db.DB.Model(&models.Estimate{})

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.ProjectID != nil {
			query = query.Where("project_id = ?", *filter.ProjectID)
		}
		if filter.StartDate != nil {
			query = query.Where("estimate_date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			query = query.Where("estimate_date <= ?", *filter.EndDate)
		}
		if filter.MinAmount != nil {
			query = query.Where("total_amount >= ?", *filter.MinAmount)
		}
		if filter.MaxAmount != nil {
			query = query.Where("total_amount <= ?", *filter.MaxAmount)
		}
		if filter.SearchTerm != "" {
			searchTerm := "%" + filter.SearchTerm + "%"
			query = query.Where("estimate_number LIKE ? OR title LIKE ? OR client_name LIKE ?",
				searchTerm, searchTerm, searchTerm)
		}
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count estimates: %v", err)
	}

	if filter != nil {
		if filter.PageSize > 0 {
			query = query.Limit(filter.PageSize)
		}
		if filter.Page > 0 {
			offset := (filter.Page - 1) * filter.PageSize
			query = query.Offset(offset)
		}
	}

	query = query.Order("estimate_date DESC, created_at DESC")

	if err := query.Find(&estimates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get estimates: %v", err)
	}

	// Resolve project names for the list view without loading full items
	for i := range estimates {
		if estimates[i].ProjectID == nil {
			continue
		}
		var name string
		if err := r.db.DB.Model(&models.Project{}).
			Where("project_id = ?", *estimates[i].ProjectID).
			Pluck("name", &name).Error; err == nil && name != "" {
			estimates[i].ProjectName = &name
		}
	}

	return estimates, totalCount, nil
}

// MarkExpiredEstimates flips past-validity sent/viewed estimates to expired
func (r *EstimateRepository) MarkExpiredEstimates() (int64, error) {
	result := r.db.DB.Model(&models.Estimate{}).
		Where("valid_until IS NOT NULL AND valid_until < ?", time.Now()).
		Where("status IN ?", []string{models.EstimateStatusSent, models.EstimateStatusViewed}).
		Updates(map[string]interface{}{
			"status":     models.EstimateStatusExpired,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire estimates: %v", result.Error)
	}

	return result.RowsAffected, nil
}

// ================================================================
// COMPANY INFO
// ================================================================

// GetCompanyInfo returns the stored company identity, or the built-in
// default when none is configured
func (r *EstimateRepository) GetCompanyInfo() (*models.CompanyInfo, error) {
	var info models.CompanyInfo

	if err := r.db.DB.First(&info).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.DefaultCompanyInfo(), nil
		}
		return nil, fmt.Errorf("failed to get company info: %v", err)
	}

	return &info, nil
}

// UpdateCompanyInfo creates or updates the company identity record
func (r *EstimateRepository) UpdateCompanyInfo(info *models.CompanyInfo) error {
	var existing models.CompanyInfo
	err := r.db.DB.First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		info.CreatedAt = time.Now()
		info.UpdatedAt = time.Now()
		if err := r.db.DB.Create(info).Error; err != nil {
			return fmt.Errorf("failed to create company info: %v", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get company info: %v", err)
	}

	info.ID = existing.ID
	info.CreatedAt = existing.CreatedAt
	info.UpdatedAt = time.Now()
	if err := r.db.DB.Save(info).Error; err != nil {
		return fmt.Errorf("failed to update company info: %v", err)
	}

	return nil
}

// GetEstimateStats returns counts and sums grouped by status
func (r *EstimateRepository) GetEstimateStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int64
	if err := r.db.DB.Model(&models.Estimate{}).Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count estimates: %v", err)
	}
	stats["total_count"] = totalCount

	type statusRow struct {
		Status string
		Count  int64
		Total  float64
	}
	var rows []statusRow
	if err := r.db.DB.Model(&models.Estimate{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get estimate stats: %v", err)
	}

	byStatus := make(map[string]interface{})
	for _, row := range rows {
		byStatus[row.Status] = map[string]interface{}{
			"count": row.Count,
			"total": row.Total,
		}
	}
	stats["by_status"] = byStatus

	return stats, nil
}
