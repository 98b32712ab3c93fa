package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"builddesk-estimates/internal/config"
	"builddesk-estimates/internal/logger"
	"builddesk-estimates/internal/models"
	"builddesk-estimates/internal/repository"
	"builddesk-estimates/internal/services"

	"github.com/gin-gonic/gin"
)

type EstimateHandler struct {
	estimateRepo   *repository.EstimateRepository
	projectRepo    *repository.ProjectRepository
	pdfService     *services.EstimatePDFService
	emailService   *services.EmailService
	barcodeService *services.BarcodeService
	config         *config.Config
}

func NewEstimateHandler(
	estimateRepo *repository.EstimateRepository,
	projectRepo *repository.ProjectRepository,
	cfg *config.Config,
) *EstimateHandler {
	return &EstimateHandler{
		estimateRepo:   estimateRepo,
		projectRepo:    projectRepo,
		pdfService:     services.NewEstimatePDFService(),
		emailService:   services.NewEmailService(&cfg.Email),
		barcodeService: services.NewBarcodeService(),
		config:         cfg,
	}
}

// CreateEstimate creates a new estimate
func (h *EstimateHandler) CreateEstimate(c *gin.Context) {
	user, exists := GetCurrentUser(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var request models.EstimateCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("CreateEstimate: Validation error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	h.applyEstimateDefaults(&request)

	if err := request.Validate(); err != nil {
		log.Printf("CreateEstimate: Business validation error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": err.Error(),
		})
		return
	}

	if request.ProjectID != nil {
		if _, err := h.projectRepo.GetByID(*request.ProjectID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project not found"})
			return
		}
	}

	estimate, err := h.estimateRepo.CreateEstimate(&request)
	if err != nil {
		log.Printf("CreateEstimate: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create estimate",
			"details": err.Error(),
		})
		return
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogDocumentEvent("Estimate created", estimate.EstimateNumber, "create",
			map[string]interface{}{"user": user.Username, "total": estimate.TotalAmount})
	}

	c.JSON(http.StatusCreated, estimate)
}

// GetEstimates returns a paginated estimate list with filters
func (h *EstimateHandler) GetEstimates(c *gin.Context) {
	var filter models.EstimateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter parameters"})
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	estimates, totalCount, err := h.estimateRepo.GetEstimates(&filter)
	if err != nil {
		log.Printf("GetEstimates: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get estimates"})
		return
	}

	responses := make([]models.EstimateResponse, 0, len(estimates))
	for i := range estimates {
		responses = append(responses, models.EstimateResponse{
			Estimate:  estimates[i],
			LineItems: estimates[i].LineItems,
		})
	}

	totalPages := int((totalCount + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	c.JSON(http.StatusOK, models.EstimateListResponse{
		Estimates:  responses,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	})
}

// GetEstimate returns a single estimate with its line items
func (h *EstimateHandler) GetEstimate(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByID(estimateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
		return
	}

	c.JSON(http.StatusOK, models.EstimateResponse{
		Estimate:  *estimate,
		Project:   estimate.Project,
		LineItems: estimate.LineItems,
	})
}

// UpdateEstimate replaces an estimate's fields and line items
func (h *EstimateHandler) UpdateEstimate(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	var request models.EstimateCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	h.applyEstimateDefaults(&request)

	estimate, err := h.estimateRepo.UpdateEstimate(estimateID, &request)
	if err != nil {
		log.Printf("UpdateEstimate: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update estimate",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, estimate)
}

// DeleteEstimate removes an estimate and its line items
func (h *EstimateHandler) DeleteEstimate(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	if err := h.estimateRepo.DeleteEstimate(estimateID); err != nil {
		log.Printf("DeleteEstimate: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete estimate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Estimate deleted"})
}

// UpdateEstimateStatus transitions an estimate to a new status
func (h *EstimateHandler) UpdateEstimateStatus(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	var statusData struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&statusData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	if err := h.estimateRepo.UpdateEstimateStatus(estimateID, statusData.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "status": statusData.Status})
}

// GenerateEstimatePDF renders the estimate document and streams it as
// a PDF download
func (h *EstimateHandler) GenerateEstimatePDF(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByID(estimateID)
	if err != nil {
		log.Printf("GenerateEstimatePDF: Error fetching estimate: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
		return
	}

	company := h.companyInfo()

	pdfBytes, err := h.pdfService.GenerateEstimatePDF(estimate, company)
	if err != nil {
		log.Printf("GenerateEstimatePDF: Error generating PDF: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to generate PDF",
			"details": err.Error(),
		})
		return
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogDocumentEvent("Estimate PDF rendered", estimate.EstimateNumber, "pdf",
			map[string]interface{}{"bytes": len(pdfBytes)})
	}

	filename := services.EstimateFilename(estimate)
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Length", strconv.Itoa(len(pdfBytes)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// SendEstimate emails the estimate PDF to the client and marks the
// estimate as sent
func (h *EstimateHandler) SendEstimate(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByID(estimateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
		return
	}

	if estimate.ClientEmail == nil || *estimate.ClientEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estimate has no client email address"})
		return
	}

	company := h.companyInfo()

	pdfBytes, err := h.pdfService.GenerateEstimatePDF(estimate, company)
	if err != nil {
		log.Printf("SendEstimate: Error generating PDF: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	emailData := &services.EstimateEmailData{
		Estimate:    estimate,
		Company:     company,
		EstimateURL: fmt.Sprintf("%s/estimates/%d", h.config.Server.BaseURL, estimate.EstimateID),
	}

	if err := h.emailService.SendEstimateEmail(emailData, pdfBytes); err != nil {
		log.Printf("SendEstimate: Email error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send estimate email",
			"details": err.Error(),
		})
		return
	}

	if err := h.estimateRepo.UpdateEstimateStatus(estimateID, models.EstimateStatusSent); err != nil {
		log.Printf("SendEstimate: Status update error: %v", err)
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogDocumentEvent("Estimate emailed", estimate.EstimateNumber, "send",
			map[string]interface{}{"to": *estimate.ClientEmail})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Estimate sent",
		"sentTo":  *estimate.ClientEmail,
		"sentAt":  time.Now(),
	})
}

// GetEstimateSummary returns the computed totals breakdown and line
// items grouped by category, matching the printed document
func (h *EstimateHandler) GetEstimateSummary(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByID(estimateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
		return
	}

	totals := services.CalculateEstimateTotals(
		estimate.LineItems,
		estimate.MarkupPercentage,
		estimate.TaxPercentage,
		estimate.DiscountAmount,
	)

	groups := groupLineItems(estimate.LineItems)

	c.JSON(http.StatusOK, gin.H{
		"estimateNumber": estimate.EstimateNumber,
		"totals":         totals,
		"totalAmount":    estimate.TotalAmount,
		"groups":         groups,
	})
}

// groupLineItems groups items by category in first-seen order, with
// uncategorized items under General
func groupLineItems(items []models.EstimateLineItem) []CategoryGroup {
	hasCategory := false
	for i := range items {
		if items[i].Category != nil && *items[i].Category != "" {
			hasCategory = true
			break
		}
	}
	if !hasCategory {
		subtotal := 0.0
		for i := range items {
			subtotal += items[i].EffectiveTotal()
		}
		return []CategoryGroup{{Category: "", Items: items, Subtotal: subtotal, Count: len(items)}}
	}

	var order []string
	grouped := make(map[string][]models.EstimateLineItem)
	for i := range items {
		category := "General"
		if items[i].Category != nil && *items[i].Category != "" {
			category = *items[i].Category
		}
		if _, seen := grouped[category]; !seen {
			order = append(order, category)
		}
		grouped[category] = append(grouped[category], items[i])
	}

	groups := make([]CategoryGroup, 0, len(order))
	for _, category := range order {
		groupItems := grouped[category]
		subtotal := 0.0
		for i := range groupItems {
			subtotal += groupItems[i].EffectiveTotal()
		}
		groups = append(groups, CategoryGroup{
			Category: category,
			Items:    groupItems,
			Subtotal: subtotal,
			Count:    len(groupItems),
		})
	}
	return groups
}

// PreviewEstimateNumber returns the next estimate number for the form
func (h *EstimateHandler) PreviewEstimateNumber(c *gin.Context) {
	number, err := h.estimateRepo.GeneratePreviewEstimateNumber()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate estimate number"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimateNumber": number})
}

// GetEstimateStats returns counts and totals grouped by status
func (h *EstimateHandler) GetEstimateStats(c *gin.Context) {
	stats, err := h.estimateRepo.GetEstimateStats()
	if err != nil {
		log.Printf("GetEstimateStats: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get estimate stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetEstimateQR returns a QR code PNG encoding the estimate reference
func (h *EstimateHandler) GetEstimateQR(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByID(estimateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
		return
	}

	png, err := h.barcodeService.GenerateEstimateQR(estimate.EstimateNumber)
	if err != nil {
		log.Printf("GetEstimateQR: Error generating QR code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// GetEstimateBarcode returns a Code 128 barcode PNG for the estimate
func (h *EstimateHandler) GetEstimateBarcode(c *gin.Context) {
	estimateID, ok := h.parseEstimateID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByID(estimateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found"})
		return
	}

	png, err := h.barcodeService.GenerateEstimateBarcode(estimate.EstimateNumber)
	if err != nil {
		log.Printf("GetEstimateBarcode: Error generating barcode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate barcode"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// parseEstimateID extracts and validates the :id route parameter
func (h *EstimateHandler) parseEstimateID(c *gin.Context) (uint64, bool) {
	estimateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid estimate ID"})
		return 0, false
	}
	return estimateID, true
}

// applyEstimateDefaults fills configured default rates and validity
// when the request leaves them unset
func (h *EstimateHandler) applyEstimateDefaults(request *models.EstimateCreateRequest) {
	cfg := h.config.Estimate
	if request.MarkupPercentage == nil && cfg.DefaultMarkupRate > 0 {
		rate := cfg.DefaultMarkupRate
		request.MarkupPercentage = &rate
	}
	if request.TaxPercentage == nil && cfg.DefaultTaxRate > 0 {
		rate := cfg.DefaultTaxRate
		request.TaxPercentage = &rate
	}
	if request.ValidUntil == nil && cfg.DefaultValidityDays > 0 && !request.EstimateDate.IsZero() {
		validUntil := request.EstimateDate.AddDate(0, 0, cfg.DefaultValidityDays)
		request.ValidUntil = &validUntil
	}
}

// companyInfo returns the stored company identity with config overrides
func (h *EstimateHandler) companyInfo() *models.CompanyInfo {
	company, err := h.estimateRepo.GetCompanyInfo()
	if err != nil {
		log.Printf("Error fetching company info, using defaults: %v", err)
		company = models.DefaultCompanyInfo()
	}

	cfg := h.config.Company
	if !cfg.CompanyInfoOverrides() {
		return company
	}

	if cfg.Name != "" {
		company.Name = cfg.Name
	}
	if cfg.Address != "" {
		addr := cfg.Address
		company.Address = &addr
	}
	if cfg.Phone != "" {
		phone := cfg.Phone
		company.Phone = &phone
	}
	if cfg.Email != "" {
		email := cfg.Email
		company.Email = &email
	}
	if cfg.Website != "" {
		website := cfg.Website
		company.Website = &website
	}
	if cfg.License != "" {
		license := cfg.License
		company.License = &license
	}

	return company
}
