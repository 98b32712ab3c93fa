package handlers

import (
	"log"
	"net/http"
	"strings"

	"builddesk-estimates/internal/config"
	"builddesk-estimates/internal/models"
	"builddesk-estimates/internal/repository"
	"builddesk-estimates/internal/services"

	"github.com/gin-gonic/gin"
)

// CompanyHandler manages the company identity printed on estimates
type CompanyHandler struct {
	estimateRepo *repository.EstimateRepository
	emailService *services.EmailService
}

func NewCompanyHandler(estimateRepo *repository.EstimateRepository, cfg *config.Config) *CompanyHandler {
	return &CompanyHandler{
		estimateRepo: estimateRepo,
		emailService: services.NewEmailService(&cfg.Email),
	}
}

// GetCompanyInfo returns company info as JSON
func (h *CompanyHandler) GetCompanyInfo(c *gin.Context) {
	company, err := h.estimateRepo.GetCompanyInfo()
	if err != nil {
		log.Printf("GetCompanyInfo: Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load company info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"company": company,
	})
}

// UpdateCompanyInfo updates the company identity record
func (h *CompanyHandler) UpdateCompanyInfo(c *gin.Context) {
	user, exists := GetCurrentUser(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var request models.CompanyInfo
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("UpdateCompanyInfo: Validation error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	if strings.TrimSpace(request.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Company name is required"})
		return
	}

	request.Name = strings.TrimSpace(request.Name)
	request.Address = trimStringPointer(request.Address)
	request.Phone = trimStringPointer(request.Phone)
	request.Email = trimStringPointer(request.Email)
	request.Website = trimStringPointer(request.Website)
	request.License = trimStringPointer(request.License)

	if err := h.estimateRepo.UpdateCompanyInfo(&request); err != nil {
		log.Printf("UpdateCompanyInfo: Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save company info",
			"details": err.Error(),
		})
		return
	}

	log.Printf("Company info updated successfully by user %s", user.Username)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Company info updated successfully",
		"company": request,
	})
}

// SendTestEmail verifies the SMTP configuration
func (h *CompanyHandler) SendTestEmail(c *gin.Context) {
	var request struct {
		ToEmail string `json:"toEmail" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid recipient address is required"})
		return
	}

	if err := h.emailService.SendTestEmail(request.ToEmail); err != nil {
		log.Printf("SendTestEmail: Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send test email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test email sent", "sentTo": request.ToEmail})
}

// trimStringPointer trims a string pointer, returning nil for empties
func trimStringPointer(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
