package handlers

import (
	"log"
	"net/http"

	"builddesk-estimates/internal/repository"
	"builddesk-estimates/internal/scan"
	"builddesk-estimates/internal/services"

	"github.com/gin-gonic/gin"
)

// ScanHandler decodes uploaded images of printed estimates and
// resolves the embedded reference back to the estimate record.
type ScanHandler struct {
	decoder      *scan.ServerDecoder
	estimateRepo *repository.EstimateRepository
}

func NewScanHandler(estimateRepo *repository.EstimateRepository) *ScanHandler {
	return &ScanHandler{
		decoder:      scan.NewServerDecoder(),
		estimateRepo: estimateRepo,
	}
}

// Decode runs server-side barcode decoding on an uploaded frame
func (h *ScanHandler) Decode(c *gin.Context) {
	var request scan.DecodeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image data is required"})
		return
	}

	response := h.decoder.Decode(&request)
	c.JSON(http.StatusOK, response)
}

// Lookup decodes an uploaded frame and returns the matching estimate
func (h *ScanHandler) Lookup(c *gin.Context) {
	var request scan.DecodeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image data is required"})
		return
	}

	response := h.decoder.Decode(&request)
	if !response.Success || response.Result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "No barcode found",
			"decode": response,
		})
		return
	}

	estimateNumber := services.ParseEstimatePayload(response.Result.Text)
	if estimateNumber == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Scanned code is not an estimate reference",
			"decode": response,
		})
		return
	}

	estimate, err := h.estimateRepo.GetEstimateByNumber(estimateNumber)
	if err != nil {
		log.Printf("Scan lookup: estimate %s not found: %v", estimateNumber, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Estimate not found", "estimateNumber": estimateNumber})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"estimate": estimate,
		"decode":   response,
	})
}
