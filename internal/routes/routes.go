package routes

import (
	"net/http"

	"builddesk-estimates/internal/handlers"
	"builddesk-estimates/internal/middleware"

	"github.com/gin-gonic/gin"
)

// scan uploads carry base64 camera frames
const maxScanBodySize = 8 << 20

// Handlers bundles the handler set wired into the router
type Handlers struct {
	Auth     *handlers.AuthHandler
	Estimate *handlers.EstimateHandler
	Project  *handlers.ProjectHandler
	Company  *handlers.CompanyHandler
	Scan     *handlers.ScanHandler
}

// SetupRoutes registers all API routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.Use(middleware.SecurityHeaders())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth endpoints
	r.POST("/api/auth/login", h.Auth.Login)
	r.POST("/api/auth/logout", h.Auth.Logout)

	api := r.Group("/api")
	api.Use(h.Auth.AuthMiddleware())
	{
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/auth/totp/setup", h.Auth.SetupTOTP)
		api.POST("/auth/totp/verify", h.Auth.VerifyTOTP)

		estimates := api.Group("/estimates")
		{
			estimates.GET("", h.Estimate.GetEstimates)
			estimates.POST("", h.Estimate.CreateEstimate)
			estimates.GET("/stats", h.Estimate.GetEstimateStats)
			estimates.GET("/next-number", h.Estimate.PreviewEstimateNumber)
			estimates.GET("/:id", h.Estimate.GetEstimate)
			estimates.PUT("/:id", h.Estimate.UpdateEstimate)
			estimates.DELETE("/:id", h.Estimate.DeleteEstimate)
			estimates.PUT("/:id/status", h.Estimate.UpdateEstimateStatus)
			estimates.GET("/:id/summary", h.Estimate.GetEstimateSummary)
			estimates.GET("/:id/pdf", h.Estimate.GenerateEstimatePDF)
			estimates.POST("/:id/send", h.Estimate.SendEstimate)
			estimates.GET("/:id/qr", h.Estimate.GetEstimateQR)
			estimates.GET("/:id/barcode", h.Estimate.GetEstimateBarcode)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", h.Project.ListProjects)
			projects.POST("", h.Project.CreateProject)
			projects.GET("/:id", h.Project.GetProject)
			projects.PUT("/:id", h.Project.UpdateProject)
			projects.DELETE("/:id", h.Project.DeleteProject)
		}

		company := api.Group("/company")
		{
			company.GET("", h.Company.GetCompanyInfo)
			company.PUT("", h.Company.UpdateCompanyInfo)
			company.POST("/test-email", h.Company.SendTestEmail)
		}

		scanGroup := api.Group("/scan")
		scanGroup.Use(middleware.RequestSizeLimit(maxScanBodySize))
		scanGroup.Use(middleware.RateLimit(60))
		{
			scanGroup.POST("/decode", h.Scan.Decode)
			scanGroup.POST("/lookup", h.Scan.Lookup)
		}
	}
}
