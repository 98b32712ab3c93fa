package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GlobalErrorHandler provides global panic recovery middleware
func GlobalErrorHandler() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(gin.DefaultWriter, func(c *gin.Context, recovered interface{}) {
		log.Printf("GlobalErrorHandler: Panic recovered: %v", recovered)

		if c.Writer.Written() {
			return
		}

		requestID := ""
		if id, exists := c.Get("request_id"); exists {
			requestID = id.(string)
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestId": requestID,
		})
	})
}

// NotFoundHandler handles unmatched routes
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
			"path":  c.Request.URL.Path,
		})
	}
}
