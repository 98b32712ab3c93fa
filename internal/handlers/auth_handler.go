package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"builddesk-estimates/internal/config"
	"builddesk-estimates/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

// Login authenticates a user and creates a session. Accounts with TOTP
// enabled must supply the current code in the same request.
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		TOTPCode string `json:"totpCode"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	var user models.User
	if err := h.db.Where("username = ? AND is_active = ?", loginData.Username, true).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginData.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil {
			log.Printf("User %s has TOTP enabled but no secret stored", user.Username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Two-factor authentication misconfigured"})
			return
		}
		if loginData.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":        "Verification code required",
				"totpRequired": true,
			})
			return
		}
		if !totp.Validate(loginData.TOTPCode, *user.TOTPSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
			return
		}
	}

	sessionID := h.generateSessionID()
	sessionTimeout := time.Duration(h.config.Security.SessionTimeout) * time.Second
	session := models.Session{
		SessionID: sessionID,
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(sessionTimeout),
		CreatedAt: time.Now(),
	}

	if err := h.db.Create(&session).Error; err != nil {
		log.Printf("Session creation failed for user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return
	}

	now := time.Now()
	user.LastLogin = &now
	h.db.Save(&user)

	c.SetCookie("session_id", sessionID, h.config.Security.SessionTimeout, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"userID":    user.UserID,
			"username":  user.Username,
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
		},
	})
}

// Logout destroys the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie("session_id"); err == nil {
		h.db.Where("session_id = ?", sessionID).Delete(&models.Session{})
	}

	c.SetCookie("session_id", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetupTOTP generates a TOTP secret for the current user and returns
// the provisioning URI with a QR code for authenticator apps. The
// secret stays disabled until VerifyTOTP confirms a valid code.
func (h *AuthHandler) SetupTOTP(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "BuildDesk",
		AccountName: user.Email,
	})
	if err != nil {
		log.Printf("Failed to generate TOTP secret for user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set up two-factor authentication"})
		return
	}

	secret := key.Secret()
	if err := h.db.Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"totp_secret":  secret,
			"totp_enabled": false,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store secret"})
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		log.Printf("Failed to render TOTP QR code for user %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret": secret,
		"url":    key.URL(),
		"qrCode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

// VerifyTOTP enables two-factor authentication after a valid code
func (h *AuthHandler) VerifyTOTP(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var verifyData struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&verifyData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code is required"})
		return
	}

	var fresh models.User
	if err := h.db.First(&fresh, user.UserID).Error; err != nil || fresh.TOTPSecret == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Two-factor setup not started"})
		return
	}

	if !totp.Validate(verifyData.Code, *fresh.TOTPSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	if err := h.db.Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Update("totp_enabled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable two-factor authentication"})
		return
	}

	log.Printf("Two-factor authentication enabled for user %s", user.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}

// AuthMiddleware checks if user is authenticated
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie("session_id")
		if err != nil || sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		var session models.Session
		if err := h.db.Where("session_id = ? AND expires_at > ?", sessionID, time.Now()).First(&session).Error; err != nil {
			c.SetCookie("session_id", "", -1, "/", "", false, true)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		var user models.User
		if err := h.db.Where("user_id = ? AND is_active = ?", session.UserID, true).First(&user).Error; err != nil {
			h.db.Where("session_id = ?", sessionID).Delete(&models.Session{})
			c.SetCookie("session_id", "", -1, "/", "", false, true)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", session.UserID)
		c.Next()
	}
}

// generateSessionID creates a cryptographically secure session ID
func (h *AuthHandler) generateSessionID() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CleanupExpiredSessions removes expired sessions from the database
func (h *AuthHandler) CleanupExpiredSessions() error {
	result := h.db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d expired sessions", result.RowsAffected)
	}
	return nil
}

// StartSessionCleanup runs session cleanup on an hourly ticker
func (h *AuthHandler) StartSessionCleanup() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := h.CleanupExpiredSessions(); err != nil {
				log.Printf("Session cleanup failed: %v", err)
			}
		}
	}()
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CreateUser creates a new user account
func (h *AuthHandler) CreateUser(username, email, password, firstName, lastName string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	return h.db.Create(&user).Error
}

// GetCurrentUser retrieves the current user from the gin context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	if user, exists := c.Get("user"); exists {
		if u, ok := user.(models.User); ok {
			return &u, true
		}
	}
	return nil, false
}
