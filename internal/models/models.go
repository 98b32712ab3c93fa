package models

import (
	"time"
)

// Project represents a construction project estimates can belong to
type Project struct {
	ProjectID   uint       `json:"projectID" gorm:"primaryKey;column:project_id"`
	Name        string     `json:"name" gorm:"not null;column:name"`
	SiteAddress *string    `json:"siteAddress" gorm:"column:site_address"`
	StartDate   *time.Time `json:"startDate" gorm:"type:date;column:start_date"`
	EndDate     *time.Time `json:"endDate" gorm:"type:date;column:end_date"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"column:updated_at"`

	Estimates []Estimate `json:"estimates,omitempty" gorm:"-"`
}

func (Project) TableName() string {
	return "projects"
}

type User struct {
	UserID       uint       `json:"userID" gorm:"primaryKey;column:user_id"`
	Username     string     `json:"username" gorm:"unique;not null;column:username"`
	Email        string     `json:"email" gorm:"unique;not null;column:email"`
	PasswordHash string     `json:"-" gorm:"not null;column:password_hash"`
	FirstName    string     `json:"firstName" gorm:"column:first_name"`
	LastName     string     `json:"lastName" gorm:"column:last_name"`
	IsActive     bool       `json:"isActive" gorm:"default:true;column:is_active"`
	TOTPSecret   *string    `json:"-" gorm:"column:totp_secret"`
	TOTPEnabled  bool       `json:"totpEnabled" gorm:"default:false;column:totp_enabled"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" gorm:"column:updated_at"`
	LastLogin    *time.Time `json:"lastLogin" gorm:"column:last_login"`
}

func (User) TableName() string {
	return "users"
}

type Session struct {
	SessionID string    `json:"sessionID" gorm:"primaryKey;column:session_id"`
	UserID    uint      `json:"userID" gorm:"not null;column:user_id"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;column:expires_at"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Session) TableName() string {
	return "sessions"
}
