package models

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Roles a user account can hold
const (
	RoleUser     = "user"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is a registered account. Providers and admins may also live here,
// distinguished by Role.
type User struct {
	BaseModel
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	Phone        string `json:"phone" gorm:"uniqueIndex;not null"`
	Address      string `json:"address"`
	Role         string `json:"role" gorm:"not null;default:user"`
	PasswordHash string `json:"-" gorm:"not null"`
}

// Provider is a service provider account, optionally linked to a user
type Provider struct {
	BaseModel
	UserID       *string `json:"user_id" gorm:"type:varchar(26);index"`
	FullName     string  `json:"full_name" gorm:"not null"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	Phone        string  `json:"phone"`
	PasswordHash string  `json:"-" gorm:"not null"`
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Provider{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
