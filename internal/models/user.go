package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Name            string         `gorm:"size:255" json:"name"`
	Email           string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	Image           string         `gorm:"size:255" json:"image,omitempty"`
}

// HasCompleteProfile reports whether the user has finished profile setup.
// Users created by the magic-link flow start with an empty name and are
// barred from mutating content until they set one.
func (u *User) HasCompleteProfile() bool {
	return u.Name != ""
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
