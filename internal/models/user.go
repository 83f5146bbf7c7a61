package models

import (
	"time"

	"gorm.io/gorm"
)

// User carries its own credential and single-use token state. Token columns
// hold sha256 digests, never the emailed values.
type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null" json:"-"`

	IsEmailVerified         bool       `gorm:"default:false"`
	EmailVerificationToken  string     `json:"-"`
	EmailVerificationExpiry *time.Time `json:"-"`
	ForgotPasswordToken     string     `json:"-"`
	ForgotPasswordExpiry    *time.Time `json:"-"`
	RefreshToken            string     `json:"-"`

	// Relationships
	CreatedProjects    []Project           `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
