package models

import "gorm.io/gorm"

type Note struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Content     string `gorm:"not null"`
	CreatedByID uint   `gorm:"not null"`

	// Relationships
	Project   Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
