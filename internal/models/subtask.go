package models

import "gorm.io/gorm"

type SubTask struct {
	gorm.Model

	TaskID      uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	IsCompleted bool   `gorm:"default:false"`
	CreatedByID uint   `gorm:"not null"`

	// Relationships
	Task      Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CreatedBy User `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
