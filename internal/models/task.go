package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID    uint   `gorm:"not null;index"`
	Title        string `gorm:"not null"`
	Description  string
	Status       string         `gorm:"not null;default:'todo'"` // "todo", "in_progress", "done"
	AssignedToID *uint          `gorm:"index"`
	AssignedByID uint           `gorm:"not null"`
	Attachments  datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Project    Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID"`
	SubTasks   []SubTask `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
