package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KanbanBoard is the board a membership points at.
type KanbanBoard struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	CreatedByID uuid.UUID `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *KanbanBoard) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
