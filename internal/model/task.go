package model

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels a task can carry. Stored as plain text.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three allowed levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank maps a priority to its sort weight (high=3, medium=2, low=1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Task struct {
	ID          uint     `gorm:"primaryKey"`
	Title       string   `gorm:"not null"`
	Description string
	Completed   bool     `gorm:"not null;default:false"`
	Priority    Priority `gorm:"type:text;not null"`
	DueDate     *time.Time
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
