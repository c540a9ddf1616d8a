package milestones

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrInvalidMilestone  = errors.New("invalid milestone")
	ErrInvalidStatus     = errors.New("invalid milestone status")
)

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Milestone is a company goal with a target date
type Milestone struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Category    string         `gorm:"index" json:"category"`
	TargetDate  *time.Time     `gorm:"type:date" json:"target_date,omitempty"`
	Status      Status         `gorm:"not null;default:'planned';index" json:"status"`
	Description string         `json:"description"`
	Notes       string         `json:"notes"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// CreateMilestoneRequest
type CreateMilestoneRequest struct {
	Title       string `json:"title" binding:"required"`
	Category    string `json:"category"`
	TargetDate  string `json:"target_date"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// UpdateMilestoneRequest only changes the fields that are set
type UpdateMilestoneRequest struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	TargetDate  *string `json:"target_date"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

// StatusRequest
type StatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// Progress counts milestones by status
type Progress struct {
	Total      int `json:"total"`
	Planned    int `json:"planned"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}
