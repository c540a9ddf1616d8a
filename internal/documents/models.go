package documents

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrNotText          = errors.New("document content is not readable text")
)

// Category groups founder documents
type Category string

const (
	CategoryLegal      Category = "legal"
	CategoryFinancial  Category = "financial"
	CategoryFundraise  Category = "fundraising"
	CategoryTeam       Category = "team"
	CategoryOperations Category = "operations"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLegal, CategoryFinancial, CategoryFundraise, CategoryTeam, CategoryOperations, CategoryOther:
		return true
	}
	return false
}

// Document is the metadata for a stored file
type Document struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Category    Category       `gorm:"not null;default:'other';index" json:"category"`
	ContentType string         `gorm:"not null" json:"content_type"`
	Size        int64          `json:"size"`
	Bucket      string         `gorm:"not null" json:"-"`
	StorageKey  string         `gorm:"not null;uniqueIndex" json:"-"`
	UploadedBy  string         `json:"uploaded_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// AskRequest
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}
