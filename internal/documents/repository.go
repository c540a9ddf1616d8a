package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for document metadata
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, category *Category) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository with gorm
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, doc *Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *PostgresRepository) List(ctx context.Context, category *Category) ([]Document, error) {
	var docs []Document
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	err := q.Find(&docs).Error
	return docs, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Document{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
