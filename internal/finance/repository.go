package finance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for financial records
type Repository interface {
	Create(ctx context.Context, r *Record) error
	List(ctx context.Context, f Filter) ([]Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository with gorm
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Record, error) {
	var records []Record
	q := r.db.WithContext(ctx).Order("occurred_on ASC, created_at ASC")
	if f.From != nil {
		q = q.Where("occurred_on >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("occurred_on <= ?", *f.To)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	err := q.Find(&records).Error
	return records, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Record{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
