package milestones

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for milestones
type Repository interface {
	Create(ctx context.Context, m *Milestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*Milestone, error)
	List(ctx context.Context, status *Status) ([]Milestone, error)
	Update(ctx context.Context, m *Milestone) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository with gorm
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *Milestone) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Milestone, error) {
	var m Milestone
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) List(ctx context.Context, status *Status) ([]Milestone, error) {
	var out []Milestone
	q := r.db.WithContext(ctx).Order("target_date ASC NULLS LAST, created_at ASC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *PostgresRepository) Update(ctx context.Context, m *Milestone) error {
	res := r.db.WithContext(ctx).Save(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Milestone{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}
