package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the data access interface for the roster
type Repository interface {
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	UpdateMember(ctx context.Context, m *Member) error
	DeleteMember(ctx context.Context, id uuid.UUID) error

	CreateSnapshot(ctx context.Context, s *CapTableSnapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]CapTableSnapshot, error)
}

// PostgresRepository implements Repository with gorm
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMember(ctx context.Context, m *Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&Member{}).Select("COALESCE(MAX(position), 0) + 1").Scan(&next).Error; err != nil {
			return fmt.Errorf("failed to compute roster position: %w", err)
		}
		m.Position = next
		return tx.Create(m).Error
	})
}

func (r *PostgresRepository) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	var m Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context) ([]Member, error) {
	var members []Member
	err := r.db.WithContext(ctx).Order("position ASC, created_at ASC").Find(&members).Error
	return members, err
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, m *Member) error {
	res := r.db.WithContext(ctx).Save(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Member{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateSnapshot(ctx context.Context, s *CapTableSnapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PostgresRepository) ListSnapshots(ctx context.Context, limit int) ([]CapTableSnapshot, error) {
	var snapshots []CapTableSnapshot
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&snapshots).Error
	return snapshots, err
}
