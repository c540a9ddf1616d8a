package fundraising

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for investors and simulations
type Repository interface {
	CreateInvestor(ctx context.Context, inv *Investor) error
	GetInvestor(ctx context.Context, id uuid.UUID) (*Investor, error)
	ListInvestors(ctx context.Context, stage *Stage) ([]Investor, error)
	UpdateInvestor(ctx context.Context, inv *Investor) error
	DeleteInvestor(ctx context.Context, id uuid.UUID) error

	CreateSimulation(ctx context.Context, sim *Simulation) error
	GetSimulation(ctx context.Context, id uuid.UUID) (*Simulation, error)
	ListSimulations(ctx context.Context, limit int) ([]Simulation, error)
}

// PostgresRepository implements Repository with gorm
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateInvestor(ctx context.Context, inv *Investor) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *PostgresRepository) GetInvestor(ctx context.Context, id uuid.UUID) (*Investor, error) {
	var inv Investor
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestorNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PostgresRepository) ListInvestors(ctx context.Context, stage *Stage) ([]Investor, error) {
	var investors []Investor
	q := r.db.WithContext(ctx).Order("updated_at DESC")
	if stage != nil {
		q = q.Where("stage = ?", *stage)
	}
	err := q.Find(&investors).Error
	return investors, err
}

func (r *PostgresRepository) UpdateInvestor(ctx context.Context, inv *Investor) error {
	res := r.db.WithContext(ctx).Save(inv)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvestorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteInvestor(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Investor{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvestorNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateSimulation(ctx context.Context, sim *Simulation) error {
	return r.db.WithContext(ctx).Create(sim).Error
}

func (r *PostgresRepository) GetSimulation(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	var sim Simulation
	if err := r.db.WithContext(ctx).First(&sim, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSimulationNotFound
		}
		return nil, err
	}
	return &sim, nil
}

func (r *PostgresRepository) ListSimulations(ctx context.Context, limit int) ([]Simulation, error) {
	var sims []Simulation
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sims).Error
	return sims, err
}
