package fundraising

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

var (
	ErrInvestorNotFound   = errors.New("investor not found")
	ErrSimulationNotFound = errors.New("simulation not found")
	ErrInvalidStage       = errors.New("invalid pipeline stage")
	ErrInvalidInvestor    = errors.New("invalid investor")
)

// Stage is where an investor sits in the pipeline
type Stage string

const (
	StageLead         Stage = "lead"
	StageContacted    Stage = "contacted"
	StagePitched      Stage = "pitched"
	StageDueDiligence Stage = "due_diligence"
	StageTermSheet    Stage = "term_sheet"
	StageCommitted    Stage = "committed"
	StagePassed       Stage = "passed"
)

// Stages lists the pipeline in order
var Stages = []Stage{
	StageLead, StageContacted, StagePitched, StageDueDiligence, StageTermSheet, StageCommitted, StagePassed,
}

// Investor is a prospect in the fundraising pipeline
type Investor struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Firm          string          `json:"firm"`
	Email         string          `json:"email"`
	Stage         Stage           `gorm:"not null;default:'lead';index" json:"stage"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"target_amount"`
	Notes         string          `json:"notes"`
	LastContactAt *time.Time      `json:"last_contact_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Investor) TableName() string {
	return "investors"
}

// Simulation is a stored dilution scenario
type Simulation struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Label                 string         `json:"label"`
	Source                string         `gorm:"not null" json:"source"`
	Investment            float64        `gorm:"not null" json:"investment"`
	PreMoneyValuation     float64        `gorm:"not null" json:"pre_money_valuation"`
	PostMoneyValuation    float64        `gorm:"not null" json:"post_money_valuation"`
	NewInvestorPercentage float64        `gorm:"not null" json:"new_investor_percentage"`
	Result                datatypes.JSON `gorm:"not null" json:"result"`
	Commentary            datatypes.JSON `json:"commentary,omitempty"`
	CommentaryError       string         `json:"commentary_error,omitempty"`
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`
}

func (Simulation) TableName() string {
	return "dilution_simulations"
}

const (
	SourceTeam   = "team"
	SourceCustom = "custom"
)

// CreateInvestorRequest
type CreateInvestorRequest struct {
	Name         string          `json:"name" binding:"required"`
	Firm         string          `json:"firm"`
	Email        string          `json:"email"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Notes        string          `json:"notes"`
}

// UpdateInvestorRequest only changes the fields that are set
type UpdateInvestorRequest struct {
	Name         *string          `json:"name"`
	Firm         *string          `json:"firm"`
	Email        *string          `json:"email"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	Notes        *string          `json:"notes"`
}

// StageRequest moves an investor to a new stage
type StageRequest struct {
	Stage Stage `json:"stage" binding:"required"`
}

// SimulationRequest describes a round to model. An empty CapTable means the
// current team cap table.
type SimulationRequest struct {
	Label             string            `json:"label"`
	Investment        float64           `json:"investment"`
	PreMoneyValuation float64           `json:"pre_money_valuation"`
	CapTable          captable.CapTable `json:"cap_table,omitempty"`
	WithCommentary    bool              `json:"with_commentary"`
	Save              *bool             `json:"save,omitempty"`
}

// SimulationResponse carries the numbers and, when asked for, the commentary
type SimulationResponse struct {
	ID              *uuid.UUID                `json:"id,omitempty"`
	Result          *captable.DilutionResult  `json:"result"`
	Commentary      *assistant.DilutionAdvice `json:"commentary,omitempty"`
	CommentaryError string                    `json:"commentary_error,omitempty"`
}

// PipelineSummary aggregates the pipeline by stage
type PipelineSummary struct {
	Counts          map[Stage]int   `json:"counts"`
	ActiveInvestors int             `json:"active_investors"`
	CommittedAmount decimal.Decimal `json:"committed_amount"`
	PipelineAmount  decimal.Decimal `json:"pipeline_amount"`
}
