package team

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

// ErrMemberNotFound is returned when a member id does not exist.
var ErrMemberNotFound = errors.New("team member not found")

// Commitment is how much time a member gives the company
type Commitment string

const (
	CommitmentFullTime Commitment = "full_time"
	CommitmentPartTime Commitment = "part_time"
)

func (c Commitment) Valid() bool {
	return c == CommitmentFullTime || c == CommitmentPartTime
}

// Member is one person on the roster
type Member struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string         `gorm:"not null" json:"name"`
	Role       string         `json:"role"`
	Commitment Commitment     `gorm:"not null;default:'full_time'" json:"commitment"`
	Equity     float64        `gorm:"type:decimal(9,6);not null;default:0" json:"equity"`
	Vesting    string         `json:"vesting"`
	Position   int            `gorm:"not null;default:0;index" json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "team_members"
}

// CapTableSnapshot is a point-in-time copy of the derived cap table
type CapTableSnapshot struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reason        string         `gorm:"not null" json:"reason"`
	MemberCount   int            `json:"member_count"`
	Unallocated   float64        `json:"unallocated"`
	OverAllocated bool           `json:"over_allocated"`
	Entries       datatypes.JSON `gorm:"not null" json:"entries"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (CapTableSnapshot) TableName() string {
	return "cap_table_snapshots"
}

// CreateMemberRequest
type CreateMemberRequest struct {
	Name       string     `json:"name" binding:"required"`
	Role       string     `json:"role"`
	Commitment Commitment `json:"commitment"`
	Equity     float64    `json:"equity"`
	Vesting    string     `json:"vesting"`
}

// UpdateMemberRequest only changes the fields that are set
type UpdateMemberRequest struct {
	Name       *string     `json:"name"`
	Role       *string     `json:"role"`
	Commitment *Commitment `json:"commitment"`
	Equity     *float64    `json:"equity"`
	Vesting    *string     `json:"vesting"`
}

// CapTableView is the cap table as served to clients
type CapTableView struct {
	Entries       captable.CapTable `json:"entries"`
	Total         float64           `json:"total"`
	Unallocated   float64           `json:"unallocated"`
	OverAllocated bool              `json:"over_allocated"`
	MemberCount   int               `json:"member_count"`
}
