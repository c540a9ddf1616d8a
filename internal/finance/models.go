package finance

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound = errors.New("financial record not found")
	ErrInvalidRecord  = errors.New("invalid financial record")
)

// Kind separates money in from money out
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Record is a single income or expense line
type Record struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind       Kind            `gorm:"not null;index" json:"kind"`
	Category   string          `gorm:"not null;index" json:"category"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	OccurredOn time.Time       `gorm:"type:date;not null;index" json:"occurred_on"`
	Note       string          `json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (Record) TableName() string {
	return "financial_records"
}

// Filter narrows a record listing
type Filter struct {
	From     *time.Time
	To       *time.Time
	Kind     *Kind
	Category string
}

// CreateRecordRequest
type CreateRecordRequest struct {
	Kind       Kind            `json:"kind" binding:"required"`
	Category   string          `json:"category" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredOn string          `json:"occurred_on" binding:"required"`
	Note       string          `json:"note"`
}

// CategoryTotal is the sum of one expense category
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Summary is the financial position over a period
type Summary struct {
	PeriodStart  time.Time        `json:"period_start"`
	PeriodEnd    time.Time        `json:"period_end"`
	Months       int              `json:"months"`
	Income       decimal.Decimal  `json:"income"`
	Expenses     decimal.Decimal  `json:"expenses"`
	Net          decimal.Decimal  `json:"net"`
	MonthlyBurn  decimal.Decimal  `json:"monthly_burn"`
	CashOnHand   *decimal.Decimal `json:"cash_on_hand,omitempty"`
	RunwayMonths *decimal.Decimal `json:"runway_months,omitempty"`
	Categories   []CategoryTotal  `json:"categories"`
	RecordCount  int              `json:"record_count"`
}

// SummaryRequest selects the period and optional cash balance
type SummaryRequest struct {
	From       string           `json:"from" form:"from"`
	To         string           `json:"to" form:"to"`
	CashOnHand *decimal.Decimal `json:"cash_on_hand"`
}
