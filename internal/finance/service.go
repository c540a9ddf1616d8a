package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
)

const dateLayout = "2006-01-02"

// Commentator reviews a financial snapshot
type Commentator interface {
	CommentOnFinances(ctx context.Context, snap assistant.FinancialSnapshot) (*assistant.FinancialCommentary, error)
}

// Service records income and expenses and summarizes them
type Service struct {
	repo        Repository
	commentator Commentator
	publisher   notifications.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, commentator Commentator, publisher notifications.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Service{
		repo:        repo,
		commentator: commentator,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*Record, error) {
	if req.Kind != KindIncome && req.Kind != KindExpense {
		return nil, fmt.Errorf("%w: kind must be income or expense", ErrInvalidRecord)
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidRecord)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRecord)
	}
	occurred, err := time.Parse(dateLayout, req.OccurredOn)
	if err != nil {
		return nil, fmt.Errorf("%w: occurred_on must be YYYY-MM-DD", ErrInvalidRecord)
	}

	rec := &Record{
		ID:         uuid.New(),
		Kind:       req.Kind,
		Category:   category,
		Amount:     req.Amount.Round(2),
		OccurredOn: occurred,
		Note:       req.Note,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.logger.Info("Financial record added",
		zap.String("record_id", rec.ID.String()),
		zap.String("kind", string(rec.Kind)),
		zap.String("amount", rec.Amount.StringFixed(2)))
	s.publisher.Publish(notifications.EventFinanceUpdated, rec)
	return rec, nil
}

func (s *Service) ListRecords(ctx context.Context, f Filter) ([]Record, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(notifications.EventFinanceUpdated, map[string]string{"deleted": id.String()})
	return nil
}

// Summarize totals the records in the requested period. The default period is
// the last three calendar months including the current one.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (*Summary, error) {
	from, to, err := s.period(req)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, Filter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	summary := Summarize(records, from, to)
	if req.CashOnHand != nil {
		cash := *req.CashOnHand
		summary.CashOnHand = &cash
		if summary.MonthlyBurn.IsPositive() {
			runway := cash.Div(summary.MonthlyBurn).Round(1)
			summary.RunwayMonths = &runway
		}
	}
	return summary, nil
}

// Summarize aggregates records over [from, to].
func Summarize(records []Record, from, to time.Time) *Summary {
	summary := &Summary{
		PeriodStart: from,
		PeriodEnd:   to,
		Months:      monthsBetween(from, to),
		Income:      decimal.Zero,
		Expenses:    decimal.Zero,
		Categories:  []CategoryTotal{},
		RecordCount: len(records),
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, r := range records {
		switch r.Kind {
		case KindIncome:
			summary.Income = summary.Income.Add(r.Amount)
		case KindExpense:
			summary.Expenses = summary.Expenses.Add(r.Amount)
			byCategory[r.Category] = byCategory[r.Category].Add(r.Amount)
		}
	}

	summary.Net = summary.Income.Sub(summary.Expenses)
	summary.MonthlyBurn = decimal.Zero
	if summary.Net.IsNegative() {
		summary.MonthlyBurn = summary.Net.Neg().Div(decimal.NewFromInt(int64(summary.Months))).Round(2)
	}

	for category, amount := range byCategory {
		summary.Categories = append(summary.Categories, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		if c := summary.Categories[i].Amount.Cmp(summary.Categories[j].Amount); c != 0 {
			return c > 0
		}
		return summary.Categories[i].Category < summary.Categories[j].Category
	})
	return summary
}

// Commentary summarizes the period and asks the assistant to review it.
func (s *Service) Commentary(ctx context.Context, req SummaryRequest) (*Summary, *assistant.FinancialCommentary, error) {
	if s.commentator == nil {
		return nil, nil, assistant.ErrDisabled
	}

	summary, err := s.Summarize(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	commentary, err := s.commentator.CommentOnFinances(ctx, snapshot(summary))
	if err != nil {
		return summary, nil, err
	}
	return summary, commentary, nil
}

func (s *Service) period(req SummaryRequest) (time.Time, time.Time, error) {
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := time.Date(now.Year(), now.Month()-2, 1, 0, 0, 0, 0, time.UTC)

	var err error
	if req.From != "" {
		if from, err = time.Parse(dateLayout, req.From); err != nil {
			return from, to, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidRecord)
		}
	}
	if req.To != "" {
		if to, err = time.Parse(dateLayout, req.To); err != nil {
			return from, to, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidRecord)
		}
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("%w: period ends before it starts", ErrInvalidRecord)
	}
	return from, to, nil
}

// monthsBetween counts the calendar months touched by [from, to].
func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}

func snapshot(s *Summary) assistant.FinancialSnapshot {
	snap := assistant.FinancialSnapshot{
		PeriodStart: s.PeriodStart.Format(dateLayout),
		PeriodEnd:   s.PeriodEnd.Format(dateLayout),
		Income:      s.Income.StringFixed(2),
		Expenses:    s.Expenses.StringFixed(2),
		Net:         s.Net.StringFixed(2),
		MonthlyBurn: s.MonthlyBurn.StringFixed(2),
	}
	if s.RunwayMonths != nil {
		snap.RunwayMonths = s.RunwayMonths.StringFixed(1)
	}
	for _, c := range s.Categories {
		snap.Categories = append(snap.Categories, assistant.CategoryAmount{Category: c.Category, Amount: c.Amount.StringFixed(2)})
	}
	return snap
}
