package milestones

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
	"founder-portal/ops-portal/ops-portal-backend/pkg/workflows"
)

const dateLayout = "2006-01-02"

// Describer drafts milestone descriptions
type Describer interface {
	DescribeMilestone(ctx context.Context, brief assistant.MilestoneBrief) (*assistant.MilestoneDescription, error)
}

var lifecycle = workflows.NewStateMachine(map[string][]string{
	string(StatusPlanned):    {string(StatusInProgress)},
	string(StatusInProgress): {string(StatusDone), string(StatusPlanned)},
	string(StatusDone):       {},
})

type Service struct {
	repo      Repository
	describer Describer
	publisher notifications.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, describer Describer, publisher notifications.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		describer: describer,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *CreateMilestoneRequest) (*Milestone, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidMilestone)
	}
	target, err := parseDate(req.TargetDate)
	if err != nil {
		return nil, err
	}

	m := &Milestone{
		ID:          uuid.New(),
		Title:       title,
		Category:    strings.TrimSpace(req.Category),
		TargetDate:  target,
		Status:      StatusPlanned,
		Description: req.Description,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	s.logger.Info("Milestone created", zap.String("milestone_id", m.ID.String()), zap.String("title", m.Title))
	s.publisher.Publish(notifications.EventMilestoneUpdated, m)
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Milestone, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status *Status) ([]Milestone, error) {
	return s.repo.List(ctx, status)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateMilestoneRequest) (*Milestone, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidMilestone)
		}
		m.Title = title
	}
	if req.Category != nil {
		m.Category = strings.TrimSpace(*req.Category)
	}
	if req.TargetDate != nil {
		target, err := parseDate(*req.TargetDate)
		if err != nil {
			return nil, err
		}
		m.TargetDate = target
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}
	s.publisher.Publish(notifications.EventMilestoneUpdated, m)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(notifications.EventMilestoneUpdated, map[string]string{"deleted": id.String()})
	return nil
}

// SetStatus moves a milestone through planned, in_progress and done.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Milestone, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Transition(string(m.Status), string(to))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	m.Status = Status(next)
	if m.Status == StatusDone {
		now := s.now()
		m.CompletedAt = &now
	} else {
		m.CompletedAt = nil
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone status: %w", err)
	}

	s.logger.Info("Milestone status changed", zap.String("milestone_id", id.String()), zap.String("status", next))
	s.publisher.Publish(notifications.EventMilestoneUpdated, m)
	return m, nil
}

// GenerateDescription asks the assistant for a description and stores it.
func (s *Service) GenerateDescription(ctx context.Context, id uuid.UUID) (*Milestone, error) {
	if s.describer == nil {
		return nil, assistant.ErrDisabled
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	brief := assistant.MilestoneBrief{Title: m.Title, Category: m.Category, Notes: m.Notes}
	if m.TargetDate != nil {
		brief.TargetDate = m.TargetDate.Format(dateLayout)
	}
	out, err := s.describer.DescribeMilestone(ctx, brief)
	if err != nil {
		return nil, err
	}

	m.Description = out.Description
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to store description: %w", err)
	}
	s.publisher.Publish(notifications.EventMilestoneUpdated, m)
	return m, nil
}

// Progress counts milestones by status and flags overdue ones.
func (s *Service) Progress(ctx context.Context) (*Progress, error) {
	all, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	p := &Progress{Total: len(all)}
	for _, m := range all {
		switch m.Status {
		case StatusPlanned:
			p.Planned++
		case StatusInProgress:
			p.InProgress++
		case StatusDone:
			p.Done++
			continue
		}
		if m.TargetDate != nil && m.TargetDate.Before(today) {
			p.Overdue++
		}
	}
	return p, nil
}

func parseDate(v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: target_date must be YYYY-MM-DD", ErrInvalidMilestone)
	}
	return &t, nil
}
