package team

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
	"founder-portal/ops-portal/ops-portal-backend/internal/reports/export"
)

// Service manages the roster and the cap table derived from it
type Service struct {
	repo      Repository
	publisher notifications.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher notifications.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateMember adds a member after checking the resulting roster still normalizes.
func (s *Service) CreateMember(ctx context.Context, req *CreateMemberRequest) (*Member, error) {
	member := &Member{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Role:       strings.TrimSpace(req.Role),
		Commitment: req.Commitment,
		Equity:     req.Equity,
		Vesting:    req.Vesting,
	}
	if member.Commitment == "" {
		member.Commitment = CommitmentFullTime
	}
	if err := validateMember(member); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if _, err := normalize(append(members, *member)); err != nil {
		return nil, err
	}

	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.logger.Info("Team member added",
		zap.String("member_id", member.ID.String()),
		zap.String("name", member.Name),
		zap.Float64("equity", member.Equity))

	s.publishCapTable(ctx)
	return member, nil
}

func (s *Service) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) ListMembers(ctx context.Context) ([]Member, error) {
	return s.repo.ListMembers(ctx)
}

// UpdateMember applies the set fields of req.
func (s *Service) UpdateMember(ctx context.Context, id uuid.UUID, req *UpdateMemberRequest) (*Member, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	idx := -1
	for i := range members {
		if members[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMemberNotFound
	}

	member := members[idx]
	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		member.Role = strings.TrimSpace(*req.Role)
	}
	if req.Commitment != nil {
		member.Commitment = *req.Commitment
	}
	if req.Equity != nil {
		member.Equity = *req.Equity
	}
	if req.Vesting != nil {
		member.Vesting = *req.Vesting
	}
	if err := validateMember(&member); err != nil {
		return nil, err
	}

	members[idx] = member
	if _, err := normalize(members); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMember(ctx, &member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.logger.Info("Team member updated", zap.String("member_id", id.String()))
	s.publishCapTable(ctx)
	return &member, nil
}

func (s *Service) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteMember(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Team member removed", zap.String("member_id", id.String()))
	s.publishCapTable(ctx)
	return nil
}

// CapTable derives the current cap table from the roster.
func (s *Service) CapTable(ctx context.Context) (*CapTableView, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	table, err := normalize(members)
	if err != nil {
		return nil, err
	}
	return view(table, len(members)), nil
}

// CapTableReport lays the current cap table out for export.
func (s *Service) CapTableReport(ctx context.Context) (*export.Report, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	table, err := normalize(members)
	if err != nil {
		return nil, err
	}

	ids := stakeholderIDs(members)
	details := make(map[string]export.RowDetail, len(members))
	for i, m := range members {
		details[ids[i]] = export.RowDetail{
			Role:       m.Role,
			Commitment: string(m.Commitment),
			Vesting:    m.Vesting,
		}
	}
	return export.CapTableReport("Cap table", table, details, s.now()), nil
}

// TakeSnapshot stores the current cap table.
func (s *Service) TakeSnapshot(ctx context.Context, reason string) (*CapTableSnapshot, error) {
	current, err := s.CapTable(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := json.Marshal(current.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cap table: %w", err)
	}
	if reason == "" {
		reason = "manual"
	}

	snapshot := &CapTableSnapshot{
		ID:            uuid.New(),
		Reason:        reason,
		MemberCount:   current.MemberCount,
		Unallocated:   current.Unallocated,
		OverAllocated: current.OverAllocated,
		Entries:       entries,
		CreatedAt:     s.now(),
	}
	if err := s.repo.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Info("Cap table snapshot stored",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("reason", reason))
	return snapshot, nil
}

func (s *Service) ListSnapshots(ctx context.Context, limit int) ([]CapTableSnapshot, error) {
	return s.repo.ListSnapshots(ctx, limit)
}

func (s *Service) publishCapTable(ctx context.Context) {
	current, err := s.CapTable(ctx)
	if err != nil {
		s.logger.Warn("Failed to recompute cap table after roster change", zap.Error(err))
		return
	}
	if current.OverAllocated {
		s.logger.Warn("Roster is over-allocated", zap.Float64("unallocated", current.Unallocated))
	}
	s.publisher.Publish(notifications.EventCapTableUpdated, current)
}

func validateMember(m *Member) error {
	if m.Name == "" {
		return &captable.ValidationError{Field: "name", Value: m.Name, Constraint: "is required"}
	}
	if !m.Commitment.Valid() {
		return &captable.ValidationError{Field: "commitment", Value: m.Commitment, Constraint: "must be full_time or part_time"}
	}
	return nil
}

func normalize(members []Member) (captable.CapTable, error) {
	ids := stakeholderIDs(members)
	roster := make([]captable.Stakeholder, len(members))
	for i, m := range members {
		roster[i] = captable.Stakeholder{Name: ids[i], Equity: m.Equity}
	}
	return captable.NormalizeCapTable(roster)
}

// stakeholderIDs names each member for the cap table. Repeated names are
// qualified with the role, and a counter when the role repeats too.
func stakeholderIDs(members []Member) []string {
	counts := make(map[string]int, len(members))
	for _, m := range members {
		counts[m.Name]++
	}

	ids := make([]string, len(members))
	taken := make(map[string]bool, len(members))
	for i, m := range members {
		id := m.Name
		if counts[m.Name] > 1 && m.Role != "" {
			id = fmt.Sprintf("%s (%s)", m.Name, m.Role)
		}
		ids[i] = id
		taken[id] = true
	}

	// later repeats get the first free " #n", skipping names members actually use
	seen := make(map[string]bool, len(members))
	for i, id := range ids {
		if !seen[id] {
			seen[id] = true
			continue
		}
		n := 2
		for taken[fmt.Sprintf("%s #%d", id, n)] {
			n++
		}
		ids[i] = fmt.Sprintf("%s #%d", id, n)
		taken[ids[i]] = true
		seen[ids[i]] = true
	}
	return ids
}

func view(table captable.CapTable, members int) *CapTableView {
	pool, _ := table.Get(captable.ESOPKey)
	return &CapTableView{
		Entries:       table,
		Total:         table.Total(),
		Unallocated:   pool,
		OverAllocated: table.IsOverAllocated(),
		MemberCount:   members,
	}
}

// CurrentCapTable returns just the derived entries.
func (s *Service) CurrentCapTable(ctx context.Context) (captable.CapTable, error) {
	current, err := s.CapTable(ctx)
	if err != nil {
		return nil, err
	}
	return current.Entries, nil
}
