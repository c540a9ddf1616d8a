package fundraising

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
	"founder-portal/ops-portal/ops-portal-backend/internal/reports/export"
	"founder-portal/ops-portal/ops-portal-backend/pkg/workflows"
)

// CapTableSource supplies the current team cap table
type CapTableSource interface {
	CurrentCapTable(ctx context.Context) (captable.CapTable, error)
}

// Commentator explains a dilution result in prose
type Commentator interface {
	Enabled() bool
	ExplainDilution(ctx context.Context, result *captable.DilutionResult) (*assistant.DilutionAdvice, error)
}

var pipeline = workflows.NewStateMachine(map[string][]string{
	string(StageLead):         {string(StageContacted), string(StagePassed)},
	string(StageContacted):    {string(StagePitched), string(StagePassed)},
	string(StagePitched):      {string(StageDueDiligence), string(StagePassed)},
	string(StageDueDiligence): {string(StageTermSheet), string(StagePassed)},
	string(StageTermSheet):    {string(StageCommitted), string(StagePassed)},
	string(StageCommitted):    {},
	string(StagePassed):       {string(StageLead)},
})

// Service runs the investor pipeline and round simulations
type Service struct {
	repo        Repository
	capTables   CapTableSource
	commentator Commentator
	publisher   notifications.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(repo Repository, capTables CapTableSource, commentator Commentator, publisher notifications.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Service{
		repo:        repo,
		capTables:   capTables,
		commentator: commentator,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// =====================================================
// Investor pipeline
// =====================================================

func (s *Service) CreateInvestor(ctx context.Context, req *CreateInvestorRequest) (*Investor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInvestor)
	}
	if req.TargetAmount.IsNegative() {
		return nil, fmt.Errorf("%w: target amount cannot be negative", ErrInvalidInvestor)
	}

	inv := &Investor{
		ID:           uuid.New(),
		Name:         name,
		Firm:         strings.TrimSpace(req.Firm),
		Email:        strings.TrimSpace(req.Email),
		Stage:        StageLead,
		TargetAmount: req.TargetAmount,
		Notes:        req.Notes,
	}
	if err := s.repo.CreateInvestor(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create investor: %w", err)
	}

	s.logger.Info("Investor added to pipeline",
		zap.String("investor_id", inv.ID.String()),
		zap.String("name", inv.Name))
	s.publisher.Publish(notifications.EventInvestorUpdated, inv)
	return inv, nil
}

func (s *Service) GetInvestor(ctx context.Context, id uuid.UUID) (*Investor, error) {
	return s.repo.GetInvestor(ctx, id)
}

func (s *Service) ListInvestors(ctx context.Context, stage *Stage) ([]Investor, error) {
	return s.repo.ListInvestors(ctx, stage)
}

func (s *Service) UpdateInvestor(ctx context.Context, id uuid.UUID, req *UpdateInvestorRequest) (*Investor, error) {
	inv, err := s.repo.GetInvestor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInvestor)
		}
		inv.Name = strings.TrimSpace(*req.Name)
	}
	if req.Firm != nil {
		inv.Firm = *req.Firm
	}
	if req.Email != nil {
		inv.Email = *req.Email
	}
	if req.TargetAmount != nil {
		if req.TargetAmount.IsNegative() {
			return nil, fmt.Errorf("%w: target amount cannot be negative", ErrInvalidInvestor)
		}
		inv.TargetAmount = *req.TargetAmount
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}

	if err := s.repo.UpdateInvestor(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update investor: %w", err)
	}
	s.publisher.Publish(notifications.EventInvestorUpdated, inv)
	return inv, nil
}

func (s *Service) DeleteInvestor(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteInvestor(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Investor removed from pipeline", zap.String("investor_id", id.String()))
	return nil
}

// MoveStage advances an investor through the pipeline.
func (s *Service) MoveStage(ctx context.Context, id uuid.UUID, to Stage) (*Investor, error) {
	inv, err := s.repo.GetInvestor(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := pipeline.Transition(string(inv.Stage), string(to))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStage, err)
	}

	from := inv.Stage
	now := s.now()
	inv.Stage = Stage(next)
	inv.LastContactAt = &now
	if err := s.repo.UpdateInvestor(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update investor stage: %w", err)
	}

	s.logger.Info("Investor stage changed",
		zap.String("investor_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", next))
	s.publisher.Publish(notifications.EventInvestorUpdated, inv)
	return inv, nil
}

// NextStages returns the stages an investor may move to from stage.
func NextStages(stage Stage) []Stage {
	allowed := pipeline.GetAllowedTransitions(string(stage))
	out := make([]Stage, len(allowed))
	for i, st := range allowed {
		out[i] = Stage(st)
	}
	return out
}

// Pipeline aggregates investors by stage.
func (s *Service) Pipeline(ctx context.Context) (*PipelineSummary, error) {
	investors, err := s.repo.ListInvestors(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}

	summary := &PipelineSummary{
		Counts:          make(map[Stage]int, len(Stages)),
		CommittedAmount: decimal.Zero,
		PipelineAmount:  decimal.Zero,
	}
	for _, st := range Stages {
		summary.Counts[st] = 0
	}
	for _, inv := range investors {
		summary.Counts[inv.Stage]++
		switch inv.Stage {
		case StageCommitted:
			summary.CommittedAmount = summary.CommittedAmount.Add(inv.TargetAmount)
		case StagePassed:
		default:
			summary.ActiveInvestors++
			summary.PipelineAmount = summary.PipelineAmount.Add(inv.TargetAmount)
		}
	}
	return summary, nil
}

// =====================================================
// Round simulations
// =====================================================

// SimulateRound runs the dilution math and optionally asks for commentary.
// Commentary failures are reported in the response and never fail the call.
func (s *Service) SimulateRound(ctx context.Context, req *SimulationRequest) (*SimulationResponse, error) {
	table := req.CapTable
	source := SourceCustom
	if len(table) == 0 {
		current, err := s.capTables.CurrentCapTable(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load team cap table: %w", err)
		}
		table = current
		source = SourceTeam
	}

	result, err := captable.SimulateRound(table, captable.FundingRoundInput{
		Investment:        req.Investment,
		PreMoneyValuation: req.PreMoneyValuation,
		Label:             req.Label,
	})
	if err != nil {
		return nil, err
	}

	resp := &SimulationResponse{Result: result}
	if req.WithCommentary {
		s.addCommentary(ctx, resp)
	}

	if req.Save != nil && !*req.Save {
		return resp, nil
	}

	sim, err := s.record(ctx, source, resp)
	if err != nil {
		return nil, err
	}
	resp.ID = &sim.ID

	s.logger.Info("Round simulated",
		zap.String("simulation_id", sim.ID.String()),
		zap.String("source", source),
		zap.Float64("new_investor_pct", result.NewInvestorPercentage))
	s.publisher.Publish(notifications.EventSimulationCreated, resp)
	return resp, nil
}

func (s *Service) addCommentary(ctx context.Context, resp *SimulationResponse) {
	if s.commentator == nil || !s.commentator.Enabled() {
		resp.CommentaryError = assistant.ErrDisabled.Error()
		return
	}
	advice, err := s.commentator.ExplainDilution(ctx, resp.Result)
	if err != nil {
		s.logger.Warn("Dilution commentary unavailable", zap.Error(err))
		resp.CommentaryError = err.Error()
		return
	}
	resp.Commentary = advice
}

func (s *Service) record(ctx context.Context, source string, resp *SimulationResponse) (*Simulation, error) {
	result, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode simulation: %w", err)
	}

	sim := &Simulation{
		ID:                    uuid.New(),
		Label:                 resp.Result.Label,
		Source:                source,
		Investment:            resp.Result.Investment,
		PreMoneyValuation:     resp.Result.PreMoneyValuation,
		PostMoneyValuation:    resp.Result.PostMoneyValuation,
		NewInvestorPercentage: resp.Result.NewInvestorPercentage,
		Result:                result,
		CommentaryError:       resp.CommentaryError,
		CreatedAt:             s.now(),
	}
	if resp.Commentary != nil {
		commentary, err := json.Marshal(resp.Commentary)
		if err != nil {
			return nil, fmt.Errorf("failed to encode commentary: %w", err)
		}
		sim.Commentary = commentary
	}

	if err := s.repo.CreateSimulation(ctx, sim); err != nil {
		return nil, fmt.Errorf("failed to store simulation: %w", err)
	}
	return sim, nil
}

func (s *Service) ListSimulations(ctx context.Context, limit int) ([]Simulation, error) {
	return s.repo.ListSimulations(ctx, limit)
}

func (s *Service) GetSimulation(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	return s.repo.GetSimulation(ctx, id)
}

// SimulationReport lays a stored simulation out for export.
func (s *Service) SimulationReport(ctx context.Context, id uuid.UUID) (*export.Report, error) {
	sim, err := s.repo.GetSimulation(ctx, id)
	if err != nil {
		return nil, err
	}

	var result captable.DilutionResult
	if err := json.Unmarshal(sim.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode simulation %s: %w", id, err)
	}
	return export.DilutionReport(&result, sim.CreatedAt), nil
}
