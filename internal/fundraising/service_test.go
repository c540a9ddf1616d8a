package fundraising

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/assistant"
	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateInvestor(ctx context.Context, inv *Investor) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockRepository) GetInvestor(ctx context.Context, id uuid.UUID) (*Investor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Investor), args.Error(1)
}

func (m *MockRepository) ListInvestors(ctx context.Context, stage *Stage) ([]Investor, error) {
	args := m.Called(ctx, stage)
	return args.Get(0).([]Investor), args.Error(1)
}

func (m *MockRepository) UpdateInvestor(ctx context.Context, inv *Investor) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockRepository) DeleteInvestor(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CreateSimulation(ctx context.Context, sim *Simulation) error {
	return m.Called(ctx, sim).Error(0)
}

func (m *MockRepository) GetSimulation(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Simulation), args.Error(1)
}

func (m *MockRepository) ListSimulations(ctx context.Context, limit int) ([]Simulation, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]Simulation), args.Error(1)
}

type staticCapTable struct {
	table captable.CapTable
	err   error
}

func (s staticCapTable) CurrentCapTable(context.Context) (captable.CapTable, error) {
	return s.table.Clone(), s.err
}

type MockCommentator struct {
	mock.Mock
}

func (m *MockCommentator) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockCommentator) ExplainDilution(ctx context.Context, result *captable.DilutionResult) (*assistant.DilutionAdvice, error) {
	args := m.Called(ctx, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.DilutionAdvice), args.Error(1)
}

func teamTable() captable.CapTable {
	return captable.CapTable{
		{Stakeholder: "Alex", Percentage: 40},
		{Stakeholder: "Ben", Percentage: 40},
		{Stakeholder: "Casey", Percentage: 5},
		{Stakeholder: "Dana", Percentage: 1},
		{Stakeholder: captable.ESOPKey, Percentage: 14},
	}
}

func TestMoveStage_FollowsPipeline(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil, nil, zap.NewNop())
	ctx := context.Background()

	inv := &Investor{ID: uuid.New(), Name: "Acme Ventures", Stage: StageLead}
	repo.On("GetInvestor", ctx, inv.ID).Return(inv, nil)
	repo.On("UpdateInvestor", ctx, inv).Return(nil)

	moved, err := svc.MoveStage(ctx, inv.ID, StageContacted)
	require.NoError(t, err)
	assert.Equal(t, StageContacted, moved.Stage)
	assert.NotNil(t, moved.LastContactAt)

	_, err = svc.MoveStage(ctx, inv.ID, StageCommitted)
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = svc.MoveStage(ctx, inv.ID, Stage("ghosted"))
	assert.ErrorIs(t, err, ErrInvalidStage)

	moved, err = svc.MoveStage(ctx, inv.ID, StagePassed)
	require.NoError(t, err)
	assert.Equal(t, StagePassed, moved.Stage)

	moved, err = svc.MoveStage(ctx, inv.ID, StageLead)
	require.NoError(t, err)
	assert.Equal(t, StageLead, moved.Stage)
}

func TestNextStages(t *testing.T) {
	assert.Equal(t, []Stage{StageTermSheet, StagePassed}, NextStages(StageDueDiligence))
	assert.Empty(t, NextStages(StageCommitted))
}

func TestCreateInvestor_Validation(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil, nil, zap.NewNop())

	_, err := svc.CreateInvestor(context.Background(), &CreateInvestorRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInvestor)

	_, err = svc.CreateInvestor(context.Background(), &CreateInvestorRequest{Name: "Acme", TargetAmount: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrInvalidInvestor)
	repo.AssertNotCalled(t, "CreateInvestor", mock.Anything, mock.Anything)
}

func TestPipeline(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("ListInvestors", ctx, (*Stage)(nil)).Return([]Investor{
		{Stage: StageCommitted, TargetAmount: decimal.RequireFromString("250000.50")},
		{Stage: StageCommitted, TargetAmount: decimal.NewFromInt(100000)},
		{Stage: StagePitched, TargetAmount: decimal.NewFromInt(500000)},
		{Stage: StagePassed, TargetAmount: decimal.NewFromInt(1000000)},
	}, nil)

	summary, err := svc.Pipeline(ctx)
	require.NoError(t, err)
	assert.Equal(t, "350000.5", summary.CommittedAmount.String())
	assert.Equal(t, "500000", summary.PipelineAmount.String())
	assert.Equal(t, 1, summary.ActiveInvestors)
	assert.Equal(t, 2, summary.Counts[StageCommitted])
	assert.Equal(t, 0, summary.Counts[StageTermSheet])
}

func TestSimulateRound_UsesTeamCapTable(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, staticCapTable{table: teamTable()}, nil, nil, zap.NewNop())
	ctx := context.Background()

	var stored *Simulation
	repo.On("CreateSimulation", ctx, mock.AnythingOfType("*fundraising.Simulation")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Simulation) }).
		Return(nil)

	resp, err := svc.SimulateRound(ctx, &SimulationRequest{Label: "Seed", Investment: 1_000_000, PreMoneyValuation: 5_000_000})
	require.NoError(t, err)

	require.NotNil(t, resp.ID)
	assert.Equal(t, stored.ID, *resp.ID)
	assert.Equal(t, SourceTeam, stored.Source)
	assert.InDelta(t, 16.6666667, resp.Result.NewInvestorPercentage, 1e-6)
	assert.InDelta(t, 100.0, resp.Result.CapTable.Total(), 1e-6)
	assert.Empty(t, resp.CommentaryError)

	var decoded captable.DilutionResult
	require.NoError(t, json.Unmarshal(stored.Result, &decoded))
	assert.Equal(t, resp.Result.CapTable.Stakeholders(), decoded.CapTable.Stakeholders())
}

func TestSimulateRound_CustomTableWithoutSaving(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil, nil, zap.NewNop())
	save := false

	resp, err := svc.SimulateRound(context.Background(), &SimulationRequest{
		Investment:        1_000_000,
		PreMoneyValuation: 4_000_000,
		CapTable:          captable.CapTable{{Stakeholder: "Alex", Percentage: 60}, {Stakeholder: "Ben", Percentage: 40}},
		Save:              &save,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.ID)

	alex, _ := resp.Result.CapTable.Get("Alex")
	assert.InDelta(t, 48.0, alex, 1e-9)
	repo.AssertNotCalled(t, "CreateSimulation", mock.Anything, mock.Anything)
}

func TestSimulateRound_RejectsBadTerms(t *testing.T) {
	svc := NewService(new(MockRepository), staticCapTable{table: teamTable()}, nil, nil, zap.NewNop())

	_, err := svc.SimulateRound(context.Background(), &SimulationRequest{Investment: 0, PreMoneyValuation: 5_000_000})
	var inputErr *captable.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "investment", inputErr.Field)
}

func TestSimulateRound_CommentaryFailureDoesNotBlock(t *testing.T) {
	repo := new(MockRepository)
	commentator := new(MockCommentator)
	svc := NewService(repo, staticCapTable{table: teamTable()}, commentator, nil, zap.NewNop())
	ctx := context.Background()

	commentator.On("Enabled").Return(true)
	commentator.On("ExplainDilution", ctx, mock.Anything).
		Return(nil, &assistant.ProviderError{Provider: "genai", Flow: "explain_dilution", Err: errors.New("timeout")})
	repo.On("CreateSimulation", ctx, mock.MatchedBy(func(s *Simulation) bool {
		return s.CommentaryError != "" && s.Commentary == nil
	})).Return(nil)

	resp, err := svc.SimulateRound(ctx, &SimulationRequest{Investment: 1_000_000, PreMoneyValuation: 5_000_000, WithCommentary: true})
	require.NoError(t, err)
	assert.Nil(t, resp.Commentary)
	assert.Contains(t, resp.CommentaryError, "timeout")
	assert.InDelta(t, 16.6666667, resp.Result.NewInvestorPercentage, 1e-6)
	repo.AssertExpectations(t)
}

func TestSimulateRound_WithCommentary(t *testing.T) {
	repo := new(MockRepository)
	commentator := new(MockCommentator)
	svc := NewService(repo, staticCapTable{table: teamTable()}, commentator, nil, zap.NewNop())
	ctx := context.Background()

	advice := &assistant.DilutionAdvice{Explanation: "Everyone drops by a sixth.", Advice: "Refresh the pool."}
	commentator.On("Enabled").Return(true)
	commentator.On("ExplainDilution", ctx, mock.Anything).Return(advice, nil)
	repo.On("CreateSimulation", ctx, mock.MatchedBy(func(s *Simulation) bool {
		return len(s.Commentary) > 0
	})).Return(nil)

	resp, err := svc.SimulateRound(ctx, &SimulationRequest{Investment: 1_000_000, PreMoneyValuation: 5_000_000, WithCommentary: true})
	require.NoError(t, err)
	assert.Equal(t, advice, resp.Commentary)
}

func TestSimulateRound_CommentaryDisabled(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, staticCapTable{table: teamTable()}, nil, nil, zap.NewNop())
	repo.On("CreateSimulation", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.SimulateRound(context.Background(), &SimulationRequest{Investment: 1, PreMoneyValuation: 1, WithCommentary: true})
	require.NoError(t, err)
	assert.Equal(t, assistant.ErrDisabled.Error(), resp.CommentaryError)
}

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestHandler_Simulate(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(NewService(repo, staticCapTable{table: teamTable()}, nil, nil, zap.NewNop()))
	repo.On("CreateSimulation", mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fundraising/simulations",
		strings.NewReader(`{"label":"Seed","investment":1000000,"pre_money_valuation":5000000}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"New Investor"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/fundraising/simulations",
		strings.NewReader(`{"investment":1000000,"pre_money_valuation":-1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_MoveStageConflict(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(NewService(repo, nil, nil, nil, zap.NewNop()))
	inv := &Investor{ID: uuid.New(), Name: "Acme", Stage: StageCommitted}
	repo.On("GetInvestor", mock.Anything, inv.ID).Return(inv, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fundraising/investors/"+inv.ID.String()+"/stage",
		strings.NewReader(`{"stage":"lead"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}
