package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, req *Request) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func flowIs(flow string) interface{} {
	return mock.MatchedBy(func(r *Request) bool { return r.Flow == flow })
}

func TestExplainDilution(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, time.Second, zap.NewNop())

	table := captable.CapTable{
		{Stakeholder: "Alex", Percentage: 50},
		{Stakeholder: captable.ESOPKey, Percentage: 50},
	}
	result, err := captable.SimulateRound(table, captable.FundingRoundInput{Investment: 1_000_000, PreMoneyValuation: 4_000_000, Label: "Seed"})
	require.NoError(t, err)

	provider.On("Generate", mock.Anything, mock.MatchedBy(func(r *Request) bool {
		return r.Flow == "explain_dilution" &&
			strings.Contains(r.Prompt, "Seed funding round") &&
			strings.Contains(r.Prompt, "Alex: 50.00% -> 40.00%") &&
			r.System != ""
	})).Return([]byte(`{"explanation":"You sold 20%.","advice":"Top up the pool."}`), nil)

	advice, err := svc.ExplainDilution(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "You sold 20%.", advice.Explanation)
	assert.Equal(t, "Top up the pool.", advice.Advice)
	provider.AssertExpectations(t)
}

func TestExplainDilution_MissingField(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, 0, zap.NewNop())
	provider.On("Generate", mock.Anything, flowIs("explain_dilution")).
		Return([]byte(`{"explanation":"only half"}`), nil)

	_, err := svc.ExplainDilution(context.Background(), &captable.DilutionResult{})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestExplainDilution_ProviderFailure(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, 0, zap.NewNop())
	provider.On("Generate", mock.Anything, flowIs("explain_dilution")).
		Return(nil, &ProviderError{Provider: "mock", Flow: "explain_dilution", Err: errors.New("quota")})

	_, err := svc.ExplainDilution(context.Background(), &captable.DilutionResult{})
	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "mock", providerErr.Provider)
}

func TestDisabledService(t *testing.T) {
	svc := NewService(nil, 0, zap.NewNop())
	assert.False(t, svc.Enabled())

	_, err := svc.DraftWikiPage(context.Background(), WikiBrief{Title: "Onboarding"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestAnswerDocumentQuestion(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, 0, zap.NewNop())

	_, err := svc.AnswerDocumentQuestion(context.Background(), DocumentQuestion{DocumentName: "SAFE.txt", Content: "cap 8M"})
	assert.Error(t, err)
	provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	provider.On("Generate", mock.Anything, mock.MatchedBy(func(r *Request) bool {
		return strings.Contains(r.Prompt, "cap 8M") && strings.Contains(r.Prompt, "What is the cap?")
	})).Return([]byte(`{"answer":"The valuation cap is 8M."}`), nil)

	answer, err := svc.AnswerDocumentQuestion(context.Background(), DocumentQuestion{
		DocumentName: "SAFE.txt",
		Content:      "cap 8M",
		Question:     "What is the cap?",
	})
	require.NoError(t, err)
	assert.Equal(t, "The valuation cap is 8M.", answer.Answer)
}

func TestCommentOnFinances_OptionalLists(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, 0, zap.NewNop())
	provider.On("Generate", mock.Anything, flowIs("comment_on_finances")).
		Return([]byte(`{"summary":"Healthy.","risks":["Single customer"]}`), nil)

	out, err := svc.CommentOnFinances(context.Background(), FinancialSnapshot{Income: "10", Expenses: "5", Net: "5"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Single customer"}, out.Risks)
	assert.Empty(t, out.Recommendations)
}

func TestDecodeShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", `{"summary":"x","risks":["a"]}`, true},
		{"not json", `summary: x`, false},
		{"blank required", `{"summary":"  "}`, false},
		{"wrong list type", `{"summary":"x","risks":"a"}`, false},
		{"null optional", `{"summary":"x","risks":null}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out FinancialCommentary
			err := decodeShape([]byte(tt.raw), financeShape, &out)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedOutput)
			}
		})
	}
}

func TestHandler_DraftWiki(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := new(MockProvider)
	handler := NewHandler(NewService(provider, 0, zap.NewNop()), zap.NewNop())
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))

	provider.On("Generate", mock.Anything, flowIs("draft_wiki_page")).
		Return([]byte(`{"title":"Onboarding","markdown":"# Onboarding"}`), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/wiki/draft", strings.NewReader(`{"title":"Onboarding","outline":["Tools"]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Onboarding")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/assistant/wiki/draft", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DisabledReturns503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(nil, 0, zap.NewNop()), zap.NewNop())
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/wiki/draft", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
