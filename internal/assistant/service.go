package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/captable"
)

// Service runs the generative flows. A nil provider disables every flow.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

func NewService(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// DilutionAdvice is narrative commentary on a simulated round
type DilutionAdvice struct {
	Explanation string `json:"explanation"`
	Advice      string `json:"advice"`
}

// ExplainDilution explains a dilution result and suggests next steps.
func (s *Service) ExplainDilution(ctx context.Context, result *captable.DilutionResult) (*DilutionAdvice, error) {
	var out DilutionAdvice
	if err := s.run(ctx, "explain_dilution", dilutionTemplate, result, dilutionShape, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DocumentQuestion asks about the text of one document
type DocumentQuestion struct {
	DocumentName string
	Content      string
	Question     string
}

// DocumentAnswer
type DocumentAnswer struct {
	Answer string `json:"answer"`
}

// AnswerDocumentQuestion answers a question grounded in a document's text.
func (s *Service) AnswerDocumentQuestion(ctx context.Context, q DocumentQuestion) (*DocumentAnswer, error) {
	if strings.TrimSpace(q.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}
	var out DocumentAnswer
	if err := s.run(ctx, "answer_document_question", documentTemplate, q, documentShape, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MilestoneBrief is what the founder knows about a milestone
type MilestoneBrief struct {
	Title      string
	Category   string
	TargetDate string
	Notes      string
}

// MilestoneDescription
type MilestoneDescription struct {
	Description string `json:"description"`
}

// DescribeMilestone drafts a milestone description.
func (s *Service) DescribeMilestone(ctx context.Context, brief MilestoneBrief) (*MilestoneDescription, error) {
	var out MilestoneDescription
	if err := s.run(ctx, "describe_milestone", milestoneTemplate, brief, milestoneShape, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WikiBrief
type WikiBrief struct {
	Title    string   `json:"title" binding:"required"`
	Audience string   `json:"audience"`
	Outline  []string `json:"outline"`
}

// WikiDraft is a generated wiki page
type WikiDraft struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// DraftWikiPage drafts an internal wiki page.
func (s *Service) DraftWikiPage(ctx context.Context, brief WikiBrief) (*WikiDraft, error) {
	var out WikiDraft
	if err := s.run(ctx, "draft_wiki_page", wikiTemplate, brief, wikiShape, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CategoryAmount is a pre-formatted per-category total
type CategoryAmount struct {
	Category string
	Amount   string
}

// FinancialSnapshot is the formatted input for financial commentary
type FinancialSnapshot struct {
	PeriodStart  string
	PeriodEnd    string
	Income       string
	Expenses     string
	Net          string
	MonthlyBurn  string
	RunwayMonths string
	Categories   []CategoryAmount
}

// FinancialCommentary
type FinancialCommentary struct {
	Summary         string   `json:"summary"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// CommentOnFinances reviews a financial summary.
func (s *Service) CommentOnFinances(ctx context.Context, snap FinancialSnapshot) (*FinancialCommentary, error) {
	var out FinancialCommentary
	if err := s.run(ctx, "comment_on_finances", financeTemplate, snap, financeShape, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) run(ctx context.Context, flow string, tmpl *template.Template, input interface{}, shape Shape, out interface{}) error {
	if !s.Enabled() {
		return ErrDisabled
	}

	var prompt bytes.Buffer
	if err := tmpl.Execute(&prompt, input); err != nil {
		return fmt.Errorf("failed to render %s prompt: %w", flow, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.provider.Generate(ctx, &Request{
		Flow:   flow,
		System: systemPrompt,
		Prompt: prompt.String(),
		Output: shape,
	})
	if err != nil {
		s.logger.Warn("Assistant flow failed", zap.String("flow", flow), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return err
	}

	if err := decodeShape(raw, shape, out); err != nil {
		s.logger.Warn("Assistant returned malformed output", zap.String("flow", flow), zap.Error(err))
		return err
	}

	s.logger.Debug("Assistant flow completed", zap.String("flow", flow), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// decodeShape checks raw against shape and then decodes it into out.
func decodeShape(raw []byte, shape Shape, out interface{}) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	for _, f := range shape.Fields {
		value, ok := fields[f.Name]
		if !ok || string(value) == "null" {
			if f.Required {
				return fmt.Errorf("%w: missing %q", ErrMalformedOutput, f.Name)
			}
			continue
		}

		switch f.Type {
		case FieldString:
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("%w: %q must be a string", ErrMalformedOutput, f.Name)
			}
			if f.Required && strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: %q is empty", ErrMalformedOutput, f.Name)
			}
		case FieldStringList:
			var list []string
			if err := json.Unmarshal(value, &list); err != nil {
				return fmt.Errorf("%w: %q must be a list of strings", ErrMalformedOutput, f.Name)
			}
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
