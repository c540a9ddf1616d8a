package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/finance"
	"founder-portal/ops-portal/ops-portal-backend/internal/fundraising"
	"founder-portal/ops-portal/ops-portal-backend/internal/milestones"
	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
	"founder-portal/ops-portal/ops-portal-backend/internal/team"
)

const summaryKey = "summary"

type CapTableSource interface {
	CapTable(ctx context.Context) (*team.CapTableView, error)
}

type PipelineSource interface {
	Pipeline(ctx context.Context) (*fundraising.PipelineSummary, error)
}

type ProgressSource interface {
	Progress(ctx context.Context) (*milestones.Progress, error)
}

type FinanceSource interface {
	Summarize(ctx context.Context, req finance.SummaryRequest) (*finance.Summary, error)
}

// Summary is the founder's at-a-glance view of the company
type Summary struct {
	TeamSize        int                  `json:"team_size"`
	Unallocated     float64              `json:"unallocated"`
	OverAllocated   bool                 `json:"over_allocated"`
	ActiveInvestors int                  `json:"active_investors"`
	CommittedAmount decimal.Decimal      `json:"committed_amount"`
	Milestones      *milestones.Progress `json:"milestones,omitempty"`
	NetCashFlow     decimal.Decimal      `json:"net_cash_flow"`
	MonthlyBurn     decimal.Decimal      `json:"monthly_burn"`
	Warnings        []string             `json:"warnings,omitempty"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// Sources bundles the services the dashboard reads from
type Sources struct {
	CapTable   CapTableSource
	Pipeline   PipelineSource
	Milestones ProgressSource
	Finance    FinanceSource
}

// Aggregator builds dashboard summaries from the domain services
type Aggregator struct {
	sources Sources
	cache   *Cache
	logger  *zap.Logger
}

func NewAggregator(sources Sources, cache *Cache, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		sources: sources,
		cache:   cache,
		logger:  logger,
	}
}

// Summary returns the cached summary or computes a fresh one. A failing
// source is reported in Warnings and leaves its fields at zero; partial
// summaries and summaries invalidated mid-build are not cached.
func (a *Aggregator) Summary(ctx context.Context) *Summary {
	if cached, ok := a.cache.Get(summaryKey); ok {
		return cached
	}
	gen := a.cache.Generation()

	summary := &Summary{
		CommittedAmount: decimal.Zero,
		NetCashFlow:     decimal.Zero,
		MonthlyBurn:     decimal.Zero,
		GeneratedAt:     time.Now().UTC(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	warn := func(source string, err error) {
		a.logger.Warn("Dashboard source failed", zap.String("source", source), zap.Error(err))
		mu.Lock()
		summary.Warnings = append(summary.Warnings, source+" unavailable")
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		view, err := a.sources.CapTable.CapTable(ctx)
		if err != nil {
			warn("cap_table", err)
			return
		}
		mu.Lock()
		summary.TeamSize = view.MemberCount
		summary.Unallocated = view.Unallocated
		summary.OverAllocated = view.OverAllocated
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		pipeline, err := a.sources.Pipeline.Pipeline(ctx)
		if err != nil {
			warn("pipeline", err)
			return
		}
		mu.Lock()
		summary.ActiveInvestors = pipeline.ActiveInvestors
		summary.CommittedAmount = pipeline.CommittedAmount
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		progress, err := a.sources.Milestones.Progress(ctx)
		if err != nil {
			warn("milestones", err)
			return
		}
		mu.Lock()
		summary.Milestones = progress
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		fin, err := a.sources.Finance.Summarize(ctx, finance.SummaryRequest{})
		if err != nil {
			warn("finance", err)
			return
		}
		mu.Lock()
		summary.NetCashFlow = fin.Net
		summary.MonthlyBurn = fin.MonthlyBurn
		mu.Unlock()
	}()
	wg.Wait()

	if len(summary.Warnings) == 0 {
		// data changed while gathering; the next call recomputes
		if !a.cache.SetIfGeneration(summaryKey, summary, gen) {
			a.logger.Debug("Dashboard summary invalidated during build, not caching")
		}
	}
	return summary
}

// Invalidate drops cached summaries.
func (a *Aggregator) Invalidate() {
	a.cache.Invalidate("")
}

// Subscriber invalidates the cache whenever domain data changes.
func (a *Aggregator) Subscriber() notifications.Subscriber {
	return func(ev notifications.Event) {
		switch ev.Type {
		case notifications.EventCapTableUpdated,
			notifications.EventInvestorUpdated,
			notifications.EventMilestoneUpdated,
			notifications.EventFinanceUpdated,
			notifications.EventSimulationCreated:
			a.Invalidate()
		}
	}
}
