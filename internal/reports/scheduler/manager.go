package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/team"
)

// Job is a unit of scheduled work
type Job func(ctx context.Context) error

// SnapshotTaker stores a copy of the current cap table
type SnapshotTaker interface {
	TakeSnapshot(ctx context.Context, reason string) (*team.CapTableSnapshot, error)
}

// Manager runs named jobs on cron expressions with a seconds field
type Manager struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	timeout time.Duration
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
}

func NewManager(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		cron:    cron.New(cron.WithSeconds()),
		jobs:    make(map[string]cron.EntryID),
		timeout: timeout,
		logger:  logger,
	}
}

// AddJob registers job under name. Re-adding a name replaces the previous entry.
func (m *Manager) AddJob(name, spec string, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.jobs[name]; ok {
		m.cron.Remove(id)
		delete(m.jobs, name)
	}

	id, err := m.cron.AddFunc(spec, func() { m.run(name, job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	m.jobs[name] = id

	m.logger.Info("Scheduled job registered", zap.String("job", name), zap.String("cron", spec))
	return nil
}

// RemoveJob unregisters name if present.
func (m *Manager) RemoveJob(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.jobs[name]; ok {
		m.cron.Remove(id)
		delete(m.jobs, name)
	}
}

// NextRun reports when name fires next.
func (m *Manager) NextRun(name string) (time.Time, bool) {
	m.mu.Lock()
	id, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return m.cron.Entry(id).Next, true
}

func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("scheduler already running")
	}
	m.running = true
	m.cron.Start()
	m.logger.Info("Scheduler started", zap.Int("jobs", len(m.jobs)))
	return nil
}

// Stop waits for running jobs to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	<-m.cron.Stop().Done()
	m.running = false
	m.logger.Info("Scheduler stopped")
}

func (m *Manager) run(name string, job Job) {
	ctx := context.Background()
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		m.logger.Error("Scheduled job failed",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}
	m.logger.Debug("Scheduled job completed", zap.String("job", name), zap.Duration("elapsed", time.Since(start)))
}

// SnapshotJob stores a scheduled cap table snapshot.
func SnapshotJob(taker SnapshotTaker) Job {
	return func(ctx context.Context) error {
		_, err := taker.TakeSnapshot(ctx, "scheduled")
		return err
	}
}
