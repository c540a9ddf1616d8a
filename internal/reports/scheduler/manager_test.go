package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/team"
)

type MockSnapshotTaker struct {
	mock.Mock
}

func (m *MockSnapshotTaker) TakeSnapshot(ctx context.Context, reason string) (*team.CapTableSnapshot, error) {
	args := m.Called(ctx, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*team.CapTableSnapshot), args.Error(1)
}

func TestAddJob_RejectsBadSpec(t *testing.T) {
	m := NewManager(time.Second, zap.NewNop())
	err := m.AddJob("snapshot", "every night", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestAddJob_ReplacesByName(t *testing.T) {
	m := NewManager(time.Second, zap.NewNop())
	noop := func(context.Context) error { return nil }

	require.NoError(t, m.AddJob("snapshot", "0 0 2 * * *", noop))
	require.NoError(t, m.AddJob("snapshot", "0 30 3 * * *", noop))
	assert.Len(t, m.cron.Entries(), 1)

	m.RemoveJob("snapshot")
	_, ok := m.NextRun("snapshot")
	assert.False(t, ok)
}

func TestManager_RunsJobs(t *testing.T) {
	m := NewManager(time.Second, zap.NewNop())
	fired := make(chan struct{}, 1)

	require.NoError(t, m.AddJob("tick", "* * * * * *", func(context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}))
	require.NoError(t, m.Start())
	defer m.Stop()
	assert.Error(t, m.Start())

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestSnapshotJob(t *testing.T) {
	taker := new(MockSnapshotTaker)
	ctx := context.Background()

	taker.On("TakeSnapshot", ctx, "scheduled").Return(&team.CapTableSnapshot{Reason: "scheduled"}, nil).Once()
	assert.NoError(t, SnapshotJob(taker)(ctx))

	taker.On("TakeSnapshot", ctx, "scheduled").Return(nil, errors.New("db down")).Once()
	assert.Error(t, SnapshotJob(taker)(ctx))
	taker.AssertExpectations(t)
}
