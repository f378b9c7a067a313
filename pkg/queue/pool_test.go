package queue

import (
	"context"
	"testing"
	"time"

	"github.com/dirac-wms/jobsched/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore extends fakeClaimStore with StaleClaims to satisfy the pool's
// Store interface.
type fakeStore struct {
	fakeClaimStore
	staleIDs []int64
	staleErr error
}

func (f *fakeStore) StaleClaims(_ context.Context, _ time.Duration) ([]int64, error) {
	if f.staleErr != nil {
		return nil, f.staleErr
	}
	return f.staleIDs, nil
}

func testPoolConfig() *config.QueueConfig {
	cfg := testQueueConfig()
	cfg.WorkerCount = 2
	return cfg
}

func TestWorkerPoolHealthBeforeStart(t *testing.T) {
	pool := NewWorkerPool("pod-1", &fakeStore{}, nil, testPoolConfig())

	h := pool.Health()
	assert.False(t, h.IsHealthy)
	assert.Equal(t, 0, h.TotalWorkers)
}

func TestWorkerPoolStartSpawnsWorkers(t *testing.T) {
	store := &fakeStore{}
	pool := NewWorkerPool("pod-1", store, nil, testPoolConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, pool.Start(ctx))
	h := pool.Health()
	assert.True(t, h.IsHealthy)
	assert.Equal(t, 2, h.TotalWorkers)

	pool.Stop()
}

func TestWorkerPoolStartIdempotent(t *testing.T) {
	store := &fakeStore{}
	pool := NewWorkerPool("pod-1", store, nil, testPoolConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, pool.Start(ctx))
	require.NoError(t, pool.Start(ctx))
	assert.Equal(t, 2, pool.Health().TotalWorkers)

	pool.Stop()
}

func TestDetectAndRecoverOrphansUpdatesHealth(t *testing.T) {
	store := &fakeStore{staleIDs: []int64{1, 2}}
	pool := NewWorkerPool("pod-1", store, nil, testPoolConfig())

	err := pool.detectAndRecoverOrphans(context.Background())
	require.NoError(t, err)

	h := pool.Health()
	assert.Equal(t, 2, h.OrphansRecovered)
	assert.False(t, h.LastOrphanScan.IsZero())
	assert.ElementsMatch(t, []int64{1, 2}, store.released)
}

func TestDetectAndRecoverOrphansNoneFound(t *testing.T) {
	store := &fakeStore{}
	pool := NewWorkerPool("pod-1", store, nil, testPoolConfig())

	err := pool.detectAndRecoverOrphans(context.Background())
	require.NoError(t, err)

	h := pool.Health()
	assert.Equal(t, 0, h.OrphansRecovered)
	assert.False(t, h.LastOrphanScan.IsZero())
}

func TestCleanupStartupOrphansReleasesStaleClaims(t *testing.T) {
	store := &fakeStore{staleIDs: []int64{10, 11, 12}}

	err := CleanupStartupOrphans(context.Background(), store, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 11, 12}, store.released)
}
