package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dirac-wms/jobsched/pkg/config"
	"github.com/dirac-wms/jobsched/pkg/scheduling"
)

// Store is the full surface the pool and its workers need from the job
// store: claiming jobs for processing and recovering stale claims left
// behind by a crashed worker.
type Store interface {
	ClaimJobs(ctx context.Context, workerID string, batchSize int) ([]int64, error)
	ReleaseClaim(ctx context.Context, jid int64) error
	RequeueForHold(ctx context.Context, jid int64) error
	StaleClaims(ctx context.Context, threshold time.Duration) ([]int64, error)
	SetStatus(ctx context.Context, jid int64, major, minor, appStatus, source string) error
}

// WorkerPool manages a pool of queue workers that all claim jobs from the
// same Store and drive them through the same orchestrator.
type WorkerPool struct {
	podID   string
	store   Store
	orch    *scheduling.Orchestrator
	config  *config.QueueConfig
	workers []*Worker
	stopCh  chan struct{}
	stopOnce sync.Once
	wg      sync.WaitGroup

	started bool
	mu      sync.RWMutex

	orphans orphanState
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(podID string, store Store, orch *scheduling.Orchestrator, cfg *config.QueueConfig) *WorkerPool {
	return &WorkerPool{
		podID:   podID,
		store:   store,
		orch:    orch,
		config:  cfg,
		workers: make([]*Worker, 0, cfg.WorkerCount),
		stopCh:  make(chan struct{}),
	}
}

// Start spawns worker goroutines and the orphan detection background task.
// It is safe to call multiple times; subsequent calls are no-ops.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		slog.Warn("worker pool already started, ignoring duplicate Start call", "pod_id", p.podID)
		return nil
	}
	p.started = true
	p.mu.Unlock()

	slog.Info("starting worker pool", "pod_id", p.podID, "worker_count", p.config.WorkerCount)

	if err := CleanupStartupOrphans(ctx, p.store, p.config.OrphanThreshold); err != nil {
		slog.Error("startup orphan cleanup failed", "pod_id", p.podID, "error", err)
	}

	for i := 0; i < p.config.WorkerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", p.podID, i)
		worker := NewWorker(workerID, p.podID, p.store, p.orch, p.config)
		p.workers = append(p.workers, worker)
		worker.Start(ctx)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanDetection(ctx)
	}()

	slog.Info("worker pool started")
	return nil
}

// Stop signals all workers to stop and waits for them to finish. Workers
// finish their current job before exiting (graceful shutdown).
func (p *WorkerPool) Stop() {
	slog.Info("stopping worker pool gracefully")

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	slog.Info("worker pool stopped gracefully")
}

// Health returns the current health status of the pool.
func (p *WorkerPool) Health() *PoolHealth {
	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, worker := range p.workers {
		stats := worker.Health()
		workerStats[i] = stats
		if stats.Status == string(WorkerStatusWorking) {
			activeWorkers++
		}
	}

	p.orphans.mu.Lock()
	lastOrphanScan := p.orphans.lastOrphanScan
	orphansRecovered := p.orphans.orphansRecovered
	p.orphans.mu.Unlock()

	return &PoolHealth{
		IsHealthy:        len(p.workers) > 0,
		PodID:            p.podID,
		ActiveWorkers:    activeWorkers,
		TotalWorkers:     len(p.workers),
		WorkerStats:      workerStats,
		LastOrphanScan:   lastOrphanScan,
		OrphansRecovered: orphansRecovered,
	}
}
