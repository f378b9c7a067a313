package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dirac-wms/jobsched/pkg/config"
	"github.com/dirac-wms/jobsched/pkg/scheduling"
)

// WorkerStatus is a worker's current activity state.
type WorkerStatus string

// Worker status constants.
const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// ClaimStore is the subset of catalog.PostgresJobStore the worker needs to
// claim and requeue jobs, and to write back the terminal status a
// completed decision leaves the job in, kept separate from
// collab.JobStateStore because claiming is a queue-ownership concern, not
// a scheduling-core concern.
type ClaimStore interface {
	ClaimJobs(ctx context.Context, workerID string, batchSize int) ([]int64, error)
	ReleaseClaim(ctx context.Context, jid int64) error
	RequeueForHold(ctx context.Context, jid int64) error
	SetStatus(ctx context.Context, jid int64, major, minor, appStatus, source string) error
}

// runner is the subset of scheduling.Orchestrator the worker drives,
// narrowed to an interface so tests can substitute a fake outcome.
type runner interface {
	Run(ctx context.Context, jid int64) (scheduling.Outcome, error)
}

// Worker polls for claimable jobs and runs each one through the
// scheduling orchestrator, one at a time, to completion.
type Worker struct {
	id      string
	podID   string
	claims  ClaimStore
	orch    runner
	config  *config.QueueConfig
	stopCh  chan struct{}
	stopOnce sync.Once
	wg      sync.WaitGroup

	mu            sync.RWMutex
	status        WorkerStatus
	currentJobID  int64
	jobsProcessed int
	lastActivity  time.Time
}

// NewWorker creates a worker bound to a claim store and orchestrator.
func NewWorker(id, podID string, claims ClaimStore, orch runner, cfg *config.QueueConfig) *Worker {
	return &Worker{
		id: id, podID: podID, claims: claims, orch: orch, config: cfg,
		stopCh: make(chan struct{}), status: WorkerStatusIdle, lastActivity: time.Now(),
	}
}

// Start begins the worker's polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for its current job to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health reports the worker's current activity.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID: w.id, Status: string(w.status), CurrentJobID: w.currentJobID,
		JobsProcessed: w.jobsProcessed, LastActivity: w.lastActivity,
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id, "pod_id", w.podID)
	log.Info("worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("worker shutting down")
			return
		case <-ctx.Done():
			log.Info("context cancelled, worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, ErrNoJobsAvailable) {
					w.sleep(w.pollInterval())
					continue
				}
				log.Error("error processing job", "error", err)
				w.sleep(time.Second)
			}
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// pollAndProcess claims one job and runs it through the orchestrator.
func (w *Worker) pollAndProcess(ctx context.Context) error {
	ids, err := w.claims.ClaimJobs(ctx, w.id, 1)
	if err != nil {
		return fmt.Errorf("claiming job: %w", err)
	}
	if len(ids) == 0 {
		return ErrNoJobsAvailable
	}
	jid := ids[0]

	log := slog.With("job_id", jid, "worker_id", w.id)
	log.Info("job claimed")
	w.setStatus(WorkerStatusWorking, jid)
	defer w.setStatus(WorkerStatusIdle, 0)

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	outcome, err := w.orch.Run(jobCtx, jid)
	if err != nil {
		if releaseErr := w.claims.ReleaseClaim(context.Background(), jid); releaseErr != nil {
			log.Error("failed to release claim after orchestration error", "error", releaseErr)
		}
		return fmt.Errorf("orchestrating job %d: %w", jid, err)
	}

	switch {
	case outcome.IsForward():
		if err := w.claims.SetStatus(context.Background(), jid, StatusWaiting, "", "", ""); err != nil {
			return fmt.Errorf("setting waiting status for job %d: %w", jid, err)
		}
	case outcome.IsFail():
		if err := w.claims.SetStatus(context.Background(), jid, StatusFailed, "", outcome.Message, ""); err != nil {
			return fmt.Errorf("setting failed status for job %d: %w", jid, err)
		}
	case outcome.IsHold():
		if err := w.claims.RequeueForHold(context.Background(), jid); err != nil {
			return fmt.Errorf("requeuing held job %d: %w", jid, err)
		}
	}

	w.mu.Lock()
	w.jobsProcessed++
	w.mu.Unlock()

	log.Info("job decision complete", "outcome", outcome.Kind.String())
	return nil
}

func (w *Worker) pollInterval() time.Duration {
	base := w.config.PollInterval
	jitter := w.config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

func (w *Worker) setStatus(status WorkerStatus, jid int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentJobID = jid
	w.lastActivity = time.Now()
}
