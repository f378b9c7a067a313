// Package queue is the minimal concrete stand-in for the host
// "optimizer executor" framework (spec.md §1/§6): a worker pool that
// claims jobs awaiting a scheduling decision, runs them through
// scheduling.Orchestrator, and maps its Forward/Hold/Fail outcome back
// onto the job store.
package queue

import (
	"errors"
	"time"
)

// Job status values the worker pool transitions jobs through. "Received"
// is the claimable state; "Checking" is held only while a worker owns the
// claim; "Waiting" and "Failed" are the outcomes of a completed decision.
const (
	StatusReceived = "Received"
	StatusChecking = "Checking"
	StatusWaiting  = "Waiting"
	StatusFailed   = "Failed"
)

// Sentinel errors for queue operations, matching the teacher's
// pkg/queue/types.go sentinel style.
var (
	// ErrNoJobsAvailable indicates no claimable jobs are in the queue.
	ErrNoJobsAvailable = errors.New("no jobs available")
)

// PoolHealth reports the aggregate health of a worker pool.
type PoolHealth struct {
	IsHealthy        bool           `json:"is_healthy"`
	PodID            string         `json:"pod_id"`
	ActiveWorkers    int            `json:"active_workers"`
	TotalWorkers     int            `json:"total_workers"`
	WorkerStats      []WorkerHealth `json:"worker_stats"`
	LastOrphanScan   time.Time      `json:"last_orphan_scan"`
	OrphansRecovered int            `json:"orphans_recovered"`
}

// WorkerHealth reports the health of a single worker.
type WorkerHealth struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"` // "idle" or "working"
	CurrentJobID   int64     `json:"current_job_id,omitempty"`
	JobsProcessed  int       `json:"jobs_processed"`
	LastActivity   time.Time `json:"last_activity"`
}
