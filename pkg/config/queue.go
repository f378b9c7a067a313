package config

import "time"

// QueueConfig contains queue and worker pool configuration.
// These values control how pending jobs are polled, claimed, and run
// through the scheduling orchestrator.
type QueueConfig struct {
	// WorkerCount is the number of worker goroutines per replica/pod.
	// Each worker independently polls and processes jobs.
	WorkerCount int `yaml:"worker_count"`

	// ClaimBatchSize is validated but not read by the workers: each poll
	// claims exactly one job in one FOR UPDATE SKIP LOCKED transaction.
	ClaimBatchSize int `yaml:"claim_batch_size"`

	// PollInterval is the base interval for checking pending jobs.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollIntervalJitter is the random jitter added to PollInterval.
	// Actual interval: PollInterval ± PollIntervalJitter.
	PollIntervalJitter time.Duration `yaml:"poll_interval_jitter"`

	// JobTimeout is the maximum time a single orchestration call may run.
	JobTimeout time.Duration `yaml:"job_timeout"`

	// GracefulShutdownTimeout is validated but not read by WorkerPool.Stop,
	// which waits for every worker's current job without a time limit.
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	// OrphanDetectionInterval is how often to scan for orphaned claims.
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`

	// OrphanThreshold is how long after its claim a job may stay claimed
	// before it is considered orphaned and requeued. Claims are not
	// refreshed while a job runs, so the age counts from the claim time.
	OrphanThreshold time.Duration `yaml:"orphan_threshold"`

	// HeartbeatInterval is validated but not read by the workers, which do
	// not refresh their claims.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// DefaultQueueConfig returns the built-in queue defaults.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		WorkerCount:             5,
		ClaimBatchSize:          1,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		JobTimeout:              2 * time.Minute,
		GracefulShutdownTimeout: 2 * time.Minute,
		OrphanDetectionInterval: 1 * time.Minute,
		OrphanThreshold:         5 * time.Minute,
		HeartbeatInterval:       30 * time.Second,
	}
}
