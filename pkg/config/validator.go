package config

import "fmt"

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast - stops at first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateQueue(); err != nil {
		return fmt.Errorf("queue validation failed: %w", err)
	}

	if err := v.validateScheduling(); err != nil {
		return fmt.Errorf("scheduling validation failed: %w", err)
	}

	if err := v.validateDatabase(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateQueue() error {
	q := v.cfg.Queue
	if q == nil {
		return fmt.Errorf("queue configuration is nil")
	}

	if q.WorkerCount < 1 || q.WorkerCount > 50 {
		return fmt.Errorf("worker_count must be between 1 and 50, got %d", q.WorkerCount)
	}
	if q.ClaimBatchSize < 1 {
		return fmt.Errorf("claim_batch_size must be at least 1, got %d", q.ClaimBatchSize)
	}
	if q.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", q.PollInterval)
	}
	if q.PollIntervalJitter < 0 {
		return fmt.Errorf("poll_interval_jitter must be non-negative, got %v", q.PollIntervalJitter)
	}
	if q.PollIntervalJitter >= q.PollInterval {
		return fmt.Errorf("poll_interval_jitter must be less than poll_interval, got jitter=%v interval=%v", q.PollIntervalJitter, q.PollInterval)
	}
	if q.JobTimeout <= 0 {
		return fmt.Errorf("job_timeout must be positive, got %v", q.JobTimeout)
	}
	if q.GracefulShutdownTimeout <= 0 {
		return fmt.Errorf("graceful_shutdown_timeout must be positive, got %v", q.GracefulShutdownTimeout)
	}
	if q.OrphanDetectionInterval <= 0 {
		return fmt.Errorf("orphan_detection_interval must be positive, got %v", q.OrphanDetectionInterval)
	}
	if q.OrphanThreshold <= 0 {
		return fmt.Errorf("orphan_threshold must be positive, got %v", q.OrphanThreshold)
	}
	if q.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive, got %v", q.HeartbeatInterval)
	}
	if q.HeartbeatInterval >= q.OrphanThreshold {
		return fmt.Errorf("heartbeat_interval must be less than orphan_threshold to prevent false orphan detection, got heartbeat=%v threshold=%v", q.HeartbeatInterval, q.OrphanThreshold)
	}

	return nil
}

func (v *Validator) validateScheduling() error {
	s := v.cfg.Scheduling
	if s == nil {
		return fmt.Errorf("scheduling configuration is nil")
	}

	if len(s.RescheduleDelays) == 0 {
		return NewValidationError("scheduling", "", "reschedule_delays", fmt.Errorf("must contain at least one delay"))
	}
	for i, d := range s.RescheduleDelays {
		if d < 0 {
			return NewValidationError("scheduling", "", "reschedule_delays", fmt.Errorf("delay at index %d must be non-negative, got %d", i, d))
		}
	}
	if s.HoldTime < 0 {
		return NewValidationError("scheduling", "", "hold_time_seconds", fmt.Errorf("must be non-negative"))
	}
	if s.StagingStatus == "" {
		return NewValidationError("scheduling", "", "staging_status", fmt.Errorf("must not be empty"))
	}
	if s.StagingStatusRequestToBeSent == "" {
		return NewValidationError("scheduling", "", "staging_minor_request_to_be_sent", fmt.Errorf("must not be empty"))
	}
	if s.StagingStatusRequestSent == "" {
		return NewValidationError("scheduling", "", "staging_minor_request_sent", fmt.Errorf("must not be empty"))
	}
	if s.InputDataAgent == "" {
		return NewValidationError("scheduling", "", "input_data_agent", fmt.Errorf("must not be empty"))
	}

	return nil
}

func (v *Validator) validateDatabase() error {
	d := v.cfg.Database
	if d == nil {
		return fmt.Errorf("database configuration is nil")
	}

	if d.Host == "" {
		return NewValidationError("database", "", "host", fmt.Errorf("must not be empty"))
	}
	if d.Port <= 0 || d.Port > 65535 {
		return NewValidationError("database", "", "port", fmt.Errorf("must be between 1 and 65535, got %d", d.Port))
	}
	if d.Database == "" {
		return NewValidationError("database", "", "database", fmt.Errorf("must not be empty"))
	}
	if d.MaxOpenConns < 1 {
		return NewValidationError("database", "", "max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > d.MaxOpenConns {
		return NewValidationError("database", "", "max_idle_conns", fmt.Errorf("must be between 0 and max_open_conns"))
	}

	return nil
}
