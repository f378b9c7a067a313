package config

// Config is the umbrella configuration object returned by Initialize and
// threaded through cmd/jobsched into the scheduling core's collaborators.
type Config struct {
	configDir string

	// Scheduling carries the observable scheduling-core configuration
	// enumerated in spec.md §9 ("Config enumeration"): reschedule back-off,
	// hold behaviour, staging status strings, and the input-data optimizer
	// name.
	Scheduling *SchedulingConfig

	// Queue configures the worker pool that claims and runs jobs.
	Queue *QueueConfig

	// Database configures the Postgres connection backing pkg/catalog.
	Database *DatabaseConfig

	// Operations mirrors the source's Operations CS helper: a flat,
	// path-keyed value store (only Transformations/DataProcessing is read
	// by the scheduling core today, but more paths may be added by YAML).
	Operations map[string][]string

	// GroupProperties mirrors the source's Registry: group name to the set
	// of properties granted to it (e.g. "STAGE_ALLOWED").
	GroupProperties map[string][]string
}

// SchedulingConfig is the frozen struct spec.md §9 calls for ("pass as a
// frozen struct, not via global lookups").
type SchedulingConfig struct {
	RescheduleDelays             []int    `yaml:"reschedule_delays"`
	ExcludedOnHoldJobTypes       []string `yaml:"excluded_on_hold_job_types"`
	HoldTime                     int      `yaml:"hold_time_seconds"`
	StagingStatus                string   `yaml:"staging_status"`
	StagingStatusRequestToBeSent string   `yaml:"staging_minor_request_to_be_sent"`
	StagingStatusRequestSent     string   `yaml:"staging_minor_request_sent"`
	InputDataAgent               string   `yaml:"input_data_agent"`
	RestrictDataStage            bool     `yaml:"restrict_data_stage"`
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}
