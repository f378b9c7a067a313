package config

// DefaultSchedulingConfig returns the built-in scheduling defaults, mirroring
// the source optimizer's ex_getOption defaults (spec.md §6).
func DefaultSchedulingConfig() *SchedulingConfig {
	return &SchedulingConfig{
		RescheduleDelays:             []int{60, 180, 300, 600},
		ExcludedOnHoldJobTypes:       []string{},
		HoldTime:                     300,
		StagingStatus:                "Staging",
		StagingStatusRequestToBeSent: "Request To Be Sent",
		StagingStatusRequestSent:     "Request Sent",
		InputDataAgent:               "InputData",
		RestrictDataStage:            false,
	}
}

// DatabaseConfig configures the Postgres connection used by pkg/catalog.
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"sslmode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// DefaultDatabaseConfig returns the built-in database defaults.
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "jobsched",
		Database:        "jobsched",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: "30m",
	}
}
