package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// JobSchedYAMLConfig represents the complete jobsched.yaml file structure.
type JobSchedYAMLConfig struct {
	Scheduling      *SchedulingConfig    `yaml:"scheduling"`
	Queue           *QueueConfig         `yaml:"queue"`
	Database        *DatabaseConfig      `yaml:"database"`
	Operations      map[string][]string  `yaml:"operations"`
	GroupProperties map[string][]string  `yaml:"group_properties"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load jobsched.yaml from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge user-defined configuration onto built-in defaults
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"worker_count", cfg.Queue.WorkerCount,
		"reschedule_delays", cfg.Scheduling.RescheduleDelays)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadJobSchedYAML()
	if err != nil {
		return nil, NewLoadError("jobsched.yaml", err)
	}

	scheduling := DefaultSchedulingConfig()
	if yamlCfg.Scheduling != nil {
		if err := mergo.Merge(scheduling, yamlCfg.Scheduling, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge scheduling config: %w", err)
		}
	}

	queueCfg := DefaultQueueConfig()
	if yamlCfg.Queue != nil {
		if err := mergo.Merge(queueCfg, yamlCfg.Queue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge queue config: %w", err)
		}
	}

	dbCfg := DefaultDatabaseConfig()
	if yamlCfg.Database != nil {
		if err := mergo.Merge(dbCfg, yamlCfg.Database, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge database config: %w", err)
		}
	}

	operations := yamlCfg.Operations
	if operations == nil {
		operations = make(map[string][]string)
	}

	groupProperties := yamlCfg.GroupProperties
	if groupProperties == nil {
		groupProperties = make(map[string][]string)
	}

	return &Config{
		configDir:       configDir,
		Scheduling:      scheduling,
		Queue:           queueCfg,
		Database:        dbCfg,
		Operations:      operations,
		GroupProperties: groupProperties,
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadJobSchedYAML() (*JobSchedYAMLConfig, error) {
	var cfg JobSchedYAMLConfig
	cfg.Operations = make(map[string][]string)
	cfg.GroupProperties = make(map[string][]string)

	if err := l.loadYAML("jobsched.yaml", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
