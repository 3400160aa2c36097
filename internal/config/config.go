package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
// Values are populated from .tangocho.yaml, TANGOCHO_* env vars, and CLI flags.
type Config struct {
	DBPath            string `mapstructure:"db_path"`
	DataDir           string `mapstructure:"data_dir"`
	Addr              string `mapstructure:"addr"`
	APIToken          string `mapstructure:"api_token"`
	StoragePrefix     string `mapstructure:"storage_prefix"`
	DailyNewGoal      int    `mapstructure:"daily_new_goal"`
	DailyReviewGoal   int    `mapstructure:"daily_review_goal"`
	TaskRetentionDays int    `mapstructure:"task_retention_days"`
	CleanupSchedule   string `mapstructure:"cleanup_schedule"`
	DailySchedule     string `mapstructure:"daily_schedule"`
	WatchData         bool   `mapstructure:"watch_data"`
}

// SetDefaults registers the built-in default of every setting
func SetDefaults() {
	viper.SetDefault("db_path", "data/tangocho.db")
	viper.SetDefault("data_dir", ".")
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("api_token", "")
	viper.SetDefault("storage_prefix", "riyu_")
	viper.SetDefault("daily_new_goal", 10)
	viper.SetDefault("daily_review_goal", 20)
	viper.SetDefault("task_retention_days", 30)
	viper.SetDefault("cleanup_schedule", "0 3 * * *")
	viper.SetDefault("daily_schedule", "5 0 * * *")
	viper.SetDefault("watch_data", true)
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted at their point of use
func (c Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if c.DailyNewGoal < 0 {
		errs = append(errs, fmt.Errorf("daily_new_goal must not be negative, got %d", c.DailyNewGoal))
	}
	if c.DailyReviewGoal < 0 {
		errs = append(errs, fmt.Errorf("daily_review_goal must not be negative, got %d", c.DailyReviewGoal))
	}
	if c.TaskRetentionDays <= 0 {
		errs = append(errs, fmt.Errorf("task_retention_days must be positive, got %d", c.TaskRetentionDays))
	}

	for name, spec := range map[string]string{
		"cleanup_schedule": c.CleanupSchedule,
		"daily_schedule":   c.DailySchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", name, spec, err))
		}
	}

	return errors.Join(errs...)
}
