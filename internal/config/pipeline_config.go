package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/resilience"
	"github.com/maxaizer/jobscout/internal/scoring"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"os"
	"time"
)

type EnrichmentConfig struct {
	Workers      int           `mapstructure:"workers"`
	BatchSize    int           `mapstructure:"batch_size"`
	Lease        time.Duration `mapstructure:"lease"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	SweepCron    string        `mapstructure:"sweep_cron"`
	ReaperCron   string        `mapstructure:"reaper_cron"`
	DeepAnalysis bool          `mapstructure:"deep_analysis"`
	LogoTemplate string        `mapstructure:"logo_template"`
	DefaultScore int           `mapstructure:"default_score"`
}

func (config EnrichmentConfig) validate() error {

	var errs []error
	if config.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1"))
	}
	if config.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch_size must be at least 1"))
	}
	if config.Lease <= 0 {
		errs = append(errs, fmt.Errorf("lease must be positive"))
	}
	if config.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("max_attempts can't be negative"))
	}
	if config.DefaultScore < 1 || config.DefaultScore > 100 {
		errs = append(errs, fmt.Errorf("default_score must be between 1 and 100"))
	}
	errs = append(errs, validateCron("sweep_cron", config.SweepCron), validateCron("reaper_cron", config.ReaperCron))

	return errors.Join(errs...)
}

func (config EnrichmentConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"enrichment.workers":       "ENRICHMENT_WORKERS",
		"enrichment.deep_analysis": "ENRICHMENT_DEEP_ANALYSIS",
		"enrichment.sweep_cron":    "ENRICHMENT_SWEEP_CRON",
	})
}

type IntakeConfig struct {
	InboxDir string   `mapstructure:"inbox_dir"`
	Feeds    []string `mapstructure:"feeds"`
	PollCron string   `mapstructure:"poll_cron"`
}

func (config IntakeConfig) validate() error {
	if config.InboxDir == "" && len(config.Feeds) == 0 {
		return nil
	}
	return validateCron("poll_cron", config.PollCron)
}

func (config IntakeConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("intake.inbox_dir", "INBOX_DIR")
}

type ProfileConfig struct {
	ResumePath  string             `mapstructure:"resume_path"`
	Preferences models.Preferences `mapstructure:"preferences"`
}

func (config ProfileConfig) validate() error {

	var errs []error
	if config.ResumePath == "" {
		errs = append(errs, fmt.Errorf("missing variable: resume_path"))
	}
	if err := validator.New().Struct(config.Preferences); err != nil {
		errs = append(errs, err)
	}
	salary := config.Preferences.Salary
	if salary.Target > 0 && salary.Target < salary.Minimum {
		errs = append(errs, fmt.Errorf("salary target %d is below minimum %d", salary.Target, salary.Minimum))
	}

	return errors.Join(errs...)
}

func (config ProfileConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("profile.resume_path", "RESUME_PATH")
}

// Resume reads the resume text the oracle compares postings against.
func (config ProfileConfig) Resume() (string, error) {
	content, err := os.ReadFile(config.ResumePath)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	return string(content), nil
}

type ScoringConfig struct {
	scoring.Config `mapstructure:",squash"`
}

func (config ScoringConfig) validate() error {

	var errs []error
	if config.QualificationWeight < 0 || config.RecencyWeight < 0 {
		errs = append(errs, fmt.Errorf("weights can't be negative"))
	}
	if config.RecencyDecayPerDay <= 0 {
		errs = append(errs, fmt.Errorf("recency_decay_per_day must be positive"))
	}
	if config.RecencyHorizonDays < 1 {
		errs = append(errs, fmt.Errorf("recency_horizon_days must be at least 1"))
	}
	return errors.Join(errs...)
}

func (config ScoringConfig) bindEnvironmentVariables() error {
	return nil
}

type NotifierConfig struct {
	Token    string  `mapstructure:"token"`
	ChatID   int64   `mapstructure:"chat_id"`
	MinScore float64 `mapstructure:"min_score"`
}

func (config NotifierConfig) Enabled() bool {
	return config.Token != ""
}

func (config NotifierConfig) validate() error {
	if !config.Enabled() {
		return nil
	}
	if config.ChatID == 0 {
		return fmt.Errorf("missing variable: chat_id")
	}
	if config.MinScore < 0 || config.MinScore > 100 {
		return fmt.Errorf("min_score must be between 0 and 100")
	}
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"notifier.token":   "TG_TOKEN",
		"notifier.chat_id": "TG_CHAT_ID",
	})
}

func validateCron(name, spec string) error {
	if spec == "" {
		return fmt.Errorf("missing variable: %s", name)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func setDefaults() {

	viper.SetDefault("logger.log_level", string(LevelInfo))
	viper.SetDefault("logger.app_name", "jobscout")
	viper.SetDefault("logger.output_file", "./logs/jobscout.log")
	viper.SetDefault("logger.metrics_address", ":8080")

	viper.SetDefault("cache.ttl", 24*time.Hour)

	viper.SetDefault("enrichment.workers", 4)
	viper.SetDefault("enrichment.batch_size", 50)
	viper.SetDefault("enrichment.lease", 10*time.Minute)
	viper.SetDefault("enrichment.max_attempts", 3)
	viper.SetDefault("enrichment.sweep_cron", "*/15 * * * *")
	viper.SetDefault("enrichment.reaper_cron", "*/5 * * * *")
	viper.SetDefault("enrichment.default_score", 25)
	viper.SetDefault("intake.poll_cron", "*/10 * * * *")
	viper.SetDefault("notifier.min_score", 80)

	setPolicyDefaults("ai.retry", resilience.DefaultPolicy())
	setPolicyDefaults("search.retry", resilience.DefaultPolicy())

	defaults := scoring.DefaultConfig()
	viper.SetDefault("scoring.qualification_weight", defaults.QualificationWeight)
	viper.SetDefault("scoring.recency_weight", defaults.RecencyWeight)
	viper.SetDefault("scoring.recency_decay_per_day", defaults.RecencyDecayPerDay)
	viper.SetDefault("scoring.recency_horizon_days", defaults.RecencyHorizonDays)
	viper.SetDefault("scoring.salary_below_minimum_adjustment", defaults.SalaryBelowMinimumAdjustment)
	viper.SetDefault("scoring.salary_match_adjustment", defaults.SalaryMatchAdjustment)
	viper.SetDefault("scoring.salary_above_target_adjustment", defaults.SalaryAboveTargetAdjustment)
	viper.SetDefault("scoring.agency_adjustment", defaults.AgencyAdjustment)
	viper.SetDefault("scoring.location_bonus_weight", defaults.LocationBonusWeight)
}

func setPolicyDefaults(prefix string, policy resilience.Policy) {
	viper.SetDefault(prefix+".requests_per_second", policy.RequestsPerSecond)
	viper.SetDefault(prefix+".burst", policy.Burst)
	viper.SetDefault(prefix+".max_attempts", policy.MaxAttempts)
	viper.SetDefault(prefix+".initial_backoff", policy.InitialBackoff)
	viper.SetDefault(prefix+".max_backoff", policy.MaxBackoff)
	viper.SetDefault(prefix+".multiplier", policy.Multiplier)
	viper.SetDefault(prefix+".jitter", policy.Jitter)
	viper.SetDefault(prefix+".failure_threshold", policy.FailureThreshold)
	viper.SetDefault(prefix+".cooldown", policy.Cooldown)
}
