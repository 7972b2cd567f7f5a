package config

import (
	"errors"
	"fmt"
	"github.com/maxaizer/jobscout/internal/resilience"
)

type AIConfig struct {
	Key                  string            `mapstructure:"key"`
	Model                string            `mapstructure:"model"`
	MaxRequestsPerMinute float32           `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32           `mapstructure:"max_requests_per_day"`
	Retry                resilience.Policy `mapstructure:"retry"`
}

func (config AIConfig) validate() error {

	var missingFields []string
	if config.Key == "" {
		missingFields = append(missingFields, "key")
	}
	if config.Model == "" {
		missingFields = append(missingFields, "model")
	}

	errs := []error{missing(missingFields), validatePolicy(config.Retry)}
	if config.MaxRequestsPerMinute < 0 || config.MaxRequestsPerDay < 0 {
		errs = append(errs, fmt.Errorf("request limits can't be negative"))
	}
	return errors.Join(errs...)
}

func (config AIConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"ai.key":                     "AI_KEY",
		"ai.model":                   "AI_MODEL",
		"ai.max_requests_per_minute": "AI_MAX_REQUESTS_PER_MINUTE",
		"ai.max_requests_per_day":    "AI_MAX_REQUESTS_PER_DAY",
	})
}

func validatePolicy(policy resilience.Policy) error {

	var errs []error
	if policy.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second can't be negative"))
	}
	if policy.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1"))
	}
	if policy.Multiplier != 0 && policy.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("multiplier must be at least 1"))
	}
	if policy.Jitter < 0 || policy.Jitter > 1 {
		errs = append(errs, fmt.Errorf("jitter must be between 0 and 1"))
	}
	if policy.FailureThreshold < 1 {
		errs = append(errs, fmt.Errorf("failure_threshold must be at least 1"))
	}
	return errors.Join(errs...)
}
