package config

import (
	"errors"
	"fmt"
	"github.com/maxaizer/jobscout/internal/resilience"
	"github.com/spf13/viper"
	"time"
)

type SearchConfig struct {
	URL   string            `mapstructure:"url"`
	Key   string            `mapstructure:"key"`
	Retry resilience.Policy `mapstructure:"retry"`
}

func (config SearchConfig) validate() error {
	var errs []error
	if config.Key == "" {
		errs = append(errs, fmt.Errorf("missing variable: key"))
	}
	errs = append(errs, validatePolicy(config.Retry))
	return errors.Join(errs...)
}

func (config SearchConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"search.url": "SEARCH_URL",
		"search.key": "SEARCH_API_KEY",
	})
}

type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

func (config CacheConfig) validate() error {
	if config.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

func (config CacheConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("cache.redis_url", "REDIS_URL")
}
