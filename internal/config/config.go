package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	DB         DBConfig         `mapstructure:"db"`
	AI         AIConfig         `mapstructure:"ai"`
	Search     SearchConfig     `mapstructure:"search"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Intake     IntakeConfig     `mapstructure:"intake"`
	Profile    ProfileConfig    `mapstructure:"profile"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
}

type section interface {
	validate() error
	bindEnvironmentVariables() error
}

var defaultConfigFile = "./configs/config.yaml"

func Get() *Config {

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("failed to load .env file: %v", err)
	}

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.Reset()
	viper.SetConfigFile(file)
	viper.AutomaticEnv()
	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (config Config) sections() map[string]section {
	return map[string]section{
		"LoggerConfig":     config.Logger,
		"DBConfig":         config.DB,
		"AIConfig":         config.AI,
		"SearchConfig":     config.Search,
		"CacheConfig":      config.Cache,
		"EnrichmentConfig": config.Enrichment,
		"IntakeConfig":     config.Intake,
		"ProfileConfig":    config.Profile,
		"ScoringConfig":    config.Scoring,
		"NotifierConfig":   config.Notifier,
	}
}

func bindEnvironmentVariables() error {
	var errs []error

	for name, s := range (Config{}).sections() {
		if err := s.bindEnvironmentVariables(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for name, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func missing(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("missing required variables: %v", fields)
}
