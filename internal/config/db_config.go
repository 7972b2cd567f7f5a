package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

// DBConfig holds either a sqlite file path or a postgres:// DSN.
type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) IsPostgres() bool {
	scheme, _, found := strings.Cut(config.ConnectionString, "://")
	return found && (scheme == "postgres" || scheme == "postgresql")
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string (sqlite file path or postgres:// DSN)")
	}
	if scheme, _, found := strings.Cut(config.ConnectionString, "://"); found && !config.IsPostgres() {
		return fmt.Errorf("unsupported db scheme %q: use a sqlite file path or a postgres:// DSN", scheme)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
