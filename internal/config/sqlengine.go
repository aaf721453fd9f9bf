package config

import (
	"errors"
	"fmt"
)

const (
	SQLEngineSQLite   = "sqlite"
	SQLEnginePostgres = "postgres"
)

type SQLEngineConfig struct {
	// Driver selects where ephemeral grading databases are created
	Driver string
	// PostgresUrl is only used by the postgres engine. It must name a database
	// dedicated to grading, never the application store.
	PostgresUrl string
}

func NewSQLEngineConfig() *SQLEngineConfig {
	return &SQLEngineConfig{
		Driver:      getEnv("SQL_ENGINE", SQLEngineSQLite),
		PostgresUrl: getEnv("SQL_ENGINE_DATABASE_URL", ""),
	}
}

var ErrGradingDatabaseRequired = errors.New("the postgres sql engine needs its own SQL_ENGINE_DATABASE_URL")

// Validate rejects engine settings that would run user SQL against the application store
func (c *SQLEngineConfig) Validate(storeUrl string) error {
	switch c.Driver {
	case SQLEngineSQLite:
		return nil
	case SQLEnginePostgres:
		if c.PostgresUrl == "" || c.PostgresUrl == storeUrl {
			return ErrGradingDatabaseRequired
		}
		return nil
	default:
		return fmt.Errorf("unknown sql engine %q", c.Driver)
	}
}
