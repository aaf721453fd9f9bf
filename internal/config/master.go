package config

import "os"

type AppConfig struct {
	DebugMode       bool
	LogLevel        string
	GradingConfig   *GradingConfig
	SandboxConfig   *SandboxConfig
	SQLEngineConfig *SQLEngineConfig
	RedisConfig     *RedisConfig
	PostgresConfig  *PostgresConfig
	HTTPConfig      *HTTPConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:       os.Getenv("DEBUG_MODE") == "true",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		GradingConfig:   NewGradingConfig(),
		SandboxConfig:   NewSandboxConfig(),
		SQLEngineConfig: NewSQLEngineConfig(),
		RedisConfig:     NewRedisConfig(),
		PostgresConfig:  NewPostgresConfig(),
		HTTPConfig:      NewHTTPConfig(),
	}
}
