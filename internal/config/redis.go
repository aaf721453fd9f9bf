package config

import "time"

type RedisConfig struct {
	DB         int
	Url        string
	Password   string
	VerdictTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:         getIntEnv("REDIS_DB", 0),
		Url:        getEnv("REDIS_ADDR", "localhost:6379"),
		Password:   getEnv("REDIS_PASSWORD", ""),
		VerdictTTL: getSecondsEnv("REDIS_VERDICT_TTL_SEC", 24*time.Hour),
	}
}
