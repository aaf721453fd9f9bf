package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an environment variable as an integer with a fallback
func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getFloatEnv(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return value
}

// getSecondsEnv reads a number of seconds, fractions allowed
func getSecondsEnv(key string, fallback time.Duration) time.Duration {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value * float64(time.Second))
}

// getMapEnv parses "k1=v1,k2=v2" pairs
func getMapEnv(key string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(os.Getenv(key), ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
