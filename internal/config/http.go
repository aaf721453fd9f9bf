package config

import "time"

type HTTPConfig struct {
	Port        int
	ServiceName string
	ReadTimeout time.Duration
	// WriteTimeout must cover grading every test case of a submission
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func NewHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Port:            getIntEnv("HTTP_PORT", 8082),
		ServiceName:     getEnv("SERVICE_NAME", "grader"),
		ReadTimeout:     getSecondsEnv("HTTP_READ_TIMEOUT_SEC", 15*time.Second),
		WriteTimeout:    getSecondsEnv("HTTP_WRITE_TIMEOUT_SEC", 10*time.Minute),
		ShutdownTimeout: getSecondsEnv("HTTP_SHUTDOWN_TIMEOUT_SEC", 30*time.Second),
	}
}
