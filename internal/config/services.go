package config

import "time"

type GradingConfig struct {
	// PerTestTimeout bounds every single backend call made for one test case
	PerTestTimeout time.Duration
	// BatchWorkers is the number of submissions a batch regrade grades at once
	BatchWorkers int
}

func NewGradingConfig() *GradingConfig {
	return &GradingConfig{
		PerTestTimeout: getSecondsEnv("GRADING_TEST_TIMEOUT_SEC", 30*time.Second),
		BatchWorkers:   getIntEnv("GRADING_BATCH_WORKERS", 2),
	}
}
