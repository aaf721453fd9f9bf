package verdictcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
)

const verdictKeyPrefix = "verdict:"

var _ secondary.VerdictCache = (*VerdictCache)(nil)

// VerdictCache implements the VerdictCache interface with Redis
type VerdictCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      primary.Logger
}

// NewVerdictCache creates a new Redis verdict cache. Entries expire after ttl.
func NewVerdictCache(redisClient *redis.Client, ttl time.Duration, logger primary.Logger) *VerdictCache {
	return &VerdictCache{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func verdictKey(submissionID uuid.UUID) string {
	return fmt.Sprintf("%s%s", verdictKeyPrefix, submissionID)
}

// SaveVerdict saves a verdict to Redis
func (c *VerdictCache) SaveVerdict(ctx context.Context, submissionID uuid.UUID, verdict *domain.GradingVerdict) error {
	verdictJSON, err := json.Marshal(verdict)
	if err != nil {
		c.logger.Error("Failed to marshal verdict", "error", err)
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	if err := c.redisClient.Set(ctx, verdictKey(submissionID), verdictJSON, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to save verdict", "submission_id", submissionID, "error", err)
		return fmt.Errorf("failed to save verdict: %w", err)
	}

	return nil
}

// GetVerdict retrieves a verdict from Redis by submission ID
func (c *VerdictCache) GetVerdict(ctx context.Context, submissionID uuid.UUID) (*domain.GradingVerdict, error) {
	verdictJSON, err := c.redisClient.Get(ctx, verdictKey(submissionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		c.logger.Error("Failed to get verdict", "submission_id", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}

	var verdict domain.GradingVerdict
	if err := json.Unmarshal(verdictJSON, &verdict); err != nil {
		c.logger.Error("Failed to unmarshal verdict", "error", err)
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}

	return &verdict, nil
}
