package cache

import (
	"context"
	"encoding/json"
	"time"

	"form-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// SubmissionCache keeps recent submissions keyed by session token, so that
// status/resume lookups skip Mongo for active respondents. All writes are
// best-effort; the store of record stays the submission repository.
type SubmissionCache interface {
	Set(ctx context.Context, sub *models.Submission) error
	Get(ctx context.Context, token string) (*models.Submission, error)
	Delete(ctx context.Context, token string) error
}

type submissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubmissionCache(client *redis.Client) SubmissionCache {
	return &submissionCache{client: client, ttl: 30 * time.Minute}
}

func (c *submissionCache) Set(ctx context.Context, sub *models.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "submission:"+sub.SessionToken, data, c.ttl).Err()
}

func (c *submissionCache) Get(ctx context.Context, token string) (*models.Submission, error) {
	data, err := c.client.Get(ctx, "submission:"+token).Result()
	if err != nil {
		return nil, err
	}
	var sub models.Submission
	err = json.Unmarshal([]byte(data), &sub)
	return &sub, err
}

func (c *submissionCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, "submission:"+token).Err()
}
