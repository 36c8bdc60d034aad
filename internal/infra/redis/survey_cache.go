package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"aerojob-backend/internal/domain"
)

// SurveyLoader fetches a survey document from the backing store.
type SurveyLoader interface {
	LoadSurvey(ctx context.Context, surveyID string) (domain.Survey, error)
}

// SurveyCache caches survey documents in Redis and falls back to a
// loader on cache miss. Documents are stored as:
// SET survey:{surveyID}:doc {json}
type SurveyCache struct {
	client *redis.Client
	loader SurveyLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewSurveyCache(client *redis.Client, loader SurveyLoader, ttl time.Duration) *SurveyCache {
	return &SurveyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (c *SurveyCache) GetSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	key := c.key(surveyID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var survey domain.Survey
		if err := json.Unmarshal(raw, &survey); err == nil {
			return survey, nil
		}
		// corrupt entry, reload below
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(surveyID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var survey domain.Survey
			if err := json.Unmarshal(raw, &survey); err == nil {
				return survey, nil
			}
		}

		survey, err := c.loader.LoadSurvey(ctx, surveyID)
		if err != nil {
			return domain.Survey{}, err
		}

		if raw, err := json.Marshal(survey); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return survey, nil
	})
	if err != nil {
		return domain.Survey{}, err
	}
	return result.(domain.Survey), nil
}

// Invalidate drops the cached document after a survey write.
func (c *SurveyCache) Invalidate(ctx context.Context, surveyID string) {
	_ = c.client.Del(ctx, c.key(surveyID)).Err()
}

func (c *SurveyCache) key(surveyID string) string {
	return "survey:" + surveyID + ":doc"
}

func (c *SurveyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// the global source is locked, so concurrent misses are safe
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
