package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"aerojob-backend/internal/domain"
)

// SurveyLoader fetches a survey document from the backing store.
type SurveyLoader interface {
	LoadSurvey(ctx context.Context, surveyID string) (domain.Survey, error)
}

// SurveyCache caches survey documents with TTL to avoid repeated
// store hits on the public detail path.
type SurveyCache struct {
	loader SurveyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedSurvey
}

type cachedSurvey struct {
	survey    domain.Survey
	expiresAt time.Time
}

func NewSurveyCache(loader SurveyLoader, ttl time.Duration) *SurveyCache {
	return &SurveyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedSurvey),
	}
}

func (c *SurveyCache) GetSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[surveyID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.survey, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(surveyID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[surveyID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.survey, nil
		}
		c.mu.RUnlock()

		survey, err := c.loader.LoadSurvey(ctx, surveyID)
		if err != nil {
			return domain.Survey{}, err
		}

		c.mu.Lock()
		c.cache[surveyID] = cachedSurvey{
			survey:    survey,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return survey, nil
	})
	if err != nil {
		return domain.Survey{}, err
	}
	return result.(domain.Survey), nil
}

// Invalidate drops the cached document after a survey write.
func (c *SurveyCache) Invalidate(_ context.Context, surveyID string) {
	c.mu.Lock()
	delete(c.cache, surveyID)
	c.mu.Unlock()
}

func (c *SurveyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations; the global source is
	// locked, so concurrent misses are safe
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
