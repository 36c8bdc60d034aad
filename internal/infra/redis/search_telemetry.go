package redis

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

const searchTermsKey = "jobs:search:terms"

// SearchTelemetry records job search terms in a Redis sorted set,
// keyed by hit count. This is non-critical telemetry: every write is
// fire-and-forget and errors are swallowed, so a Redis outage never
// fails a search request.
type SearchTelemetry struct {
	client *redis.Client
}

func NewSearchTelemetry(client *redis.Client) *SearchTelemetry {
	return &SearchTelemetry{client: client}
}

func (t *SearchTelemetry) RecordSearch(ctx context.Context, term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	_ = t.client.ZIncrBy(ctx, searchTermsKey, 1, term).Err()
}

// TopSearches returns up to n most frequent terms, most frequent first.
func (t *SearchTelemetry) TopSearches(ctx context.Context, n int64) ([]string, error) {
	return t.client.ZRevRange(ctx, searchTermsKey, 0, n-1).Result()
}
