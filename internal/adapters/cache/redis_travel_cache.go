package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

// RedisTravelCache stores travel results in Redis with a TTL. It backs
// deployments that want shared, expiring estimates without a Postgres
// instance.
type RedisTravelCache struct {
	Client *redis.Client
	TTL    time.Duration
}

const defaultTravelTTL = 7 * 24 * time.Hour

func NewRedisTravelCache(client *redis.Client) *RedisTravelCache {
	return &RedisTravelCache{Client: client, TTL: defaultTravelTTL}
}

func travelKey(origin, destination string) string {
	return "travel:" + origin + "|" + destination
}

func (r *RedisTravelCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (map[string]ports.TravelResult, error) {
	if r.Client == nil {
		return nil, errors.New("redis travel cache: client is nil")
	}
	if origin == "" {
		return nil, errors.New("get travel cache: origin must not be empty")
	}

	uniq := dedupe(destinations)
	if len(uniq) == 0 {
		return map[string]ports.TravelResult{}, nil
	}

	keys := make([]string, len(uniq))
	for i, d := range uniq {
		keys[i] = travelKey(origin, d)
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel cache: mget: %w", err)
	}

	out := make(map[string]ports.TravelResult, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var result ports.TravelResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			// A corrupt entry is treated as a miss; it will be overwritten.
			continue
		}
		out[uniq[i]] = result
	}

	return out, nil
}

func (r *RedisTravelCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.TravelResult,
) error {
	if r.Client == nil {
		return errors.New("redis travel cache: client is nil")
	}
	if origin == "" {
		return errors.New("insert travel cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = defaultTravelTTL
	}

	pipe := r.Client.Pipeline()
	for dest, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("insert travel cache dest=%q: marshal: %w", dest, err)
		}
		pipe.Set(ctx, travelKey(origin, dest), payload, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert travel cache: pipeline exec: %w", err)
	}

	return nil
}
