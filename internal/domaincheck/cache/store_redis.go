package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"onboardly/internal/domaincheck"
	"onboardly/pkg/platform/sentinel"
)

// Redis key prefix for availability results.
const availabilityKeyPrefix = "onboardly:avail:"

// Redis is a redis-backed availability cache for deployments running more
// than one relay instance.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a redis-backed cache around an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns a cached result, or sentinel.ErrNotFound when the key is
// missing or expired.
func (r *Redis) Get(ctx context.Context, domain string) (*domaincheck.Result, error) {
	data, err := r.client.Get(ctx, availabilityKeyPrefix+domain).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var result domaincheck.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Set stores the result with the given TTL.
func (r *Redis) Set(ctx context.Context, domain string, result *domaincheck.Result, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, availabilityKeyPrefix+domain, data, ttl).Err()
}
