package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"outdial-platform/pkg/utils"
)

// Redis is the shared-state implementation backed by a redis client.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("statestore: ttl must be > 0")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("statestore: marshal %s: %w", key, err)
	}
	return s.rdb.Set(ctx, key, raw, ttl).Err()
}

func (s *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("statestore: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Redis) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return utils.IncrFixedWindow(ctx, s.rdb, key, window)
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
