package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrMiss is returned when a key is absent or the cache is not configured.
var ErrMiss = errors.New("cache miss")

// Redis wraps the go-redis client with JSON helpers. A nil *Redis is valid
// and behaves as an always-miss cache.
type Redis struct {
	Client *redis.Client
}

func NewRedis(addr, password string, logger zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("unable to reach redis")
	} else {
		logger.Info().Str("addr", addr).Msg("connected to redis")
	}

	return &Redis{Client: client}
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// GetJSON unmarshals the cached value for key into dest.
func (r *Redis) GetJSON(ctx context.Context, key string, dest any) error {
	if r == nil || r.Client == nil {
		return ErrMiss
	}
	b, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(b, dest)
}

// SetJSON stores value under key with a TTL. Failures are returned so the
// caller can log them; cached reads never block correctness.
func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, b, ttl).Err()
}

// Invalidate drops a key, tolerating an unconfigured cache.
func (r *Redis) Invalidate(ctx context.Context, key string) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Del(ctx, key).Err()
}
