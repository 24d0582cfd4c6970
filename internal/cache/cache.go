// Package cache remembers comparison results so identical document pairs are scored once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"plagcheck/internal/config"
	"plagcheck/internal/similarity"
)

const keyPrefix = "plagcheck:cmp:"

// ComparisonCache stores similarity results keyed by the two compared texts.
type ComparisonCache interface {
	Get(ctx context.Context, main, other string) (similarity.Result, bool, error)
	Set(ctx context.Context, main, other string, res similarity.Result) error
}

// Key derives the cache key for a pair of texts. Order matters: the match excerpts come
// from the main text.
func Key(main, other string) string {
	a := sha256.Sum256([]byte(main))
	b := sha256.Sum256([]byte(other))
	return keyPrefix + hex.EncodeToString(a[:]) + ":" + hex.EncodeToString(b[:])
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (ComparisonCache, *redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &redisCache{client: rdb, ttl: time.Duration(cfg.TTLSec) * time.Second}, rdb, nil
}

func (c *redisCache) Get(ctx context.Context, main, other string) (similarity.Result, bool, error) {
	raw, err := c.client.Get(ctx, Key(main, other)).Bytes()
	if errors.Is(err, redis.Nil) {
		return similarity.Result{}, false, nil
	}
	if err != nil {
		return similarity.Result{}, false, err
	}
	var res similarity.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return similarity.Result{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return res, true, nil
}

func (c *redisCache) Set(ctx context.Context, main, other string, res similarity.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(main, other), b, c.ttl).Err()
}
