package viability

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/organ-match-server/internal/domain"
)

const defaultLRUSize = 4096

// PredictionCache caches survival probabilities keyed by feature row. Redis
// is the shared tier when configured; an in-process LRU always backs it so a
// cache outage degrades rather than disables caching.
type PredictionCache struct {
	logger *logrus.Logger
	redis  *redis.Client
	local  *lru.Cache[string, float64]
	ttl    time.Duration
}

// NewPredictionCache creates a prediction cache from configuration. An empty
// Redis URL selects in-process caching only; an unreachable Redis logs a
// warning and falls back the same way.
func NewPredictionCache(cfg domain.CacheConfig, logger *logrus.Logger) (*PredictionCache, error) {
	size := cfg.LRUSize
	if size <= 0 {
		size = defaultLRUSize
	}
	local, err := lru.New[string, float64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	cache := &PredictionCache{
		logger: logger,
		local:  local,
		ttl:    cfg.DefaultTTL,
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, prediction cache degrades to in-process LRU")
			client.Close()
		} else {
			cache.redis = client
		}
	}

	return cache, nil
}

// Get returns a cached probability for the feature row, if present.
func (c *PredictionCache) Get(ctx context.Context, row *domain.FeatureRow) (float64, bool) {
	key, err := cacheKey(row)
	if err != nil {
		return 0, false
	}

	if prob, ok := c.local.Get(key); ok {
		return prob, true
	}

	if c.redis != nil {
		val, err := c.redis.Get(ctx, key).Result()
		if err == nil {
			if prob, parseErr := strconv.ParseFloat(val, 64); parseErr == nil {
				c.local.Add(key, prob)
				return prob, true
			}
		} else if err != redis.Nil {
			c.logger.WithError(err).Debug("Redis prediction cache read failed")
		}
	}

	return 0, false
}

// Set stores a probability for the feature row. Failures are logged and
// otherwise ignored; caching is best effort.
func (c *PredictionCache) Set(ctx context.Context, row *domain.FeatureRow, prob float64) {
	key, err := cacheKey(row)
	if err != nil {
		return
	}

	c.local.Add(key, prob)

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, strconv.FormatFloat(prob, 'g', -1, 64), c.ttl).Err(); err != nil {
			c.logger.WithError(err).Debug("Redis prediction cache write failed")
		}
	}
}

// Close releases the Redis connection if one is held.
func (c *PredictionCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

func cacheKey(row *domain.FeatureRow) (string, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("viability:%x", hash), nil
}
