package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// OverviewKey caches the dataset overview counts.
const OverviewKey = "stats:overview"

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance, or nil when Redis is disabled
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// CacheOverview stores the serialized overview payload with a TTL.
// A nil client is a no-op so callers never need to care whether Redis is up.
func CacheOverview(ctx context.Context, payload []byte, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, OverviewKey, payload, ttl).Err()
}

// GetCachedOverview returns the cached overview payload, or nil on a miss.
func GetCachedOverview(ctx context.Context) ([]byte, error) {
	if client == nil {
		return nil, nil
	}
	payload, err := client.Get(ctx, OverviewKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// InvalidateOverview drops the cached overview after an import changes counts.
func InvalidateOverview(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, OverviewKey).Err()
}
