package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

const redisKeyPrefix = "fundledger:cache:"

// redisCache implements Redis-based caching
type redisCache struct {
	client *redis.Client
	config CacheConfig
}

// newRedisCache creates a new Redis cache client
func newRedisCache(config CacheConfig) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{
		client: client,
		config: config,
	}, nil
}

// getCampaign retrieves a campaign from Redis
func (rc *redisCache) getCampaign(ctx context.Context, key string) (models.Campaign, error) {
	data, err := rc.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return models.Campaign{}, ErrCacheMiss
		}
		return models.Campaign{}, fmt.Errorf("Redis get error: %w", err)
	}

	var campaign models.Campaign
	if err := json.Unmarshal([]byte(data), &campaign); err != nil {
		return models.Campaign{}, fmt.Errorf("JSON unmarshal error: %w", err)
	}

	return campaign, nil
}

// setCampaign stores a campaign in Redis
func (rc *redisCache) setCampaign(ctx context.Context, key string, campaign models.Campaign, ttl time.Duration) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	if err := rc.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("Redis set error: %w", err)
	}

	return nil
}

// setCampaignIfAbsent stores a campaign with SETNX semantics
func (rc *redisCache) setCampaignIfAbsent(ctx context.Context, key string, campaign models.Campaign, ttl time.Duration) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	if err := rc.client.SetNX(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("Redis setnx error: %w", err)
	}

	return nil
}

// delete removes a single key
func (rc *redisCache) delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("Redis delete error: %w", err)
	}
	return nil
}

// clear removes all fundledger cache keys from Redis
func (rc *redisCache) clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("Redis scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("Redis delete error: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// close closes the Redis connection
func (rc *redisCache) close() error {
	return rc.client.Close()
}
