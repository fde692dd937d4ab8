package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// Cache defines the interface for campaign caching
type Cache interface {
	GetCampaign(ctx context.Context, id uint64) (models.Campaign, error)
	// SetCampaign stores the campaign, replacing any cached value
	SetCampaign(ctx context.Context, campaign models.Campaign, ttl time.Duration) error
	// SetCampaignIfAbsent stores the campaign only when nothing is cached for its id
	SetCampaignIfAbsent(ctx context.Context, campaign models.Campaign, ttl time.Duration) error

	// Cache management
	InvalidateCampaign(ctx context.Context, id uint64) error
	InvalidateAll(ctx context.Context) error
	GetStats() CacheStats
	Close() error
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Errors      int64     `json:"errors"`
	HitRatio    float64   `json:"hitRatio"`
	TotalOps    int64     `json:"totalOps"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// HybridCache implements both in-memory and Redis caching
type HybridCache struct {
	// In-memory cache for ultra-fast access
	memoryCache *memoryCache
	// Redis cache for state shared between replicas
	redisCache *redisCache
	config     CacheConfig
	stats      CacheStats
	mu         sync.RWMutex
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	DefaultTTL      time.Duration
	MemoryCacheSize int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	EnableMemory    bool
	EnableRedis     bool
}

// NewHybridCache creates a new hybrid cache
func NewHybridCache(config CacheConfig) (*HybridCache, error) {
	hc := &HybridCache{
		config: config,
		stats: CacheStats{
			LastUpdated: time.Now(),
		},
	}

	if config.EnableMemory {
		hc.memoryCache = newMemoryCache(config.MemoryCacheSize)
	}

	if config.EnableRedis {
		var err error
		hc.redisCache, err = newRedisCache(config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
	}

	return hc, nil
}

func campaignKey(id uint64) string {
	return fmt.Sprintf("campaign:%d", id)
}

// GetCampaign retrieves a campaign from cache (memory first, then Redis, then miss)
func (hc *HybridCache) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	key := campaignKey(id)

	if hc.memoryCache != nil {
		if campaign, found := hc.memoryCache.getCampaign(key); found {
			hc.recordHit()
			return campaign, nil
		}
	}

	if hc.redisCache != nil {
		campaign, err := hc.redisCache.getCampaign(ctx, key)
		if err == nil {
			hc.recordHit()
			// Warm memory cache without clobbering a fresher write
			if hc.memoryCache != nil {
				hc.memoryCache.setCampaignIfAbsent(key, campaign, hc.config.DefaultTTL)
			}
			return campaign, nil
		}
		if err != ErrCacheMiss {
			hc.recordError()
		}
	}

	hc.recordMiss()
	return models.Campaign{}, ErrCacheMiss
}

// SetCampaign stores a campaign in both caches
func (hc *HybridCache) SetCampaign(ctx context.Context, campaign models.Campaign, ttl time.Duration) error {
	key := campaignKey(campaign.ID)
	var result *multierror.Error

	if hc.memoryCache != nil {
		hc.memoryCache.setCampaign(key, campaign, ttl)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.setCampaign(ctx, key, campaign, ttl); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		hc.recordError()
		return fmt.Errorf("cache store errors: %w", err)
	}
	return nil
}

// SetCampaignIfAbsent stores a campaign in each cache that has nothing for its id
func (hc *HybridCache) SetCampaignIfAbsent(ctx context.Context, campaign models.Campaign, ttl time.Duration) error {
	key := campaignKey(campaign.ID)
	var result *multierror.Error

	if hc.memoryCache != nil {
		hc.memoryCache.setCampaignIfAbsent(key, campaign, ttl)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.setCampaignIfAbsent(ctx, key, campaign, ttl); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		hc.recordError()
		return fmt.Errorf("cache fill errors: %w", err)
	}
	return nil
}

// InvalidateCampaign drops a single campaign from both caches
func (hc *HybridCache) InvalidateCampaign(ctx context.Context, id uint64) error {
	key := campaignKey(id)
	var result *multierror.Error

	if hc.memoryCache != nil {
		hc.memoryCache.delete(key)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.delete(ctx, key); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// InvalidateAll clears all caches
func (hc *HybridCache) InvalidateAll(ctx context.Context) error {
	var result *multierror.Error

	if hc.memoryCache != nil {
		hc.memoryCache.clear()
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.clear(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("cache invalidation errors: %w", err)
	}
	return nil
}

// Close stops background cleanup and closes the Redis connection
func (hc *HybridCache) Close() error {
	if hc.memoryCache != nil {
		hc.memoryCache.close()
	}
	if hc.redisCache != nil {
		return hc.redisCache.close()
	}
	return nil
}

// GetStats returns cache statistics
func (hc *HybridCache) GetStats() CacheStats {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	stats := hc.stats
	if stats.TotalOps > 0 {
		stats.HitRatio = float64(stats.Hits) / float64(stats.TotalOps)
	}
	return stats
}

// Helper methods for statistics
func (hc *HybridCache) recordHit() {
	hc.mu.Lock()
	hc.stats.Hits++
	hc.stats.TotalOps++
	hc.stats.LastUpdated = time.Now()
	hc.mu.Unlock()
}

func (hc *HybridCache) recordMiss() {
	hc.mu.Lock()
	hc.stats.Misses++
	hc.stats.TotalOps++
	hc.stats.LastUpdated = time.Now()
	hc.mu.Unlock()
}

func (hc *HybridCache) recordError() {
	hc.mu.Lock()
	hc.stats.Errors++
	hc.mu.Unlock()
}

// Custom errors
var (
	ErrCacheMiss = fmt.Errorf("cache miss")
)
