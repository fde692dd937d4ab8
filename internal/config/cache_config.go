package config

import (
	"time"

	"github.com/prajwalbharadwajbm/fundledger/internal/cache"
)

// CacheConfig configures the campaign read cache
type CacheConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"true"`
	DefaultTTL      time.Duration `env:"DEFAULT_TTL" envDefault:"5m"`
	MemoryCacheSize int           `env:"MEMORY_SIZE" envDefault:"1000"`
	EnableMemory    bool          `env:"ENABLE_MEMORY" envDefault:"true"`
	EnableRedis     bool          `env:"ENABLE_REDIS" envDefault:"false"`
}

// GetCacheConfig creates the cache configuration from the loaded settings
func GetCacheConfig() cache.CacheConfig {
	c := AppConfigInstance.CacheConfig
	r := AppConfigInstance.RedisConfig
	return cache.CacheConfig{
		DefaultTTL:      c.DefaultTTL,
		MemoryCacheSize: c.MemoryCacheSize,
		RedisAddr:       r.Addr,
		RedisPassword:   r.Password,
		RedisDB:         r.DB,
		EnableMemory:    c.EnableMemory,
		EnableRedis:     c.EnableRedis,
	}
}

// CacheHealthCheck represents cache health status
type CacheHealthCheck struct {
	Memory struct {
		Enabled bool `json:"enabled"`
		Size    int  `json:"size"`
	} `json:"memory"`
	Redis struct {
		Enabled bool   `json:"enabled"`
		Address string `json:"address"`
	} `json:"redis"`
	Stats cache.CacheStats `json:"stats"`
}

// GetCacheHealth returns current cache health status
func GetCacheHealth(c cache.Cache) CacheHealthCheck {
	cfg := GetCacheConfig()
	health := CacheHealthCheck{}

	health.Memory.Enabled = cfg.EnableMemory
	health.Memory.Size = cfg.MemoryCacheSize

	health.Redis.Enabled = cfg.EnableRedis
	health.Redis.Address = cfg.RedisAddr

	health.Stats = c.GetStats()

	return health
}
