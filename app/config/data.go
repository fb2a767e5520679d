package config

import (
	"time"

	"github.com/spf13/viper"
)

// Cache normalized cache config struct
type Cache struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	TTL         time.Duration
}

// Store session state store config struct
type Store struct {
	Path      string
	InMemory  bool
	BackupDir string
}

// RateLimit comment submission limits, per session
type RateLimit struct {
	RPS     float64
	Burst   int
	IdleTTL time.Duration
}

func getCacheConfig(v *viper.Viper) *Cache {
	return &Cache{
		NumCounters: getInt64OrDefault(v, "cache.num_counters", 1e6),
		MaxCost:     getInt64OrDefault(v, "cache.max_cost", 1e5),
		BufferItems: getInt64OrDefault(v, "cache.buffer_items", 64),
		TTL:         getDurationOrDefault(v, "cache.ttl", 30*time.Second),
	}
}

func getStoreConfig(v *viper.Viper) *Store {
	return &Store{
		Path:      getStringOrDefault(v, "store.path", "data/badger"),
		InMemory:  getBoolOrDefault(v, "store.in_memory", false),
		BackupDir: getStringOrDefault(v, "store.backup_dir", "data/backups"),
	}
}

func getRateLimitConfig(v *viper.Viper) *RateLimit {
	return &RateLimit{
		RPS:     getFloat64OrDefault(v, "rate_limit.rps", 1),
		Burst:   getIntOrDefault(v, "rate_limit.burst", 5),
		IdleTTL: getDurationOrDefault(v, "rate_limit.idle_ttl", 10*time.Minute),
	}
}
