package cache

import "time"

// CacheConfig holds configuration for cache TTL values and behavior
type CacheConfig struct {
	VehicleDataTTL time.Duration `json:"vehicleDataTTL"` // 2 minutes for catalog entries
	VehicleListTTL time.Duration `json:"vehicleListTTL"` // 2 minutes for list data
	RatingDataTTL  time.Duration `json:"ratingDataTTL"`  // 1 minute for aggregated ratings
	StatsDataTTL   time.Duration `json:"statsDataTTL"`   // 5 minutes for booking stats
	MaxMemoryUsage int64         `json:"maxMemoryUsage"` // 100MB limit
	EvictionPolicy string        `json:"evictionPolicy"` // "lru"
	KeyPrefix      string        `json:"keyPrefix"`      // prefix for all cache keys
	TagPrefix      string        `json:"tagPrefix"`      // prefix for tag keys
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		VehicleDataTTL: 2 * time.Minute,
		VehicleListTTL: 2 * time.Minute,
		RatingDataTTL:  1 * time.Minute,
		StatsDataTTL:   5 * time.Minute,
		MaxMemoryUsage: 100 * 1024 * 1024, // 100MB
		EvictionPolicy: "lru",
		KeyPrefix:      "rentwheels:",
		TagPrefix:      "tag:",
	}
}

// GetTTLForDataType returns appropriate TTL based on data type
func (c CacheConfig) GetTTLForDataType(dataType string) time.Duration {
	switch dataType {
	case "vehicle":
		return c.VehicleDataTTL
	case "vehicle_list":
		return c.VehicleListTTL
	case "rating":
		return c.RatingDataTTL
	case "stats":
		return c.StatsDataTTL
	default:
		return c.VehicleDataTTL
	}
}
