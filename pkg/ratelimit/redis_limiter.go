package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements RateLimiter using Redis as the backend
type RedisRateLimiter struct {
	client       *redis.Client
	config       *Config
	stats        *RateLimiterStats
	customLimits map[string]map[string]RateLimit // clientID -> endpoint -> limit
	mu           sync.RWMutex
	ctx          context.Context
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &RedisRateLimiter{
		client:       client,
		config:       config,
		stats:        &RateLimiterStats{},
		customLimits: make(map[string]map[string]RateLimit),
		ctx:          context.Background(),
	}
}

// Allow checks if a request should be allowed based on rate limits
func (r *RedisRateLimiter) Allow(clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&r.stats.TotalRequests, 1)

	limit := r.getRateLimit(clientID, endpoint)

	key := fmt.Sprintf("%s%s:%s", r.config.RedisKeyPrefix, clientID, endpoint)

	allowed, resetTime, err := r.checkWindow(key, limit)
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	if !allowed {
		atomic.AddInt64(&r.stats.BlockedRequests, 1)
		return false, resetTime, nil
	}

	return true, 0, nil
}

// checkWindow performs an atomic fixed-window check using a Lua script
func (r *RedisRateLimiter) checkWindow(key string, limit RateLimit) (bool, time.Duration, error) {
	now := time.Now()

	script := `
		local key = KEYS[1]
		local burst_size = tonumber(ARGV[1])
		local window_size = tonumber(ARGV[2])
		local now = tonumber(ARGV[3])

		local count = tonumber(redis.call('HGET', key, 'count')) or 0
		local window_start = tonumber(redis.call('HGET', key, 'window_start')) or now

		if now - window_start >= window_size then
			count = 0
			window_start = now
		end

		local allowed = count < burst_size
		if allowed then
			count = count + 1
		end

		local reset_time = 0
		if not allowed then
			reset_time = math.ceil(((window_start + window_size) - now) / 1000)
		end

		local ttl = math.max(1, math.ceil(window_size / 1000) + 1)
		redis.call('HSET', key, 'count', count)
		redis.call('HSET', key, 'window_start', window_start)
		redis.call('EXPIRE', key, ttl)

		return {allowed and 1 or 0, reset_time}
	`

	result, err := r.client.Eval(r.ctx, script, []string{key},
		limit.BurstSize,
		int64(limit.WindowSize.Milliseconds()),
		now.UnixMilli()).Result()

	if err != nil {
		return false, 0, err
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return false, 0, fmt.Errorf("unexpected script result format")
	}

	allowed := resultSlice[0].(int64) == 1
	resetTime := time.Duration(resultSlice[1].(int64)) * time.Second

	return allowed, resetTime, nil
}

// getRateLimit gets the rate limit for a specific client and endpoint
func (r *RedisRateLimiter) getRateLimit(clientID, endpoint string) RateLimit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if clientLimits, exists := r.customLimits[clientID]; exists {
		if limit, exists := clientLimits[endpoint]; exists {
			return limit
		}
	}

	endpointKey := r.config.GetEndpointKey(endpoint, "")

	if limit, exists := r.config.DefaultLimits[endpointKey]; exists {
		return limit
	}

	if defaultLimit, exists := r.config.DefaultLimits["default"]; exists {
		return defaultLimit
	}

	return RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         15,
		WindowSize:        time.Minute,
	}
}

// GetLimits returns the current rate limits for a client
func (r *RedisRateLimiter) GetLimits(clientID string) map[string]RateLimit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limits := make(map[string]RateLimit)

	for endpoint, limit := range r.config.DefaultLimits {
		limits[endpoint] = limit
	}

	if clientLimits, exists := r.customLimits[clientID]; exists {
		for endpoint, limit := range clientLimits {
			limits[endpoint] = limit
		}
	}

	return limits
}

// SetCustomLimit sets a custom rate limit for a specific client and endpoint
func (r *RedisRateLimiter) SetCustomLimit(clientID string, endpoint string, limit RateLimit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.customLimits[clientID] == nil {
		r.customLimits[clientID] = make(map[string]RateLimit)
	}

	r.customLimits[clientID][endpoint] = limit

	// Persist custom limits to Redis for durability
	key := fmt.Sprintf("%scustom:%s", r.config.RedisKeyPrefix, clientID)
	data, err := json.Marshal(r.customLimits[clientID])
	if err != nil {
		return fmt.Errorf("failed to marshal custom limits: %w", err)
	}

	err = r.client.Set(r.ctx, key, data, 24*time.Hour).Err()
	if err != nil {
		return fmt.Errorf("failed to persist custom limits: %w", err)
	}

	return nil
}

// GetStats returns current rate limiter statistics
func (r *RedisRateLimiter) GetStats() RateLimiterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := *r.stats
	stats.ActiveClients = len(r.customLimits)

	if stats.TotalRequests > 0 {
		stats.AverageLatency = float64(stats.BlockedRequests) / float64(stats.TotalRequests) * 100
	}

	return stats
}

// LoadCustomLimits loads custom limits from Redis on startup
func (r *RedisRateLimiter) LoadCustomLimits() error {
	pattern := fmt.Sprintf("%scustom:*", r.config.RedisKeyPrefix)
	iter := r.client.Scan(r.ctx, 0, pattern, 100).Iterator()

	prefix := fmt.Sprintf("%scustom:", r.config.RedisKeyPrefix)

	r.mu.Lock()
	defer r.mu.Unlock()

	for iter.Next(r.ctx) {
		key := iter.Val()

		clientID := key[len(prefix):]

		data, err := r.client.Get(r.ctx, key).Result()
		if err != nil {
			continue
		}

		var limits map[string]RateLimit
		if err := json.Unmarshal([]byte(data), &limits); err != nil {
			continue
		}

		r.customLimits[clientID] = limits
	}

	return iter.Err()
}
