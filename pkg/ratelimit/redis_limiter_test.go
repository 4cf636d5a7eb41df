package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	err = client.Ping(context.Background()).Err()
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestNewRedisRateLimiter(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	limiter := NewRedisRateLimiter(client, config)

	assert.NotNil(t, limiter)
	assert.Equal(t, config, limiter.config)
	assert.NotNil(t, limiter.stats)
	assert.NotNil(t, limiter.customLimits)
}

func TestRedisRateLimiter_Allow_BasicFunctionality(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 5,
		BurstSize:         3,
		WindowSize:        time.Minute,
	}

	limiter := NewRedisRateLimiter(client, config)

	clientID := "test-client"
	endpoint := "test-endpoint"

	// First 3 requests should be allowed (burst size)
	for i := 0; i < 3; i++ {
		allowed, resetTime, err := limiter.Allow(clientID, endpoint)
		assert.NoError(t, err)
		assert.True(t, allowed, "Request %d should be allowed", i+1)
		assert.Equal(t, time.Duration(0), resetTime)
	}

	// 4th request should be blocked (exceeded burst)
	allowed, resetTime, err := limiter.Allow(clientID, endpoint)
	assert.NoError(t, err)
	assert.False(t, allowed, "4th request should be blocked")
	assert.Greater(t, resetTime, time.Duration(0))
}

func TestRedisRateLimiter_Allow_DifferentClients(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 5,
		BurstSize:         1,
		WindowSize:        time.Minute,
	}

	limiter := NewRedisRateLimiter(client, config)

	endpoint := "test-endpoint"

	// Both clients should be allowed their first request
	allowed1, _, err := limiter.Allow("client1", endpoint)
	assert.NoError(t, err)
	assert.True(t, allowed1)

	allowed2, _, err := limiter.Allow("client2", endpoint)
	assert.NoError(t, err)
	assert.True(t, allowed2)

	// Both clients should be blocked on second request
	allowed1, _, err = limiter.Allow("client1", endpoint)
	assert.NoError(t, err)
	assert.False(t, allowed1)

	allowed2, _, err = limiter.Allow("client2", endpoint)
	assert.NoError(t, err)
	assert.False(t, allowed2)
}

func TestRedisRateLimiter_Allow_DisabledLimiter(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.Enabled = false

	limiter := NewRedisRateLimiter(client, config)

	// All requests should be allowed when limiter is disabled
	for i := 0; i < 10; i++ {
		allowed, resetTime, err := limiter.Allow("client", "endpoint")
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, time.Duration(0), resetTime)
	}
}

func TestRedisRateLimiter_SetCustomLimit(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	limiter := NewRedisRateLimiter(client, DefaultConfig())

	clientID := "test-client"
	endpoint := "test-endpoint"
	customLimit := RateLimit{
		RequestsPerMinute: 10,
		BurstSize:         5,
		WindowSize:        time.Minute,
	}

	err := limiter.SetCustomLimit(clientID, endpoint, customLimit)
	assert.NoError(t, err)

	limits := limiter.GetLimits(clientID)
	assert.Equal(t, customLimit, limits[endpoint])

	// Custom limit governs the burst
	for i := 0; i < 5; i++ {
		allowed, _, err := limiter.Allow(clientID, endpoint)
		assert.NoError(t, err)
		assert.True(t, allowed, "Request %d should be allowed with custom limit", i+1)
	}

	allowed, _, err := limiter.Allow(clientID, endpoint)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisRateLimiter_GetStats(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	limiter := NewRedisRateLimiter(client, DefaultConfig())

	stats := limiter.GetStats()
	assert.Equal(t, int64(0), stats.TotalRequests)
	assert.Equal(t, int64(0), stats.BlockedRequests)

	limiter.Allow("client1", "endpoint1")
	limiter.Allow("client1", "endpoint1")
	limiter.Allow("client2", "endpoint1")

	stats = limiter.GetStats()
	assert.Equal(t, int64(3), stats.TotalRequests)
}

func TestConfig_GetEndpointKey(t *testing.T) {
	config := DefaultConfig()

	tests := []struct {
		endpoint string
		method   string
		expected string
	}{
		{"/api/v1/auth/login", "POST", "auth_login"},
		{"/api/v1/auth/forgot-password", "POST", "auth_password"},
		{"/api/v1/vehicles", "GET", "vehicles"},
		{"/api/v1/vehicles", "POST", "vehicles_create"},
		{"/api/v1/vehicles/123", "PATCH", "vehicles_update"},
		{"/api/v1/vehicles/abc", "DELETE", "vehicles_delete"},
		{"/api/v1/bookings", "POST", "bookings_create"},
		{"/api/v1/payments/abc/verify", "POST", "payments"},
		{"/api/v1/health", "GET", "health"},
		{"/api/v1/unknown", "GET", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.endpoint, func(t *testing.T) {
			result := config.GetEndpointKey(tt.endpoint, tt.method)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		key     string
		pattern string
		matches bool
	}{
		{"POST:/api/v1/vehicles/123", "POST:/api/v1/vehicles/*", true},
		{"PATCH:/api/v1/vehicles/abc", "PATCH:/api/v1/vehicles/*", true},
		{"GET:/api/v1/vehicles", "POST:/api/v1/vehicles/*", false},
		{"POST:/api/v1/auth/login", "POST:/api/v1/auth/login", true},
		{"POST:/api/v1/auth/refresh", "POST:/api/v1/auth/login", false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"_"+tt.pattern, func(t *testing.T) {
			result := matchesPattern(tt.key, tt.pattern)
			assert.Equal(t, tt.matches, result)
		})
	}
}
