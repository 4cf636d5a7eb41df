package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimiter_Allow(t *testing.T) {
	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         3,
		WindowSize:        time.Minute,
	}

	limiter := NewMemoryRateLimiter(config)

	clientID := "test_client"
	endpoint := "GET:/api/v1/unknown"

	// Burst of 3 goes through, the 4th is blocked.
	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(clientID, endpoint)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, resetTime, err := limiter.Allow(clientID, endpoint)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, resetTime, time.Duration(0))
}

func TestMemoryRateLimiter_DifferentClients(t *testing.T) {
	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         1,
		WindowSize:        time.Minute,
	}

	limiter := NewMemoryRateLimiter(config)

	endpoint := "GET:/api/v1/unknown"

	allowed, _, err := limiter.Allow("client1", endpoint)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow("client1", endpoint)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client has its own bucket.
	allowed, _, err = limiter.Allow("client2", endpoint)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryRateLimiter_Disabled(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false

	limiter := NewMemoryRateLimiter(config)

	for i := 0; i < 50; i++ {
		allowed, _, err := limiter.Allow("client", "GET:/api/v1/vehicles")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestMemoryRateLimiter_CustomLimit(t *testing.T) {
	limiter := NewMemoryRateLimiter(DefaultConfig())

	endpoint := "POST:/api/v1/bookings"
	err := limiter.SetCustomLimit("vip_client", endpoint, RateLimit{
		RequestsPerMinute: 1000,
		BurstSize:         2,
		WindowSize:        time.Minute,
	})
	require.NoError(t, err)

	limits := limiter.GetLimits("vip_client")
	assert.Equal(t, 1000, limits[endpoint].RequestsPerMinute)

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow("vip_client", endpoint)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, _, err := limiter.Allow("vip_client", endpoint)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestMemoryRateLimiter_Stats(t *testing.T) {
	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         1,
		WindowSize:        time.Minute,
	}

	limiter := NewMemoryRateLimiter(config)

	endpoint := "GET:/api/v1/unknown"
	limiter.Allow("client", endpoint)
	limiter.Allow("client", endpoint)

	stats := limiter.GetStats()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.BlockedRequests)
}
