package redis

import (
	"net"
	"testing"
	"time"

	"rentwheels-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()

	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	return config.RedisConfig{
		Host:         host,
		Port:         port,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  time.Second,
	}
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewClient(testConfig(t, mr))
	defer client.Close()

	assert.NotNil(t, client.GetClient())
	assert.True(t, client.IsConnected())
}

func TestHealthCheck(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewClient(testConfig(t, mr))
	defer client.Close()

	status := client.HealthCheck()

	assert.True(t, status.IsConnected)
	assert.Empty(t, status.Error)
	assert.NotEmpty(t, status.ConnectionInfo)
	assert.False(t, status.LastPing.IsZero())
}

func TestHealthCheck_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := NewClient(testConfig(t, mr))
	defer client.Close()

	mr.Close()

	status := client.HealthCheck()
	assert.False(t, status.IsConnected)
	assert.NotEmpty(t, status.Error)
}

func TestGetConnectionStats(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewClient(testConfig(t, mr))
	defer client.Close()

	stats := client.GetConnectionStats()
	require.NotNil(t, stats)

	for _, key := range []string{"hits", "misses", "timeouts", "totalConns", "idleConns", "staleConns", "isConnected"} {
		assert.Contains(t, stats, key)
	}
	assert.Equal(t, true, stats["isConnected"])
}
