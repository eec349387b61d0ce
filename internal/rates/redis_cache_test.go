package rates

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	}()

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	c := NewRedisCache(client, "")

	t.Run("Get misses on empty cache", func(t *testing.T) {
		_, ok, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Set then Get returns rate", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, 1.3725, time.Minute))

		rate, ok, err := c.Get(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1.3725, rate)

		ttl, err := client.TTL(ctx, "fx:USDCAD").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})
}
