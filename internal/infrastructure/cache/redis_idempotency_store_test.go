package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
)

func TestRedisIdempotencyStore_SetNXConTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("requiere Docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker no disponible: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	store := cache.NewRedisIdempotencyStoreWithClient(client, "test:")
	defer store.Close()

	isNew, err := store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	ttl, err := client.TTL(ctx, "test:k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Release(ctx, "k"))
	isNew, err = store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)
}
