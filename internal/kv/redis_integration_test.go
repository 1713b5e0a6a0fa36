//go:build integration

package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisTestcontainer(t *testing.T) *Redis {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithOccurrence(1).WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Failed to start Redis testcontainer: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewRedis(url + "/1")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestRedis_GetSet(t *testing.T) {
	store := setupRedisTestcontainer(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "todolist_tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "todolist_tasks", []byte(`[{"id":1}]`)))
	got, err := store.Get(ctx, "todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis("not-a-url")
	assert.Error(t, err)
}
