package blacklist_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	redisdriver "github.com/slavborworld/auth/internal/auth/store/drivers/redis"
)

/*
 * End-to-end test for the Redis-backed token blacklist. Spins up a real
 * Redis in a container and exercises revocation against it. Requires a
 * Docker daemon; skipped in -short mode.
 */

// setupBlacklist starts a Redis container and returns a connected driver.
func setupBlacklist(t *testing.T) *redisdriver.Blacklist {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	bl := redisdriver.NewBlacklist(goredis.NewClient(&goredis.Options{Addr: endpoint}))
	t.Cleanup(func() { _ = bl.Close() })
	require.NoError(t, bl.Ping(ctx))

	return bl
}

func TestRedisBlacklist(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	bl := setupBlacklist(t)
	ctx := context.Background()

	t.Run("revoke and check", func(t *testing.T) {
		written, err := bl.Revoke(ctx, "token-live", time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.True(t, written)

		revoked, err := bl.IsRevoked(ctx, "token-live")
		require.NoError(t, err)
		require.True(t, revoked)

		revoked, err = bl.IsRevoked(ctx, "token-unknown")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("already-expired token is not written", func(t *testing.T) {
		written, err := bl.Revoke(ctx, "token-expired", time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.False(t, written)

		revoked, err := bl.IsRevoked(ctx, "token-expired")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("revocation is idempotent", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		for range 3 {
			_, err := bl.Revoke(ctx, "token-repeat", expiry)
			require.NoError(t, err)
		}

		revoked, err := bl.IsRevoked(ctx, "token-repeat")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("entry expires with the token", func(t *testing.T) {
		written, err := bl.Revoke(ctx, "token-short", time.Now().Add(2*time.Second))
		require.NoError(t, err)
		require.True(t, written)

		revoked, err := bl.IsRevoked(ctx, "token-short")
		require.NoError(t, err)
		require.True(t, revoked)

		// Redis drops the key at the token's natural expiry.
		require.Eventually(t, func() bool {
			revoked, err := bl.IsRevoked(ctx, "token-short")
			return err == nil && !revoked
		}, 10*time.Second, 250*time.Millisecond)
	})
}
