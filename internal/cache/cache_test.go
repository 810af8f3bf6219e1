package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/internal/cache"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis spins up a Redis container and returns a connected RedisCache.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rc, err := cache.NewRedisCache("redis://" + host + ":" + port.Port())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rc.Close()) })

	return rc
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	assert.NoError(t, rc.Ping(context.Background()))
}

func TestSetGetJobStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	jobID := uuid.New()

	err := rc.SetJobStatus(ctx, jobID, models.JobStatusCompleted, 10*time.Second)
	require.NoError(t, err)

	status, found, err := rc.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.JobStatusCompleted, status)
}

func TestGetJobStatus_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)

	status, found, err := rc.GetJobStatus(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "", status)
}

func TestJobStatus_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, rc.SetJobStatus(ctx, jobID, models.JobStatusStarted, 1*time.Second))

	_, found, err := rc.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(1500 * time.Millisecond)

	_, found, err = rc.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteJobStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, rc.SetJobStatus(ctx, jobID, models.JobStatusStarted, 10*time.Second))
	require.NoError(t, rc.DeleteJobStatus(ctx, jobID))

	_, found, err := rc.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncrWithExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	key := "ratelimit:test:" + uuid.NewString()[:8]

	for want := int64(1); want <= 3; want++ {
		val, err := rc.IncrWithExpiry(ctx, key, 10*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, val)
	}
}

// --- Cache Key Builders ---

func TestJobStatusKey(t *testing.T) {
	jobID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	assert.Equal(t, "job:22222222-2222-2222-2222-222222222222", cache.JobStatusKey(jobID))
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:203.0.113.9", cache.RateLimitKey("203.0.113.9"))
}

func TestKeyBuilders_NonColliding(t *testing.T) {
	jobID := uuid.New()
	keys := map[string]bool{
		cache.JobStatusKey(jobID):       true,
		cache.RateLimitKey("10.0.0.1"): true,
	}
	assert.Len(t, keys, 2, "all keys should be unique")
}
