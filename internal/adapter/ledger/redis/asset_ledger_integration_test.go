//go:build integration

package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClient *redis.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Redis resource: %s", err)
	}

	if err := pool.Retry(func() error {
		testClient = redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
		return testClient.Ping(context.Background()).Err()
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge Redis resource: %s", err)
	}
	os.Exit(code)
}

func newTestLedger(t *testing.T, now time.Time) *AssetLedger {
	t.Helper()
	l := NewAssetLedgerFromClient(testClient)
	l.prefix = fmt.Sprintf("test:%s", t.Name())
	l.now = func() time.Time { return now }
	return l
}

func TestAssetLedger_RecordMovesBetweenStates(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLedger(t, base)

	require.NoError(t, l.Record(ctx, "p/a.png", domain.AssetUploaded))
	require.NoError(t, l.Record(ctx, "p/b.png", domain.AssetUploaded))
	require.NoError(t, l.Record(ctx, "p/b.png", domain.AssetReferenced))

	state, err := l.State(ctx, "p/b.png")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetReferenced, state)

	stale, err := l.Stale(ctx, domain.AssetUploaded, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"p/a.png"}, stale)

	stale, err = l.Stale(ctx, domain.AssetUploaded, base)
	require.NoError(t, err)
	assert.Empty(t, stale, "the bound is exclusive")
}

func TestAssetLedger_UnknownPath(t *testing.T) {
	l := newTestLedger(t, time.Now())

	state, err := l.State(context.Background(), "never/seen.png")

	require.NoError(t, err)
	assert.Equal(t, domain.AssetState(""), state)
}

func TestAssetLedger_DeletedEntriesExpire(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, time.Now())

	require.NoError(t, l.Record(ctx, "p/c.png", domain.AssetDeleted))

	ttl, err := testClient.TTL(ctx, l.assetKey("p/c.png")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
