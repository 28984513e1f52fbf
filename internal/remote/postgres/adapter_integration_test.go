//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/internal/remote/postgres"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

func startAdapter(t *testing.T) *postgres.Adapter {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("xpenseflow_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(120*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: connStr})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	adapter := postgres.New(pool, logger.NewDefault("development"))
	require.NoError(t, adapter.EnsureSchema(ctx))
	return adapter
}

type recorder struct {
	mu    sync.Mutex
	snaps []remote.Snapshot
}

func (r *recorder) callback(snap remote.Snapshot, err error) {
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) latest() (remote.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return remote.Snapshot{}, false
	}
	return r.snaps[len(r.snaps)-1], true
}

func TestAdapter_WriteAndNotify(t *testing.T) {
	adapter := startAdapter(t)
	ctx := context.Background()
	path := "users/u1/transactions"

	rec := &recorder{}
	unsub, err := adapter.Subscribe(ctx, path, "date", rec.callback)
	require.NoError(t, err)
	defer unsub()

	// Initial snapshot of the empty collection
	require.Eventually(t, func() bool {
		snap, ok := rec.latest()
		return ok && len(snap.Docs) == 0
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, adapter.Create(ctx, path, "tx-1", map[string]string{"id": "tx-1", "title": "Coffee"}))

	require.Eventually(t, func() bool {
		snap, ok := rec.latest()
		return ok && len(snap.Docs) == 1
	}, 5*time.Second, 50*time.Millisecond)

	snap, _ := rec.latest()
	assert.Equal(t, "tx-1", snap.Docs[0].ID)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(snap.Docs[0].Data, &doc))
	assert.Equal(t, "Coffee", doc["title"])

	require.NoError(t, adapter.Remove(ctx, path, "tx-1"))
	require.Eventually(t, func() bool {
		snap, ok := rec.latest()
		return ok && len(snap.Docs) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestAdapter_PutReplacesDocument(t *testing.T) {
	adapter := startAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Put(ctx, "users/u1/settings/preferences", map[string]float64{"budgetLimit": 100}))
	require.NoError(t, adapter.Put(ctx, "users/u1/settings/preferences", map[string]float64{"budgetLimit": 250}))

	rec := &recorder{}
	unsub, err := adapter.Subscribe(ctx, "users/u1/settings", "", rec.callback)
	require.NoError(t, err)
	defer unsub()

	require.Eventually(t, func() bool {
		snap, ok := rec.latest()
		return ok && len(snap.Docs) == 1
	}, 5*time.Second, 50*time.Millisecond)

	snap, _ := rec.latest()
	var doc map[string]float64
	require.NoError(t, json.Unmarshal(snap.Docs[0].Data, &doc))
	assert.Equal(t, float64(250), doc["budgetLimit"])
}

func TestAdapter_PathIsolation(t *testing.T) {
	adapter := startAdapter(t)
	ctx := context.Background()

	rec := &recorder{}
	unsub, err := adapter.Subscribe(ctx, "users/u1/transactions", "date", rec.callback)
	require.NoError(t, err)
	defer unsub()

	require.Eventually(t, func() bool {
		_, ok := rec.latest()
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, adapter.Create(ctx, "users/u2/transactions", "tx-1", map[string]string{}))

	time.Sleep(500 * time.Millisecond)
	snap, _ := rec.latest()
	assert.Empty(t, snap.Docs)
}
