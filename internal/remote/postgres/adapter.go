// Package postgres implements the sync adapter contract on Postgres. All
// collections share one documents table keyed by (path, id); snapshot
// streaming uses LISTEN/NOTIFY with the collection path as payload, and
// every notification triggers a full reload of the affected collection.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

// notifyChannel is the single NOTIFY channel shared by all collections;
// listeners filter on the payload
const notifyChannel = "sync_documents"

// Adapter is a Postgres-backed implementation of remote.Adapter
type Adapter struct {
	pool   *pgxpool.Pool
	logger *logger.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a Postgres sync adapter
func New(pool *pgxpool.Pool, log *logger.Logger) *Adapter {
	return &Adapter{
		pool:   pool,
		logger: log.WithField("component", "postgres_sync"),
	}
}

// EnsureSchema creates the documents table when it does not exist yet
func (a *Adapter) EnsureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_documents (
			path       TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			data       JSONB       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (path, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sync_documents table: %w", err)
	}
	return nil
}

// Subscribe implements remote.Adapter. The subscription takes a dedicated
// connection out of the pool for LISTEN and reloads the collection on every
// notification carrying its path.
func (a *Adapter) Subscribe(ctx context.Context, path string, orderKey string, cb remote.Callback) (remote.Unsubscribe, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, remote.ErrClosed
	}
	a.mu.Unlock()

	poolConn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}

	// Take the connection out of the pool entirely; a connection in LISTEN
	// state must not be handed back to other callers
	conn := poolConn.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)

	go a.listen(subCtx, conn, path, cb)

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			cancel()
			_ = conn.Close(context.Background())
		})
	}
	return unsub, nil
}

func (a *Adapter) listen(ctx context.Context, conn *pgx.Conn, path string, cb remote.Callback) {
	snap, err := a.load(ctx, path)
	if ctx.Err() != nil {
		return
	}
	cb(snap, err)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			a.logger.Error("listener failed", "path", path, "error", err)
			cb(remote.Snapshot{}, fmt.Errorf("listener failed for %s: %w", path, err))
			return
		}
		if notification.Payload != path {
			continue
		}

		snap, err := a.load(ctx, path)
		if ctx.Err() != nil {
			return
		}
		cb(snap, err)
	}
}

// Create implements remote.Adapter. Creates are upserts: replaying a write
// the upstream already observed must not fail.
func (a *Adapter) Create(ctx context.Context, path string, id string, doc any) error {
	return a.write(ctx, path, id, doc)
}

// Remove implements remote.Adapter
func (a *Adapter) Remove(ctx context.Context, path string, id string) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sync_documents WHERE path = $1 AND id = $2`, path, id); err != nil {
		return fmt.Errorf("failed to remove document %s/%s: %w", path, id, err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path); err != nil {
		return fmt.Errorf("failed to notify %s: %w", path, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit remove: %w", err)
	}
	return nil
}

// Put implements remote.Adapter
func (a *Adapter) Put(ctx context.Context, docPath string, doc any) error {
	path, id := remote.SplitDocPath(docPath)
	if path == "" {
		return fmt.Errorf("invalid document path: %s", docPath)
	}
	return a.write(ctx, path, id, doc)
}

// Close marks the adapter closed. Live subscriptions are torn down by
// their owners via the unsubscribe handles.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

func (a *Adapter) write(ctx context.Context, path, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sync_documents (path, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (path, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, path, id, data)
	if err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", path, id, err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path); err != nil {
		return fmt.Errorf("failed to notify %s: %w", path, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit write: %w", err)
	}
	return nil
}

func (a *Adapter) load(ctx context.Context, path string) (remote.Snapshot, error) {
	rows, err := a.pool.Query(ctx, `SELECT id, data FROM sync_documents WHERE path = $1 ORDER BY id`, path)
	if err != nil {
		return remote.Snapshot{}, fmt.Errorf("failed to load collection %s: %w", path, err)
	}
	defer rows.Close()

	var docs []remote.Document
	for rows.Next() {
		var doc remote.Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return remote.Snapshot{}, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return remote.Snapshot{}, fmt.Errorf("failed to read collection %s: %w", path, err)
	}
	return remote.Snapshot{Docs: docs}, nil
}

var _ remote.Adapter = (*Adapter)(nil)
