// Package redis implements the sync adapter contract on Redis. Documents
// live in one hash per collection and snapshot streaming rides Redis
// pub/sub: every write publishes the collection path, and each subscriber
// reloads the full collection when its path comes through.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

const (
	// docKeyPrefix is the prefix for collection hash keys
	docKeyPrefix = "doc:"
	// channelPrefix is the prefix for pub/sub channels
	channelPrefix = "sync:"
)

// Adapter is a Redis-backed implementation of remote.Adapter
type Adapter struct {
	client *redis.Client
	logger *logger.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a Redis sync adapter
func New(client *redis.Client, log *logger.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: log.WithField("component", "redis_sync"),
	}
}

// Subscribe implements remote.Adapter. Each subscription runs a goroutine
// that serializes snapshot delivery, so callbacks for one subscription
// never race each other.
func (a *Adapter) Subscribe(ctx context.Context, path string, orderKey string, cb remote.Callback) (remote.Unsubscribe, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, remote.ErrClosed
	}
	a.mu.Unlock()

	pubsub := a.client.Subscribe(ctx, channelPrefix+path)

	// Confirm the subscription before the initial load so no write between
	// load and listen goes unobserved
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", path, err)
	}

	done := make(chan struct{})
	var once sync.Once

	go func() {
		snap, err := a.load(ctx, path)
		cb(snap, err)

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg.Payload != path {
					continue
				}
				snap, err := a.load(ctx, path)
				cb(snap, err)
			}
		}
	}()

	unsub := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				a.logger.Warn("failed to close pubsub", "path", path, "error", err)
			}
		})
	}
	return unsub, nil
}

// Create implements remote.Adapter
func (a *Adapter) Create(ctx context.Context, path string, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	pipe := a.client.TxPipeline()
	pipe.HSet(ctx, docKeyPrefix+path, id, data)
	pipe.Publish(ctx, channelPrefix+path, path)
	if _, err := pipe.Exec(ctx); err != nil {
		a.logger.Error("write failed", "operation", "create", "path", path, "error", err)
		return fmt.Errorf("failed to create document %s/%s: %w", path, id, err)
	}
	return nil
}

// Remove implements remote.Adapter
func (a *Adapter) Remove(ctx context.Context, path string, id string) error {
	pipe := a.client.TxPipeline()
	pipe.HDel(ctx, docKeyPrefix+path, id)
	pipe.Publish(ctx, channelPrefix+path, path)
	if _, err := pipe.Exec(ctx); err != nil {
		a.logger.Error("write failed", "operation", "remove", "path", path, "error", err)
		return fmt.Errorf("failed to remove document %s/%s: %w", path, id, err)
	}
	return nil
}

// Put implements remote.Adapter
func (a *Adapter) Put(ctx context.Context, docPath string, doc any) error {
	path, id := remote.SplitDocPath(docPath)
	if path == "" {
		return fmt.Errorf("invalid document path: %s", docPath)
	}
	return a.Create(ctx, path, id, doc)
}

// Close marks the adapter closed. Live subscriptions are torn down by
// their owners via the unsubscribe handles.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

func (a *Adapter) load(ctx context.Context, path string) (remote.Snapshot, error) {
	fields, err := a.client.HGetAll(ctx, docKeyPrefix+path).Result()
	if err != nil {
		return remote.Snapshot{}, fmt.Errorf("failed to load collection %s: %w", path, err)
	}

	docs := make([]remote.Document, 0, len(fields))
	for id, data := range fields {
		docs = append(docs, remote.Document{ID: id, Data: json.RawMessage(data)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return remote.Snapshot{Docs: docs}, nil
}

var _ remote.Adapter = (*Adapter)(nil)
