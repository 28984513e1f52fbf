// Package memory provides an in-process sync adapter. It is the backend for
// tests and single-instance deployments; production uses the redis or
// postgres adapters.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
)

// snapshotBuffer caps pending snapshots per subscriber before the oldest
// delivery blocks the publisher
const snapshotBuffer = 16

// Adapter is an in-memory implementation of remote.Adapter. Snapshots are
// fanned out to each subscriber through a dedicated goroutine reading from
// an ordered queue, so each subscriber observes changes in write order.
type Adapter struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
	subscribers map[string][]*subscriber
	nextSubID   int
	closed      bool

	// failWrites, when set, makes every write operation fail. Used to
	// exercise the engine's failure paths.
	failWrites error
}

type subscriber struct {
	id       int
	path     string
	ch       chan remote.Snapshot
	cb       remote.Callback
	done     chan struct{}
	stopOnce sync.Once
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// New creates an empty in-memory adapter
func New() *Adapter {
	return &Adapter{
		collections: make(map[string]map[string]json.RawMessage),
		subscribers: make(map[string][]*subscriber),
	}
}

// FailWrites makes subsequent Create/Remove/Put calls return err.
// Pass nil to restore normal operation.
func (a *Adapter) FailWrites(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failWrites = err
}

// Subscribe implements remote.Adapter
func (a *Adapter) Subscribe(ctx context.Context, path string, orderKey string, cb remote.Callback) (remote.Unsubscribe, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, remote.ErrClosed
	}

	sub := &subscriber{
		id:   a.nextSubID,
		path: path,
		ch:   make(chan remote.Snapshot, snapshotBuffer),
		cb:   cb,
		done: make(chan struct{}),
	}
	a.nextSubID++
	a.subscribers[path] = append(a.subscribers[path], sub)

	// Initial snapshot queued before the lock is released so no write can
	// slip in between
	sub.ch <- a.snapshotLocked(path)
	a.mu.Unlock()

	go sub.run(ctx)

	unsub := func() {
		a.dropSubscriber(sub)
		sub.stop()
	}
	return unsub, nil
}

func (s *subscriber) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case snap := <-s.ch:
			s.cb(snap, nil)
		}
	}
}

// Create implements remote.Adapter
func (a *Adapter) Create(ctx context.Context, path string, id string, doc any) error {
	return a.write(path, id, doc)
}

// Put implements remote.Adapter
func (a *Adapter) Put(ctx context.Context, docPath string, doc any) error {
	path, id := remote.SplitDocPath(docPath)
	if path == "" {
		return fmt.Errorf("invalid document path: %s", docPath)
	}
	return a.write(path, id, doc)
}

// Remove implements remote.Adapter
func (a *Adapter) Remove(ctx context.Context, path string, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return remote.ErrClosed
	}
	if a.failWrites != nil {
		return a.failWrites
	}

	col, ok := a.collections[path]
	if !ok {
		return nil
	}
	delete(col, id)
	a.publishLocked(path)
	return nil
}

// Close drops all state and stops delivering snapshots
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	for _, subs := range a.subscribers {
		for _, sub := range subs {
			sub.stop()
		}
	}
	a.subscribers = make(map[string][]*subscriber)
}

// Documents returns the stored documents of a collection, for tests
func (a *Adapter) Documents(path string) []remote.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked(path).Docs
}

func (a *Adapter) write(path, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return remote.ErrClosed
	}
	if a.failWrites != nil {
		return a.failWrites
	}

	col, ok := a.collections[path]
	if !ok {
		col = make(map[string]json.RawMessage)
		a.collections[path] = col
	}
	col[id] = data
	a.publishLocked(path)
	return nil
}

func (a *Adapter) publishLocked(path string) {
	snap := a.snapshotLocked(path)
	for _, sub := range a.subscribers[path] {
		// Never block while holding the adapter lock: when a subscriber's
		// buffer is full, drop its oldest pending snapshot. Every snapshot
		// is full state, so only the newest one matters.
		select {
		case sub.ch <- snap:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
}

func (a *Adapter) snapshotLocked(path string) remote.Snapshot {
	col := a.collections[path]
	docs := make([]remote.Document, 0, len(col))
	for id, data := range col {
		docs = append(docs, remote.Document{ID: id, Data: data})
	}
	// Deterministic order for tests; the engine re-sorts by its own keys
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return remote.Snapshot{Docs: docs}
}

func (a *Adapter) dropSubscriber(sub *subscriber) {
	a.mu.Lock()
	defer a.mu.Unlock()

	subs := a.subscribers[sub.path]
	for i, s := range subs {
		if s.id == sub.id {
			a.subscribers[sub.path] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

var _ remote.Adapter = (*Adapter)(nil)
