// Package remote defines the sync adapter contract between the ledger
// engine and the authoritative upstream store. The engine treats local
// state as a cache of the last snapshot an adapter delivered; adapters own
// the canonical copies.
package remote

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrClosed is returned by adapter operations after the adapter shut down
var ErrClosed = errors.New("sync adapter is closed")

// Document is one record of a collection as the upstream store holds it
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Snapshot is a full view of one collection at a point in time
type Snapshot struct {
	Docs []Document
}

// Callback receives either a fresh snapshot or a listener failure. For any
// single subscription, invocations are serialized and arrive in the order
// the upstream observed the changes.
type Callback func(Snapshot, error)

// Unsubscribe tears down a subscription. Safe to call more than once.
type Unsubscribe func()

// Adapter is the transport/persistence boundary required by the ledger and
// settings stores. Writes are fire-and-forget from the store's perspective:
// visible state only changes when the listener echoes the write back.
// Timeouts are the adapter's responsibility.
type Adapter interface {
	// Subscribe delivers an initial snapshot of the collection and every
	// subsequent change. orderKey is a hint for upstream query shaping;
	// callers must not rely on document order within a snapshot.
	Subscribe(ctx context.Context, path string, orderKey string, cb Callback) (Unsubscribe, error)

	// Create writes a new document into a collection
	Create(ctx context.Context, path string, id string, doc any) error

	// Remove deletes a document from a collection
	Remove(ctx context.Context, path string, id string) error

	// Put writes a full document at docPath ("<collection>/<id>"),
	// replacing any previous version (last-writer-wins)
	Put(ctx context.Context, docPath string, doc any) error
}

// SplitDocPath splits "<collection>/<id>" into collection path and id
func SplitDocPath(docPath string) (string, string) {
	for i := len(docPath) - 1; i >= 0; i-- {
		if docPath[i] == '/' {
			return docPath[:i], docPath[i+1:]
		}
	}
	return "", docPath
}
