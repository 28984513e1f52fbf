// Package engine owns the local view of one identity's ledger. An Engine is
// constructed with a sync adapter and an identity key; the caller owns its
// lifecycle and must Close it on identity change so no data from a previous
// identity stays visible.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
	"github.com/annuksk07-cloud/xpenseflow/internal/stats"
	"github.com/annuksk07-cloud/xpenseflow/internal/toast"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

// settingsDocID is the fixed id of the per-identity settings document
const settingsDocID = "preferences"

// defaultQueueSize buffers commands and snapshots before enqueueing blocks
const defaultQueueSize = 64

var (
	// ErrClosed is returned by commands after the engine shut down
	ErrClosed = errors.New("ledger engine is closed")
	// ErrNotStarted is returned by commands before Start
	ErrNotStarted = errors.New("ledger engine is not started")
)

// Config assembles an Engine's collaborators
type Config struct {
	// Identity is the opaque identity key from the auth collaborator. It
	// must already be resolved; an engine never exists for an unresolved
	// identity.
	Identity string
	Adapter  remote.Adapter
	Rates    *currency.Table
	Toasts   *toast.Channel
	Logger   *logger.Logger

	// Now overrides the clock, for tests
	Now func() time.Time
	// QueueSize overrides the task queue buffer size
	QueueSize int
}

// Engine is the ledger and settings store for a single identity. All
// mutation intents and listener snapshots are sequenced through one task
// queue, so reconciliations never race each other or user commands.
// Commands are fire-and-forget: local state changes only when the adapter
// echoes the write back through a snapshot.
type Engine struct {
	identity string
	adapter  remote.Adapter
	rates    *currency.Table
	toasts   *toast.Channel
	log      *logger.Logger
	now      func() time.Time

	tasks     chan func()
	ctx       context.Context
	cancel    context.CancelFunc
	loopDone  chan struct{}
	closeOnce sync.Once

	mu             sync.RWMutex
	started        bool
	closed         bool
	transactions   []ledger.Transaction
	subscriptions  []ledger.Subscription
	settings       settings.Settings
	stats          stats.Stats
	txLoaded       bool
	subLoaded      bool
	settingsLoaded bool
	unsubs         []remote.Unsubscribe
}

// New creates an engine for a resolved identity
func New(cfg Config) (*Engine, error) {
	if cfg.Identity == "" {
		return nil, fmt.Errorf("identity is required")
	}
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("sync adapter is required")
	}

	rates := cfg.Rates
	if rates == nil {
		rates = currency.DefaultTable()
	}
	toasts := cfg.Toasts
	if toasts == nil {
		toasts = toast.NewChannel()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("development")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	e := &Engine{
		identity: cfg.Identity,
		adapter:  cfg.Adapter,
		rates:    rates,
		toasts:   toasts,
		log:      log.WithField("identity", cfg.Identity),
		now:      now,
		tasks:    make(chan func(), queueSize),
		settings: settings.Default(),
	}
	e.stats = stats.Compute(nil, e.settings, e.now())
	return e, nil
}

// Start launches the run loop and establishes the upstream listeners. It
// must be called exactly once.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("ledger engine already started")
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.loopDone = make(chan struct{})
	e.mu.Unlock()

	go e.run()

	subs := []struct {
		path     string
		orderKey string
		apply    func(remote.Snapshot, error)
	}{
		{e.transactionsPath(), "date", e.reconcileTransactions},
		{e.subscriptionsPath(), "nextDueDate", e.reconcileSubscriptions},
		{e.settingsPath(), "", e.reconcileSettings},
	}

	for _, sub := range subs {
		apply := sub.apply
		unsub, err := e.adapter.Subscribe(e.ctx, sub.path, sub.orderKey, func(snap remote.Snapshot, err error) {
			e.enqueue(func() { apply(snap, err) })
		})
		if err != nil {
			e.Close()
			return fmt.Errorf("failed to subscribe to %s: %w", sub.path, err)
		}
		e.mu.Lock()
		e.unsubs = append(e.unsubs, unsub)
		e.mu.Unlock()
	}

	return nil
}

// Close tears down all listeners, stops the run loop and resets local state
// to empty collections and default settings. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		unsubs := e.unsubs
		e.unsubs = nil
		started := e.started
		e.mu.Unlock()

		for _, unsub := range unsubs {
			unsub()
		}
		if started {
			e.cancel()
			<-e.loopDone
		}

		e.mu.Lock()
		e.transactions = nil
		e.subscriptions = nil
		e.settings = settings.Default()
		e.stats = stats.Compute(nil, e.settings, e.now())
		e.txLoaded = false
		e.subLoaded = false
		e.settingsLoaded = false
		e.mu.Unlock()

		e.toasts.Reset()
		e.log.Info("ledger engine closed")
	})
}

func (e *Engine) run() {
	defer close(e.loopDone)
	for {
		select {
		case <-e.ctx.Done():
			return
		case task := <-e.tasks:
			task()
		}
	}
}

// enqueue sequences a task onto the engine's queue. Tasks submitted after
// shutdown are dropped.
func (e *Engine) enqueue(task func()) {
	e.mu.RLock()
	started, closed, ctx := e.started, e.closed, e.ctx
	e.mu.RUnlock()
	if !started || closed {
		return
	}
	select {
	case e.tasks <- task:
	case <-ctx.Done():
	}
}

func (e *Engine) transactionsPath() string  { return "users/" + e.identity + "/transactions" }
func (e *Engine) subscriptionsPath() string { return "users/" + e.identity + "/subscriptions" }
func (e *Engine) settingsPath() string      { return "users/" + e.identity + "/settings" }
