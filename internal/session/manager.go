// Package session owns engine lifecycles per identity. One engine exists
// per resolved identity; releasing a session closes its engine and resets
// all local state, so nothing from a previous identity stays visible after
// sign-out.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
	"github.com/annuksk07-cloud/xpenseflow/internal/engine"
	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/internal/toast"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

// Manager creates and disposes ledger engines keyed by identity
type Manager struct {
	baseCtx  context.Context
	adapter  remote.Adapter
	rates    *currency.Table
	log      *logger.Logger
	toastTTL time.Duration

	mu      sync.Mutex
	engines map[string]*engine.Engine
	closed  bool
}

// Config assembles a Manager
type Config struct {
	// BaseContext bounds the lifetime of every engine's listeners; it must
	// outlive individual requests. Defaults to context.Background().
	BaseContext context.Context
	Adapter     remote.Adapter
	Rates       *currency.Table
	Logger      *logger.Logger
	ToastTTL    time.Duration
}

// NewManager creates a manager over a shared sync adapter
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Adapter == nil {
		return nil, fmt.Errorf("sync adapter is required")
	}
	rates := cfg.Rates
	if rates == nil {
		rates = currency.DefaultTable()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("development")
	}
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Manager{
		baseCtx:  baseCtx,
		adapter:  cfg.Adapter,
		rates:    rates,
		log:      log,
		toastTTL: cfg.ToastTTL,
		engines:  make(map[string]*engine.Engine),
	}, nil
}

// Engine returns the engine for an identity, creating and starting it on
// first use. The identity must already be resolved by the auth collaborator.
func (m *Manager) Engine(identity string) (*engine.Engine, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("session manager is closed")
	}
	if eng, ok := m.engines[identity]; ok {
		return eng, nil
	}

	eng, err := engine.New(engine.Config{
		Identity: identity,
		Adapter:  m.adapter,
		Rates:    m.rates,
		Toasts:   toast.NewChannelWithTTL(m.toastTTL),
		Logger:   m.log,
	})
	if err != nil {
		return nil, err
	}
	if err := eng.Start(m.baseCtx); err != nil {
		return nil, err
	}

	m.engines[identity] = eng
	m.log.Info("ledger engine started", "identity", identity)
	return eng, nil
}

// Release closes the engine for an identity. Releasing an unknown identity
// is a no-op.
func (m *Manager) Release(identity string) {
	m.mu.Lock()
	eng, ok := m.engines[identity]
	delete(m.engines, identity)
	m.mu.Unlock()

	if ok {
		eng.Close()
		m.log.Info("ledger engine released", "identity", identity)
	}
}

// Close closes every engine and rejects further use
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	engines := m.engines
	m.engines = make(map[string]*engine.Engine)
	m.mu.Unlock()

	for _, eng := range engines {
		eng.Close()
	}
}
