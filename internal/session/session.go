// Package session tracks which store the process is talking to. Signed-out
// sessions use the local store; an authenticated owner switches to the cloud.
package session

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Seeder prepares a scope on entry.
type Seeder interface {
	Seed(ctx context.Context, scope core.Scope) (bool, error)
	Revalidate(ctx context.Context, scope core.Scope)
}

// ScopeStore persists the active scope across process restarts.
type ScopeStore interface {
	LastScope(ctx context.Context) (core.Scope, bool, error)
	SaveScope(ctx context.Context, scope core.Scope) error
}

type Manager struct {
	seeder Seeder
	store  ScopeStore
	logger *log.Logger

	// transition serializes sign-in and sign-out
	transition sync.Mutex

	mu    sync.RWMutex
	scope core.Scope
	seen  map[string]bool
}

type Option func(*Manager)

// WithScopeStore makes Start restore the last saved scope and every switch
// save the new one.
func WithScopeStore(store ScopeStore) Option {
	return func(m *Manager) { m.store = store }
}

func NewManager(seeder Seeder, logger *log.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	m := &Manager{
		seeder: seeder,
		logger: logger.WithComponent(log.ComponentSession),
		scope:  core.LocalScope(),
		seen:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the active scope.
func (m *Manager) Current() core.Scope {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scope
}

func (m *Manager) set(scope core.Scope) {
	m.mu.Lock()
	m.scope = scope
	m.mu.Unlock()
}

// Start prepares the local store and restores the saved scope. A saved cloud
// owner that can no longer be entered leaves the process in local mode.
func (m *Manager) Start(ctx context.Context) error {
	var last core.Scope
	if m.store != nil {
		saved, ok, err := m.store.LastScope(ctx)
		if err != nil {
			m.logger.WarnContext(ctx, "Failed to read saved session", log.FieldError, err)
		} else if ok {
			last = saved
		}
	}
	if err := m.SignOut(ctx); err != nil {
		return err
	}
	if last.Mode != core.ModeCloud {
		return nil
	}
	if err := m.SignIn(ctx, last.OwnerID); err != nil {
		m.logger.WarnContext(ctx, "Could not restore cloud session",
			log.FieldOwner, last.OwnerID,
			log.FieldError, err)
		return nil
	}
	m.logger.InfoContext(ctx, "Restored cloud session", log.FieldOwner, last.OwnerID)
	return nil
}

func (m *Manager) save(ctx context.Context, scope core.Scope) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveScope(ctx, scope); err != nil {
		m.logger.WarnContext(ctx, "Failed to save session", log.FieldError, err)
	}
}

// SignIn switches to the owner's cloud scope. The owner's starter data is
// written the first time this process sees them. On failure the previous
// scope stays active.
func (m *Manager) SignIn(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return core.ErrNoSession
	}
	m.transition.Lock()
	defer m.transition.Unlock()

	scope := core.CloudScope(ownerID)

	m.mu.RLock()
	seen := m.seen[ownerID]
	m.mu.RUnlock()

	if !seen {
		seeded, err := m.seeder.Seed(ctx, scope)
		if err != nil {
			m.logger.ErrorContext(ctx, "Cloud seed failed",
				log.FieldOwner, ownerID,
				log.FieldError, err)
			return fmt.Errorf("enter cloud mode: %w", err)
		}
		m.mu.Lock()
		m.seen[ownerID] = true
		m.mu.Unlock()
		if seeded {
			m.logger.InfoContext(ctx, "Seeded new cloud owner", log.FieldOwner, ownerID)
		}
	}

	m.set(scope)
	m.save(ctx, scope)
	m.seeder.Revalidate(ctx, scope)
	m.logger.InfoContext(ctx, "Switched storage mode",
		log.FieldMode, string(core.ModeCloud),
		log.FieldOwner, ownerID)
	return nil
}

// SignOut returns to local mode. Local seeding is idempotent, so it runs on
// every entry.
func (m *Manager) SignOut(ctx context.Context) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	scope := core.LocalScope()
	m.set(scope)
	if _, err := m.seeder.Seed(ctx, scope); err != nil {
		m.logger.ErrorContext(ctx, "Local seed failed", log.FieldError, err)
		return fmt.Errorf("enter local mode: %w", err)
	}
	m.save(ctx, scope)
	m.seeder.Revalidate(ctx, scope)
	m.logger.InfoContext(ctx, "Switched storage mode", log.FieldMode, string(core.ModeLocal))
	return nil
}
