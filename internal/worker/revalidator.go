package worker

import (
	"context"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// ScopeSource reports the active session scope.
type ScopeSource interface {
	Current() core.Scope
}

// ScopeRevalidator drops every cached slot of a scope.
type ScopeRevalidator interface {
	Revalidate(ctx context.Context, scope core.Scope)
}

// Revalidator periodically forgets the cached cloud data of the signed-in
// owner so writes from other devices show up without a broker.
type Revalidator struct {
	session  ScopeSource
	target   ScopeRevalidator
	interval time.Duration
	logger   *log.Logger
}

func NewRevalidator(session ScopeSource, target ScopeRevalidator, interval time.Duration, logger *log.Logger) *Revalidator {
	if logger == nil {
		logger = log.Discard()
	}
	return &Revalidator{
		session:  session,
		target:   target,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run ticks until ctx is done. A non-positive interval returns immediately.
func (r *Revalidator) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick revalidates once. Local mode is skipped since only this process
// writes the local store.
func (r *Revalidator) Tick(ctx context.Context) bool {
	scope := r.session.Current()
	if scope.Mode != core.ModeCloud {
		return false
	}
	r.target.Revalidate(ctx, scope)
	r.logger.DebugContext(ctx, "Revalidated cloud scope", log.FieldOwner, scope.OwnerID)
	return true
}
