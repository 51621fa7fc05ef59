// Package repository exposes the entity repositories. Reads go through the
// shared cache keyed by (collection, mode, owner); writes go to the adapter
// of the scope's mode and then invalidate the slots they affect.
package repository

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// AdapterResolver returns the adapter serving a mode.
type AdapterResolver interface {
	For(mode core.Mode) (storage.Adapter, error)
}

// Publisher announces writes to other processes.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

type base struct {
	adapters  AdapterResolver
	cache     *cache.Loader
	publisher Publisher
	origin    string
	logger    *log.Logger
}

type Option func(*base)

// WithPublisher publishes a change message after every cloud write.
func WithPublisher(p Publisher, origin string) Option {
	return func(b *base) {
		b.publisher = p
		b.origin = origin
	}
}

func WithLogger(l *log.Logger) Option {
	return func(b *base) { b.logger = l }
}

type Repositories struct {
	*base
	Settings   *SettingsRepository
	Views      *ViewRepository
	Categories *CategoryRepository
	Expenses   *ExpenseRepository
}

func New(adapters AdapterResolver, loader *cache.Loader, opts ...Option) *Repositories {
	b := &base{adapters: adapters, cache: loader, logger: log.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent(log.ComponentRepository)
	return &Repositories{
		base:       b,
		Settings:   &SettingsRepository{b},
		Views:      &ViewRepository{b},
		Categories: &CategoryRepository{b},
		Expenses:   &ExpenseRepository{b},
	}
}

// resolve returns the adapter and owner id for scope.
func (b *base) resolve(scope core.Scope) (storage.Adapter, string, error) {
	if scope.Mode == core.ModeCloud && scope.OwnerID == "" {
		return nil, "", core.ErrNoSession
	}
	a, err := b.adapters.For(scope.Mode)
	if err != nil {
		return nil, "", err
	}
	return a, scope.OwnerID, nil
}

// afterWrite invalidates the slots touched by op and, for cloud writes,
// tells other processes to do the same. Publishing is best effort.
func (b *base) afterWrite(ctx context.Context, scope core.Scope, op Op) {
	cols := Affected(op)
	keys := make([]cache.Key, len(cols))
	for i, c := range cols {
		keys[i] = cache.KeyFor(c, scope)
	}
	b.cache.Invalidate(ctx, keys...)

	if b.publisher == nil || scope.Mode != core.ModeCloud {
		return
	}
	msg := amqp.NewChangeMessage(string(op), scope, cols, b.origin)
	if err := b.publisher.PublishChange(ctx, msg); err != nil {
		b.logger.WarnContext(ctx, "Failed to publish change message",
			log.FieldOperation, string(op),
			log.FieldOwner, scope.Owner(),
			log.FieldError, err)
	}
}

func (b *base) logWriteError(ctx context.Context, scope core.Scope, op Op, err error) {
	b.logger.ErrorContext(ctx, "Write failed",
		log.FieldOperation, string(op),
		log.FieldMode, string(scope.Mode),
		log.FieldOwner, scope.Owner(),
		log.FieldError, err)
}

// Seed ensures the scope's store holds the starter data.
func (r *Repositories) Seed(ctx context.Context, scope core.Scope) (bool, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return false, err
	}
	seeded, err := a.EnsureSeed(ctx, owner)
	if err != nil {
		r.logWriteError(ctx, scope, OpSeed, err)
		return false, fmt.Errorf("seed %s: %w", scope, err)
	}
	if seeded {
		r.afterWrite(ctx, scope, OpSeed)
	}
	return seeded, nil
}

// Revalidate drops every cached slot of scope so the next reads refetch.
func (r *Repositories) Revalidate(ctx context.Context, scope core.Scope) {
	r.cache.InvalidateScope(ctx, scope)
}

// Snapshot is every collection of one scope.
type Snapshot struct {
	Settings   core.Settings   `json:"settings"`
	Views      []core.View     `json:"views"`
	Categories []core.Category `json:"categories"`
	Expenses   []core.Expense  `json:"expenses"`
}

// Snapshot reads all four collections concurrently.
func (r *Repositories) Snapshot(ctx context.Context, scope core.Scope) (Snapshot, error) {
	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Settings, err = r.Settings.Get(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		s.Views, err = r.Views.List(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		s.Categories, err = r.Categories.List(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		s.Expenses, err = r.Expenses.List(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
