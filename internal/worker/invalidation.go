package worker

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Invalidator drops cache slots.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...cache.Key)
}

// ChangeConsumer delivers change messages until ctx ends.
type ChangeConsumer interface {
	ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeMessage) error) error
}

// InvalidationWorker applies change messages published by other processes to
// the local cache.
type InvalidationWorker struct {
	consumer ChangeConsumer
	cache    Invalidator
	origin   string
	logger   *log.Logger
}

func NewInvalidationWorker(consumer ChangeConsumer, c Invalidator, origin string, logger *log.Logger) *InvalidationWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &InvalidationWorker{
		consumer: consumer,
		cache:    c,
		origin:   origin,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled.
func (w *InvalidationWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Invalidation worker started", log.FieldOrigin, w.origin)
	err := w.consumer.ConsumeChanges(ctx, w.HandleChange)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Invalidation worker stopped")
		return nil
	}
	return err
}

// HandleChange drops the slots a remote write made stale. Messages this
// process published itself are ignored; its own writes already invalidated.
func (w *InvalidationWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg == nil {
		return fmt.Errorf("nil change message")
	}
	if msg.Origin == w.origin {
		return nil
	}
	if !msg.Mode.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidMode, msg.Mode)
	}

	cols := msg.Collections
	if len(cols) == 0 {
		cols = core.AllCollections()
	}
	scope := msg.Scope()
	keys := make([]cache.Key, len(cols))
	for i, c := range cols {
		keys[i] = cache.KeyFor(c, scope)
	}
	w.cache.Invalidate(ctx, keys...)

	w.logger.DebugContext(ctx, "Applied remote change",
		log.FieldOperation, msg.Op,
		log.FieldOwner, msg.OwnerID,
		log.FieldOrigin, msg.Origin,
		log.FieldCount, len(keys))
	return nil
}
