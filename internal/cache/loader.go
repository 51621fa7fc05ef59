package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const fetchTimeout = 30 * time.Second

// Loader is a read-through cache over collection reads. Concurrent loads of
// one key share a single fetch. Each key carries a generation that
// Invalidate bumps; a fetch that started under an older generation returns
// its result to its callers but never stores it.
type Loader struct {
	entries *LRUCache[any]
	group   singleflight.Group
	logger  *log.Logger

	mu   sync.Mutex
	gens map[Key]uint64
}

func NewLoader(size int, ttl time.Duration, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{
		entries: NewLRUCache[any](size, ttl),
		logger:  logger.WithComponent(log.ComponentCache),
		gens:    make(map[Key]uint64),
	}
}

// Load returns the cached value for key or fetches and stores it.
func Load[T any](ctx context.Context, l *Loader, key Key, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := l.entries.Get(key.String()); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	l.mu.Lock()
	gen := l.gens[key]
	l.mu.Unlock()

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	flight := key.String() + "#" + strconv.FormatUint(gen, 10)
	ch := l.group.DoChan(flight, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		if l.gens[key] == gen {
			l.entries.Set(key.String(), value)
		}
		l.mu.Unlock()
		return value, nil
	})

	var zero T
	var v any
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v = res.Val
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected %T for %s", v, key)
	}
	return typed, nil
}

// Invalidate drops the keys and bumps their generations.
func (l *Loader) Invalidate(ctx context.Context, keys ...Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.gens[k]++
		l.entries.Delete(k.String())
		l.logger.DebugContext(ctx, "Invalidated cache slot",
			log.FieldCollection, string(k.Collection),
			log.FieldMode, string(k.Mode),
			log.FieldOwner, k.Owner)
	}
}

// InvalidateScope drops every collection of one scope.
func (l *Loader) InvalidateScope(ctx context.Context, scope core.Scope) {
	keys := make([]Key, 0, 4)
	for _, c := range core.AllCollections() {
		keys = append(keys, KeyFor(c, scope))
	}
	l.Invalidate(ctx, keys...)
}

// Cached reports whether key currently holds a value.
func (l *Loader) Cached(key Key) bool {
	_, ok := l.entries.Get(key.String())
	return ok
}

func (l *Loader) CleanExpired() int {
	return l.entries.CleanExpired()
}

func (l *Loader) Size() int {
	return l.entries.Size()
}
