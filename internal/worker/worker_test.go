package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
)

type recordingCache struct {
	mu   sync.Mutex
	keys []cache.Key
}

func (r *recordingCache) Invalidate(_ context.Context, keys ...cache.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
}

type stubConsumer struct {
	msgs []*amqp.ChangeMessage
	errs []error
}

func (s *stubConsumer) ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeMessage) error) error {
	for _, m := range s.msgs {
		s.errs = append(s.errs, handler(ctx, m))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleChangeInvalidatesNamedSlots(t *testing.T) {
	rc := &recordingCache{}
	w := NewInvalidationWorker(nil, rc, "proc-a", nil)

	msg := amqp.NewChangeMessage("delete_view", core.CloudScope("u1"),
		[]core.Collection{core.CollectionViews, core.CollectionExpenses}, "proc-b")
	require.NoError(t, w.HandleChange(context.Background(), msg))

	require.Equal(t, []cache.Key{
		cache.KeyFor(core.CollectionViews, core.CloudScope("u1")),
		cache.KeyFor(core.CollectionExpenses, core.CloudScope("u1")),
	}, rc.keys)
}

func TestHandleChangeSkipsOwnOrigin(t *testing.T) {
	rc := &recordingCache{}
	w := NewInvalidationWorker(nil, rc, "proc-a", nil)

	msg := amqp.NewChangeMessage("add_expense", core.CloudScope("u1"),
		[]core.Collection{core.CollectionExpenses}, "proc-a")
	require.NoError(t, w.HandleChange(context.Background(), msg))
	require.Empty(t, rc.keys)
}

func TestHandleChangeWithoutCollectionsDropsScope(t *testing.T) {
	rc := &recordingCache{}
	w := NewInvalidationWorker(nil, rc, "proc-a", nil)

	msg := amqp.NewChangeMessage("seed", core.CloudScope("u2"), nil, "proc-b")
	require.NoError(t, w.HandleChange(context.Background(), msg))
	require.Len(t, rc.keys, len(core.AllCollections()))
	for _, k := range rc.keys {
		require.Equal(t, "u2", k.Owner)
	}
}

func TestHandleChangeRejectsBadMessages(t *testing.T) {
	w := NewInvalidationWorker(nil, &recordingCache{}, "proc-a", nil)
	require.Error(t, w.HandleChange(context.Background(), nil))

	msg := &amqp.ChangeMessage{Op: "add_view", Mode: "remote", Origin: "proc-b"}
	require.ErrorIs(t, w.HandleChange(context.Background(), msg), core.ErrInvalidMode)
}

func TestRunStopsWithContext(t *testing.T) {
	rc := &recordingCache{}
	consumer := &stubConsumer{msgs: []*amqp.ChangeMessage{
		amqp.NewChangeMessage("add_view", core.CloudScope("u1"), []core.Collection{core.CollectionViews}, "proc-b"),
	}}
	w := NewInvalidationWorker(consumer, rc, "proc-a", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		return len(rc.keys) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

type fixedScope struct{ scope core.Scope }

func (f fixedScope) Current() core.Scope { return f.scope }

type countingRevalidator struct {
	mu     sync.Mutex
	scopes []core.Scope
}

func (c *countingRevalidator) Revalidate(_ context.Context, scope core.Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scopes = append(c.scopes, scope)
}

func (c *countingRevalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scopes)
}

func TestRevalidatorTick(t *testing.T) {
	target := &countingRevalidator{}

	local := NewRevalidator(fixedScope{core.LocalScope()}, target, time.Minute, nil)
	require.False(t, local.Tick(context.Background()))

	cloud := NewRevalidator(fixedScope{core.CloudScope("u1")}, target, time.Minute, nil)
	require.True(t, cloud.Tick(context.Background()))
	require.Equal(t, []core.Scope{core.CloudScope("u1")}, target.scopes)
}

func TestRevalidatorRun(t *testing.T) {
	target := &countingRevalidator{}
	r := NewRevalidator(fixedScope{core.CloudScope("u1")}, target, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return target.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRevalidatorDisabled(t *testing.T) {
	r := NewRevalidator(fixedScope{core.CloudScope("u1")}, &countingRevalidator{}, 0, nil)
	finished := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal(errors.New("disabled revalidator kept running"))
	}
}
