package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	require.False(t, ok)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	require.Equal(t, 2, c.CleanExpired())
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestLRUZeroTTLNeverExpires(t *testing.T) {
	c := NewLRUCache[int](1, 0)
	c.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	c.Set("k", 1)
	_, ok := c.Get("k")
	require.True(t, ok)
	require.Zero(t, c.CleanExpired())
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](10, time.Nanosecond)
	c.Set("k", 1)
	time.Sleep(time.Millisecond)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
	m.Stop()
}

func TestKeyFor(t *testing.T) {
	require.Equal(t, "views|local|anon", KeyFor(core.CollectionViews, core.LocalScope()).String())
	require.Equal(t, "expenses|cloud|u1", KeyFor(core.CollectionExpenses, core.CloudScope("u1")).String())
}
