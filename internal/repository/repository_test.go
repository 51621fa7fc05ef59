package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/local"
)

// ownerStores stands in for the cloud adapter: one isolated local store per
// owner, with read counters.
type ownerStores struct {
	mu     sync.Mutex
	stores map[string]*local.Store
	reads  map[string]int
}

func newOwnerStores() *ownerStores {
	return &ownerStores{stores: map[string]*local.Store{}, reads: map[string]int{}}
}

func (o *ownerStores) store(owner string) *local.Store {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.stores[owner]
	if !ok {
		s = local.NewStore(local.NewMemoryKV())
		o.stores[owner] = s
	}
	return s
}

func (o *ownerStores) count(what string) {
	o.mu.Lock()
	o.reads[what]++
	o.mu.Unlock()
}

func (o *ownerStores) readCount(what string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reads[what]
}

func (o *ownerStores) Settings(ctx context.Context, owner string) (core.Settings, error) {
	o.count("settings")
	return o.store(owner).Settings(ctx, owner)
}
func (o *ownerStores) PutSettings(ctx context.Context, owner string, p core.SettingsPatch) (core.Settings, error) {
	return o.store(owner).PutSettings(ctx, owner, p)
}
func (o *ownerStores) Views(ctx context.Context, owner string) ([]core.View, error) {
	o.count("views")
	return o.store(owner).Views(ctx, owner)
}
func (o *ownerStores) InsertViews(ctx context.Context, owner string, v []core.View) ([]core.View, error) {
	return o.store(owner).InsertViews(ctx, owner, v)
}
func (o *ownerStores) DeleteView(ctx context.Context, owner, id string) error {
	return o.store(owner).DeleteView(ctx, owner, id)
}
func (o *ownerStores) Categories(ctx context.Context, owner string) ([]core.Category, error) {
	o.count("categories")
	return o.store(owner).Categories(ctx, owner)
}
func (o *ownerStores) InsertCategories(ctx context.Context, owner string, c []core.Category) ([]core.Category, error) {
	return o.store(owner).InsertCategories(ctx, owner, c)
}
func (o *ownerStores) DeleteCategory(ctx context.Context, owner, id string) error {
	return o.store(owner).DeleteCategory(ctx, owner, id)
}
func (o *ownerStores) Expenses(ctx context.Context, owner string) ([]core.Expense, error) {
	o.count("expenses")
	return o.store(owner).Expenses(ctx, owner)
}
func (o *ownerStores) InsertExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error) {
	return o.store(owner).InsertExpense(ctx, owner, e)
}
func (o *ownerStores) UpdateExpense(ctx context.Context, owner, id string, p core.ExpensePatch) (core.Expense, error) {
	return o.store(owner).UpdateExpense(ctx, owner, id, p)
}
func (o *ownerStores) DeleteExpense(ctx context.Context, owner, id string) error {
	return o.store(owner).DeleteExpense(ctx, owner, id)
}
func (o *ownerStores) EnsureSeed(ctx context.Context, owner string) (bool, error) {
	return o.store(owner).EnsureSeed(ctx, owner)
}
func (o *ownerStores) Close() error { return nil }

var _ storage.Adapter = (*ownerStores)(nil)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ChangeMessage
	err  error
}

func (p *recordingPublisher) PublishChange(_ context.Context, msg *amqp.ChangeMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fixture struct {
	repos  *Repositories
	loader *cache.Loader
	cloud  *ownerStores
	pub    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cloud := newOwnerStores()
	loader := cache.NewLoader(64, time.Minute, nil)
	pub := &recordingPublisher{}
	d := backend.NewDispatcher(local.NewStore(local.NewMemoryKV()), cloud)
	return &fixture{
		repos:  New(d, loader, WithPublisher(pub, "test-proc")),
		loader: loader,
		cloud:  cloud,
		pub:    pub,
	}
}

func TestAffected(t *testing.T) {
	require.ElementsMatch(t,
		[]core.Collection{core.CollectionViews, core.CollectionCategories, core.CollectionExpenses},
		Affected(OpDeleteView))
	require.ElementsMatch(t,
		[]core.Collection{core.CollectionCategories, core.CollectionExpenses},
		Affected(OpDeleteCategory))
	require.Equal(t, []core.Collection{core.CollectionExpenses}, Affected(OpAddExpense))
	require.Equal(t, core.AllCollections(), Affected(Op("unknown")))
}

func TestReadsAreCachedPerScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := core.CloudScope("alice")

	_, err := f.repos.Seed(ctx, alice)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		views, err := f.repos.Views.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, views, 2)
	}
	require.Equal(t, 1, f.cloud.readCount("views"))

	bob, err := f.repos.Views.List(ctx, core.CloudScope("bob"))
	require.NoError(t, err)
	require.Empty(t, bob)
	require.Equal(t, 2, f.cloud.readCount("views"))

	localViews, err := f.repos.Views.List(ctx, core.LocalScope())
	require.NoError(t, err)
	require.Empty(t, localViews)
	require.Equal(t, 2, f.cloud.readCount("views"))
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, scope := range []core.Scope{core.LocalScope(), core.CloudScope("alice")} {
		_, err := f.repos.Seed(ctx, scope)
		require.NoError(t, err)

		before, err := f.repos.Expenses.List(ctx, scope)
		require.NoError(t, err)
		require.Empty(t, before)

		views, _ := f.repos.Views.List(ctx, scope)
		cats, _ := f.repos.Categories.ListByView(ctx, scope, views[0].ID)
		require.Len(t, cats, 3)

		e, err := f.repos.Expenses.Add(ctx, scope, core.Expense{
			ID:         "caller-id-ignored",
			ViewID:     views[0].ID,
			CategoryID: cats[1].ID,
			Amount:     decimal.RequireFromString("250.00"),
			Date:       core.NewDate(2024, 3, 5),
		})
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
		require.NotEqual(t, "caller-id-ignored", e.ID)

		after, err := f.repos.Expenses.List(ctx, scope)
		require.NoError(t, err)
		require.Len(t, after, 1)
		require.Equal(t, e.ID, after[0].ID)
		require.True(t, after[0].Amount.Equal(decimal.RequireFromString("250")))
	}
}

func TestDeleteViewInvalidatesDependentSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scope := core.CloudScope("alice")
	_, err := f.repos.Seed(ctx, scope)
	require.NoError(t, err)

	views, _ := f.repos.Views.List(ctx, scope)
	home := views[0]
	cats, _ := f.repos.Categories.ListByView(ctx, scope, home.ID)
	_, err = f.repos.Expenses.Add(ctx, scope, core.Expense{ViewID: home.ID, CategoryID: cats[0].ID, Amount: decimal.NewFromInt(1), Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)

	_, _ = f.repos.Expenses.List(ctx, scope)
	_, _ = f.repos.Categories.List(ctx, scope)
	_, _ = f.repos.Settings.Get(ctx, scope)

	require.NoError(t, f.repos.Views.Delete(ctx, scope, home.ID))

	require.False(t, f.loader.Cached(cache.KeyFor(core.CollectionViews, scope)))
	require.False(t, f.loader.Cached(cache.KeyFor(core.CollectionCategories, scope)))
	require.False(t, f.loader.Cached(cache.KeyFor(core.CollectionExpenses, scope)))
	require.True(t, f.loader.Cached(cache.KeyFor(core.CollectionSettings, scope)))

	views, _ = f.repos.Views.List(ctx, scope)
	require.Len(t, views, 1)
	remaining, _ := f.repos.Categories.List(ctx, scope)
	for _, c := range remaining {
		require.NotEqual(t, home.ID, c.ViewID)
	}
	expenses, _ := f.repos.Expenses.List(ctx, scope)
	require.Empty(t, expenses)
}

func TestDeleteCategoryRemovesExpenses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scope := core.LocalScope()
	_, err := f.repos.Seed(ctx, scope)
	require.NoError(t, err)

	views, _ := f.repos.Views.List(ctx, scope)
	cats, _ := f.repos.Categories.ListByView(ctx, scope, views[0].ID)
	for _, c := range cats[:2] {
		_, err := f.repos.Expenses.Add(ctx, scope, core.Expense{ViewID: views[0].ID, CategoryID: c.ID, Amount: decimal.NewFromInt(3), Date: core.NewDate(2024, 1, 1)})
		require.NoError(t, err)
	}
	_, _ = f.repos.Expenses.List(ctx, scope)

	require.NoError(t, f.repos.Categories.Delete(ctx, scope, cats[0].ID))

	expenses, err := f.repos.Expenses.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Equal(t, cats[1].ID, expenses[0].CategoryID)
}

func TestPublishesOnlyCloudWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.repos.Views.Add(ctx, core.LocalScope(), "Trips")
	require.NoError(t, err)
	require.Empty(t, f.pub.msgs)

	_, err = f.repos.Views.Add(ctx, core.CloudScope("alice"), "Trips")
	require.NoError(t, err)
	require.Len(t, f.pub.msgs, 1)
	msg := f.pub.msgs[0]
	require.Equal(t, string(OpAddView), msg.Op)
	require.Equal(t, "alice", msg.OwnerID)
	require.Equal(t, "test-proc", msg.Origin)
	require.Equal(t, []core.Collection{core.CollectionViews}, msg.Collections)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	usd := core.USD
	s, err := f.repos.Settings.Update(ctx, core.CloudScope("alice"), core.SettingsPatch{Currency: &usd})
	require.NoError(t, err)
	require.Equal(t, core.USD, s.Currency)

	got, err := f.repos.Settings.Get(ctx, core.CloudScope("alice"))
	require.NoError(t, err)
	require.Equal(t, core.USD, got.Currency)
}

func TestCloudScopeWithoutOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.repos.Views.List(context.Background(), core.Scope{Mode: core.ModeCloud})
	require.ErrorIs(t, err, core.ErrNoSession)
}

func TestCloudUnavailable(t *testing.T) {
	repos := New(backend.NewDispatcher(local.NewStore(local.NewMemoryKV()), nil), cache.NewLoader(8, time.Minute, nil))
	_, err := repos.Expenses.List(context.Background(), core.CloudScope("alice"))
	require.ErrorIs(t, err, core.ErrCloudUnavailable)
}

func TestSnapshotAndSeedIdempotence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scope := core.CloudScope("carol")

	seeded, err := f.repos.Seed(ctx, scope)
	require.NoError(t, err)
	require.True(t, seeded)
	seeded, err = f.repos.Seed(ctx, scope)
	require.NoError(t, err)
	require.False(t, seeded)

	snap, err := f.repos.Snapshot(ctx, scope)
	require.NoError(t, err)
	require.Equal(t, core.INR, snap.Settings.Currency)
	require.Len(t, snap.Views, 2)
	require.Len(t, snap.Categories, 6)
	require.Empty(t, snap.Expenses)
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scope := core.LocalScope()
	_, err := f.repos.Seed(ctx, scope)
	require.NoError(t, err)

	views, _ := f.repos.Views.List(ctx, scope)
	views[0].Name = "mutated"

	again, _ := f.repos.Views.List(ctx, scope)
	require.Equal(t, "Home", again[0].Name)
}

func TestUpdateMissingExpense(t *testing.T) {
	f := newFixture(t)
	note := "x"
	_, err := f.repos.Expenses.Update(context.Background(), core.LocalScope(), "nope", core.ExpensePatch{Note: &note})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRevalidateDropsScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scope := core.CloudScope("alice")
	_, _ = f.repos.Views.List(ctx, scope)
	require.Equal(t, 1, f.cloud.readCount("views"))

	f.repos.Revalidate(ctx, scope)
	_, _ = f.repos.Views.List(ctx, scope)
	require.Equal(t, 2, f.cloud.readCount("views"))
}
