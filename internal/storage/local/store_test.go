package local

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	return NewStore(kv, WithIDGenerator(sequentialIDs())), kv
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	seeded, err := s.EnsureSeed(ctx, "")
	require.NoError(t, err)
	require.True(t, seeded)

	views, err := s.Views(ctx, "")
	require.NoError(t, err)
	cats, err := s.Categories(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Len(t, cats, 6)

	seeded, err = s.EnsureSeed(ctx, "")
	require.NoError(t, err)
	require.False(t, seeded)

	again, err := s.Views(ctx, "")
	require.NoError(t, err)
	require.Equal(t, views, again)

	set, err := s.Settings(ctx, "")
	require.NoError(t, err)
	require.Equal(t, core.INR, set.Currency)

	expenses, err := s.Expenses(ctx, "")
	require.NoError(t, err)
	require.Empty(t, expenses)
}

func TestSeedRewritesTaxonomyWhenOneKeyMissing(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	require.NoError(t, kv.Put(ctx, map[string][]byte{KeyViews: []byte(`[{"id":"v","name":"Only"}]`)}))

	seeded, err := s.EnsureSeed(ctx, "")
	require.NoError(t, err)
	require.True(t, seeded)

	views, err := s.Views(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "Home", views[0].Name)
}

func TestMalformedDocumentsReadAsDefaults(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	require.NoError(t, kv.Put(ctx, map[string][]byte{
		KeyExpenses: []byte(`{not json`),
		KeySettings: []byte(`{"currency":"EUR"}`),
		KeyViews:    []byte(`null`),
	}))

	expenses, err := s.Expenses(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, expenses)
	require.Empty(t, expenses)

	views, err := s.Views(ctx, "")
	require.NoError(t, err)
	require.Empty(t, views)

	set, err := s.Settings(ctx, "")
	require.NoError(t, err)
	require.Equal(t, core.DefaultSettings(), set)
}

func TestPartiallyDecodableListsReadAsEmpty(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	require.NoError(t, kv.Put(ctx, map[string][]byte{
		KeyViews: []byte(`[{"id":"v1","name":"Home"},42]`),
		KeyExpenses: []byte(`[{"id":"e1","viewId":"v1","categoryId":"c1","amount":10,"date":"2024-03-05"},` +
			`{"id":"e2","date":"garbage"}]`),
	}))

	views, err := s.Views(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, views)
	require.Empty(t, views)

	expenses, err := s.Expenses(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, expenses)
	require.Empty(t, expenses)

	_, err = s.InsertViews(ctx, "", []core.View{{Name: "Trips"}})
	require.NoError(t, err)
	views, err = s.Views(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Trips", views[0].Name)
}

func TestSavedScope(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	_, ok, err := s.LastScope(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SaveScope(ctx, core.CloudScope("u1")))
	last, ok, err := s.LastScope(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, core.CloudScope("u1"), last)

	for _, raw := range []string{`{"mode":"cloud"}`, `{"mode":"remote","ownerId":"u1"}`, `[1,2]`} {
		require.NoError(t, kv.Put(ctx, map[string][]byte{KeySession: []byte(raw)}))
		_, ok, err := s.LastScope(ctx)
		require.NoError(t, err, raw)
		require.False(t, ok, raw)
	}
}

func TestInsertExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first, err := s.InsertExpense(ctx, "", core.Expense{
		ViewID: "v1", CategoryID: "c1", Amount: decimal.RequireFromString("250.00"), Date: core.NewDate(2024, 3, 5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.InsertExpense(ctx, "", core.Expense{
		ViewID: "v1", CategoryID: "c1", Amount: decimal.RequireFromString("12.34"), Date: core.NewDate(2024, 3, 6), Note: "milk, bread",
	})
	require.NoError(t, err)

	got, err := s.Expenses(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, second.ID, got[0].ID)
	require.Equal(t, first.ID, got[1].ID)
	require.True(t, got[1].Amount.Equal(decimal.RequireFromString("250")))
	require.Equal(t, core.NewDate(2024, 3, 5), got[1].Date)
	require.Equal(t, "milk, bread", got[0].Note)
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e, err := s.InsertExpense(ctx, "", core.Expense{ViewID: "v", CategoryID: "c", Amount: decimal.NewFromInt(5), Date: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)

	note := "edited"
	updated, err := s.UpdateExpense(ctx, "", e.ID, core.ExpensePatch{Note: &note})
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Note)
	require.True(t, updated.Amount.Equal(decimal.NewFromInt(5)))

	_, err = s.UpdateExpense(ctx, "", "missing", core.ExpensePatch{Note: &note})
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.DeleteExpense(ctx, "", e.ID))
	require.NoError(t, s.DeleteExpense(ctx, "", e.ID))

	got, err := s.Expenses(ctx, "")
	require.NoError(t, err)
	require.Empty(t, got)
}

func seedCascadeFixture(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.InsertViews(ctx, "", []core.View{{ID: "home", Name: "Home"}, {ID: "personal", Name: "Personal"}})
	require.NoError(t, err)
	_, err = s.InsertCategories(ctx, "", []core.Category{
		{ID: "grocery", ViewID: "home", Name: "Grocery"},
		{ID: "milk", ViewID: "home", Name: "Milk"},
		{ID: "petrol", ViewID: "personal", Name: "Petrol"},
	})
	require.NoError(t, err)
	for i, pair := range [][2]string{{"home", "grocery"}, {"home", "milk"}, {"personal", "petrol"}, {"home", "grocery"}} {
		_, err := s.InsertExpense(ctx, "", core.Expense{
			ID: fmt.Sprintf("e%d", i), ViewID: pair[0], CategoryID: pair[1],
			Amount: decimal.NewFromInt(int64(10 * (i + 1))), Date: core.NewDate(2024, 3, i+1),
		})
		require.NoError(t, err)
	}
}

func TestDeleteViewCascades(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedCascadeFixture(t, s)

	require.NoError(t, s.DeleteView(ctx, "", "home"))

	views, _ := s.Views(ctx, "")
	cats, _ := s.Categories(ctx, "")
	expenses, _ := s.Expenses(ctx, "")

	require.Equal(t, []core.View{{ID: "personal", Name: "Personal"}}, views)
	require.Len(t, cats, 1)
	require.Equal(t, "petrol", cats[0].ID)
	require.Len(t, expenses, 1)
	require.Equal(t, "petrol", expenses[0].CategoryID)
}

func TestDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedCascadeFixture(t, s)

	require.NoError(t, s.DeleteCategory(ctx, "", "grocery"))

	cats, _ := s.Categories(ctx, "")
	expenses, _ := s.Expenses(ctx, "")
	require.Len(t, cats, 2)
	for _, e := range expenses {
		require.NotEqual(t, "grocery", e.CategoryID)
	}
	require.Len(t, expenses, 2)
}

type failingKV struct {
	*MemoryKV
}

func (f failingKV) Put(context.Context, map[string][]byte) error {
	return errors.New("quota exceeded")
}

func TestWriteFailureIsReported(t *testing.T) {
	s := NewStore(failingKV{NewMemoryKV()})
	_, err := s.InsertExpense(context.Background(), "", core.Expense{ViewID: "v", CategoryID: "c"})
	require.ErrorIs(t, err, core.ErrStorageWrite)

	usd := core.USD
	_, err = s.PutSettings(context.Background(), "", core.SettingsPatch{Currency: &usd})
	require.ErrorIs(t, err, core.ErrStorageWrite)
}

func TestPutSettingsMergesPatch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	usd := core.USD
	got, err := s.PutSettings(ctx, "", core.SettingsPatch{Currency: &usd})
	require.NoError(t, err)
	require.Equal(t, core.USD, got.Currency)

	got, err = s.PutSettings(ctx, "", core.SettingsPatch{})
	require.NoError(t, err)
	require.Equal(t, core.USD, got.Currency)
}

func TestSQLiteKVBackedStore(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	s := NewStore(kv, WithIDGenerator(sequentialIDs()))
	seeded, err := s.EnsureSeed(ctx, "")
	require.NoError(t, err)
	require.True(t, seeded)
	seedCascadeFixture(t, s)

	require.NoError(t, s.DeleteView(ctx, "", "personal"))
	expenses, err := s.Expenses(ctx, "")
	require.NoError(t, err)
	require.Len(t, expenses, 3)

	raw, ok, err := kv.Get(ctx, KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"currency":"INR"}`, string(raw))

	_, ok, err = kv.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLiteMigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
