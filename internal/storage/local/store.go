package local

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// Fixed document keys.
const (
	KeyExpenses   = "et_expenses"
	KeyViews      = "et_views"
	KeyCategories = "et_categories"
	KeySettings   = "et_settings"
	KeySession    = "et_session"
)

var _ storage.Adapter = (*Store)(nil)

// Store is the local adapter. Each collection is one JSON document; writes
// read the whole document, change it and write it back.
type Store struct {
	kv     KV
	logger *log.Logger
	newID  func() string

	// serializes read-modify-write cycles
	mu sync.Mutex
}

type Option func(*Store)

// WithIDGenerator replaces uuid.NewString for new records.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: log.Discard(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentStorage)
	return s
}

// KeyFor maps a collection to its document key.
func KeyFor(c core.Collection) string {
	switch c {
	case core.CollectionExpenses:
		return KeyExpenses
	case core.CollectionViews:
		return KeyViews
	case core.CollectionCategories:
		return KeyCategories
	default:
		return KeySettings
	}
}

func (s *Store) Close() error { return s.kv.Close() }

// readDoc decodes key into dst. Missing or malformed documents leave dst
// untouched; only a failing store returns an error.
func readDoc[T any](ctx context.Context, s *Store, key string, dst *T) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	// json.Unmarshal keeps whatever it decoded before failing.
	tmp := *dst
	if err := json.Unmarshal(raw, &tmp); err != nil {
		s.logger.WarnContext(ctx, "Ignoring malformed local document",
			log.FieldKey, key,
			log.FieldError, err)
		return false, nil
	}
	*dst = tmp
	return true, nil
}

func readList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	var out []T
	if _, err := readDoc(ctx, s, key, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (s *Store) write(ctx context.Context, docs map[string]any) error {
	entries := make(map[string][]byte, len(docs))
	for key, doc := range docs {
		b, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", core.ErrStorageWrite, key, err)
		}
		entries[key] = b
	}
	if err := s.kv.Put(ctx, entries); err != nil {
		s.logger.ErrorContext(ctx, "Local write failed", log.FieldError, err)
		return fmt.Errorf("%w: %w", core.ErrStorageWrite, err)
	}
	return nil
}

func (s *Store) Settings(ctx context.Context, _ string) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings(ctx)
}

func (s *Store) settings(ctx context.Context) (core.Settings, error) {
	set := core.DefaultSettings()
	if _, err := readDoc(ctx, s, KeySettings, &set); err != nil {
		return core.Settings{}, err
	}
	if err := set.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Ignoring invalid local settings", log.FieldError, err)
		return core.DefaultSettings(), nil
	}
	return set, nil
}

func (s *Store) PutSettings(ctx context.Context, _ string, patch core.SettingsPatch) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.settings(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	next := current.Apply(patch)
	if err := s.write(ctx, map[string]any{KeySettings: next}); err != nil {
		return core.Settings{}, err
	}
	return next, nil
}

func (s *Store) Views(ctx context.Context, _ string) ([]core.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[core.View](ctx, s, KeyViews)
}

func (s *Store) InsertViews(ctx context.Context, _ string, views []core.View) ([]core.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := readList[core.View](ctx, s, KeyViews)
	if err != nil {
		return nil, err
	}
	added := make([]core.View, len(views))
	for i, v := range views {
		if v.ID == "" {
			v.ID = s.newID()
		}
		added[i] = v
	}
	if err := s.write(ctx, map[string]any{KeyViews: append(current, added...)}); err != nil {
		return nil, err
	}
	return added, nil
}

// DeleteView removes the view, its categories and every expense that points
// at either of them, in one write.
func (s *Store) DeleteView(ctx context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	views, err := readList[core.View](ctx, s, KeyViews)
	if err != nil {
		return err
	}
	cats, err := readList[core.Category](ctx, s, KeyCategories)
	if err != nil {
		return err
	}
	expenses, err := readList[core.Expense](ctx, s, KeyExpenses)
	if err != nil {
		return err
	}

	var removedCats []string
	for _, c := range cats {
		if c.ViewID == id {
			removedCats = append(removedCats, c.ID)
		}
	}
	views = slices.DeleteFunc(views, func(v core.View) bool { return v.ID == id })
	cats = slices.DeleteFunc(cats, func(c core.Category) bool { return c.ViewID == id })
	expenses = slices.DeleteFunc(expenses, func(e core.Expense) bool {
		return e.ViewID == id || slices.Contains(removedCats, e.CategoryID)
	})

	return s.write(ctx, map[string]any{
		KeyViews:      views,
		KeyCategories: cats,
		KeyExpenses:   expenses,
	})
}

func (s *Store) Categories(ctx context.Context, _ string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[core.Category](ctx, s, KeyCategories)
}

func (s *Store) InsertCategories(ctx context.Context, _ string, cats []core.Category) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := readList[core.Category](ctx, s, KeyCategories)
	if err != nil {
		return nil, err
	}
	added := make([]core.Category, len(cats))
	for i, c := range cats {
		if c.ID == "" {
			c.ID = s.newID()
		}
		added[i] = c
	}
	if err := s.write(ctx, map[string]any{KeyCategories: append(current, added...)}); err != nil {
		return nil, err
	}
	return added, nil
}

func (s *Store) DeleteCategory(ctx context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := readList[core.Category](ctx, s, KeyCategories)
	if err != nil {
		return err
	}
	expenses, err := readList[core.Expense](ctx, s, KeyExpenses)
	if err != nil {
		return err
	}
	cats = slices.DeleteFunc(cats, func(c core.Category) bool { return c.ID == id })
	expenses = slices.DeleteFunc(expenses, func(e core.Expense) bool { return e.CategoryID == id })

	return s.write(ctx, map[string]any{
		KeyCategories: cats,
		KeyExpenses:   expenses,
	})
}

func (s *Store) Expenses(ctx context.Context, _ string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[core.Expense](ctx, s, KeyExpenses)
}

// InsertExpense prepends the expense so the newest entry comes first.
func (s *Store) InsertExpense(ctx context.Context, _ string, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := readList[core.Expense](ctx, s, KeyExpenses)
	if err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	next := append([]core.Expense{e}, current...)
	if err := s.write(ctx, map[string]any{KeyExpenses: next}); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, _ string, id string, patch core.ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := readList[core.Expense](ctx, s, KeyExpenses)
	if err != nil {
		return core.Expense{}, err
	}
	i := slices.IndexFunc(expenses, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	expenses[i] = expenses[i].Apply(patch)
	if err := s.write(ctx, map[string]any{KeyExpenses: expenses}); err != nil {
		return core.Expense{}, err
	}
	return expenses[i], nil
}

func (s *Store) DeleteExpense(ctx context.Context, _ string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := readList[core.Expense](ctx, s, KeyExpenses)
	if err != nil {
		return err
	}
	next := slices.DeleteFunc(expenses, func(e core.Expense) bool { return e.ID == id })
	return s.write(ctx, map[string]any{KeyExpenses: next})
}

// EnsureSeed writes the starter data for every absent document. Views and
// categories are written together when either is missing.
func (s *Store) EnsureSeed(ctx context.Context, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := make(map[string]bool, 4)
	for _, key := range []string{KeyViews, KeyCategories, KeySettings, KeyExpenses} {
		_, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return false, fmt.Errorf("read %s: %w", key, err)
		}
		present[key] = ok
	}

	docs := map[string]any{}
	if !present[KeyViews] || !present[KeyCategories] {
		views, cats := storage.BuildSeed(s.newID)
		docs[KeyViews] = views
		docs[KeyCategories] = cats
	}
	if !present[KeySettings] {
		docs[KeySettings] = core.DefaultSettings()
	}
	if !present[KeyExpenses] {
		docs[KeyExpenses] = []core.Expense{}
	}
	if len(docs) == 0 {
		return false, nil
	}
	if err := s.write(ctx, docs); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Seeded local store", log.FieldCount, len(docs))
	return true, nil
}

type savedScope struct {
	Mode    core.Mode `json:"mode"`
	OwnerID string    `json:"ownerId,omitempty"`
}

// LastScope returns the scope saved by SaveScope. A missing or unusable
// record reports false.
func (s *Store) LastScope(ctx context.Context) (core.Scope, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var saved savedScope
	ok, err := readDoc(ctx, s, KeySession, &saved)
	if err != nil || !ok {
		return core.Scope{}, false, err
	}
	switch {
	case saved.Mode == core.ModeLocal:
		return core.LocalScope(), true, nil
	case saved.Mode == core.ModeCloud && saved.OwnerID != "":
		return core.CloudScope(saved.OwnerID), true, nil
	default:
		s.logger.WarnContext(ctx, "Ignoring invalid saved session", log.FieldMode, string(saved.Mode))
		return core.Scope{}, false, nil
	}
}

// SaveScope records the active scope so the next process start can restore it.
func (s *Store) SaveScope(ctx context.Context, scope core.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, map[string]any{KeySession: savedScope{Mode: scope.Mode, OwnerID: scope.OwnerID}})
}
