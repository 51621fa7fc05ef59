// Package cloud implements the remote adapter on Postgres. Every statement is
// filtered by owner_id; deletes of views and categories cascade through
// foreign keys.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

var _ storage.Adapter = (*Store)(nil)

const expenseColumns = `id::text, owner_id, view_id::text, category_id::text, amount::text, date, note`

type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, logger *log.Logger) (*Store, error) {
	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", core.ErrCloudUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", core.ErrCloudUnavailable, err)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{pool: pool, logger: logger.WithComponent(log.ComponentCloud)}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// validID filters out ids that cannot match a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) Settings(ctx context.Context, owner string) (core.Settings, error) {
	var row settingsRow
	err := s.pool.QueryRow(ctx,
		`SELECT owner_id, currency FROM settings WHERE owner_id = $1`, owner,
	).Scan(&row.OwnerID, &row.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("select settings: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) PutSettings(ctx context.Context, owner string, patch core.SettingsPatch) (core.Settings, error) {
	current, err := s.Settings(ctx, owner)
	if err != nil {
		return core.Settings{}, err
	}
	next := current.Apply(patch)
	row := settingsToStorage(owner, next)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO settings (owner_id, currency) VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET currency = EXCLUDED.currency, updated_at = now()`,
		row.OwnerID, row.Currency)
	if err != nil {
		return core.Settings{}, fmt.Errorf("upsert settings: %w", err)
	}
	return next, nil
}

func (s *Store) Views(ctx context.Context, owner string) ([]core.View, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, owner_id, name FROM views WHERE owner_id = $1 ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("select views: %w", err)
	}
	defer rows.Close()

	out := []core.View{}
	for rows.Next() {
		var r viewRow
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, rows.Err()
}

func insertViews(ctx context.Context, tx pgx.Tx, owner string, views []core.View) ([]core.View, error) {
	out := make([]core.View, 0, len(views))
	for _, v := range views {
		r := viewToStorage(owner, v)
		if err := tx.QueryRow(ctx,
			`INSERT INTO views (owner_id, name) VALUES ($1, $2) RETURNING id::text`,
			r.OwnerID, r.Name,
		).Scan(&r.ID); err != nil {
			return nil, fmt.Errorf("insert view: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

// InsertViews ignores caller ids; the database assigns them.
func (s *Store) InsertViews(ctx context.Context, owner string, views []core.View) ([]core.View, error) {
	var out []core.View
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var err error
		out, err = insertViews(ctx, tx, owner, views)
		return err
	})
	return out, err
}

func (s *Store) DeleteView(ctx context.Context, owner, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM views WHERE id = $1 AND owner_id = $2`, id, owner); err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	return nil
}

func (s *Store) Categories(ctx context.Context, owner string) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, owner_id, view_id::text, name FROM categories WHERE owner_id = $1 ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var r categoryRow
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ViewID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, rows.Err()
}

func insertCategories(ctx context.Context, tx pgx.Tx, owner string, cats []core.Category) ([]core.Category, error) {
	out := make([]core.Category, 0, len(cats))
	for _, c := range cats {
		r := categoryToStorage(owner, c)
		if err := tx.QueryRow(ctx,
			`INSERT INTO categories (owner_id, view_id, name) VALUES ($1, $2::uuid, $3) RETURNING id::text`,
			r.OwnerID, r.ViewID, r.Name,
		).Scan(&r.ID); err != nil {
			return nil, fmt.Errorf("insert category: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) InsertCategories(ctx context.Context, owner string, cats []core.Category) ([]core.Category, error) {
	var out []core.Category
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var err error
		out, err = insertCategories(ctx, tx, owner, cats)
		return err
	})
	return out, err
}

func (s *Store) DeleteCategory(ctx context.Context, owner, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND owner_id = $2`, id, owner); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func scanExpense(row pgx.Row) (core.Expense, error) {
	var r expenseRow
	if err := row.Scan(&r.ID, &r.OwnerID, &r.ViewID, &r.CategoryID, &r.Amount, &r.Date, &r.Note); err != nil {
		return core.Expense{}, err
	}
	return r.toDomain()
}

// Expenses are returned newest date first.
func (s *Store) Expenses(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE owner_id = $1 ORDER BY date DESC, created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) InsertExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error) {
	r := expenseToStorage(owner, e)
	out, err := scanExpense(s.pool.QueryRow(ctx, `
		INSERT INTO expenses (owner_id, view_id, category_id, amount, date, note)
		VALUES ($1, $2::uuid, $3::uuid, $4::numeric, $5::date, $6)
		RETURNING `+expenseColumns,
		r.OwnerID, r.ViewID, r.CategoryID, r.Amount, r.Date, r.Note))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateExpense(ctx context.Context, owner, id string, patch core.ExpensePatch) (core.Expense, error) {
	if !validID(id) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}

	var query string
	var args []any
	if patch.IsEmpty() {
		query = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND owner_id = $2`
		args = []any{id, owner}
	} else {
		sets, setArgs := expenseUpdate(patch)
		args = append(setArgs, id, owner)
		query = fmt.Sprintf(`UPDATE expenses SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args)-1, len(args), expenseColumns)
	}

	out, err := scanExpense(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND owner_id = $2`, id, owner); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// EnsureSeed gives an owner without views the starter views, categories and
// default settings, all in one transaction.
func (s *Store) EnsureSeed(ctx context.Context, owner string) (bool, error) {
	var probe string
	err := s.pool.QueryRow(ctx, `SELECT id::text FROM views WHERE owner_id = $1 LIMIT 1`, owner).Scan(&probe)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("probe views: %w", err)
	}

	err = s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		for _, sv := range storage.StarterViews() {
			views, err := insertViews(ctx, tx, owner, []core.View{{Name: sv.Name}})
			if err != nil {
				return err
			}
			cats := make([]core.Category, len(sv.Categories))
			for i, name := range sv.Categories {
				cats[i] = core.Category{ViewID: views[0].ID, Name: name}
			}
			if _, err := insertCategories(ctx, tx, owner, cats); err != nil {
				return err
			}
		}
		row := settingsToStorage(owner, core.DefaultSettings())
		_, err := tx.Exec(ctx,
			`INSERT INTO settings (owner_id, currency) VALUES ($1, $2) ON CONFLICT (owner_id) DO NOTHING`,
			row.OwnerID, row.Currency)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("seed owner: %w", err)
	}
	s.logger.InfoContext(ctx, "Seeded cloud owner", log.FieldOwner, owner)
	return true, nil
}
