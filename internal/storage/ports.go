// Package storage defines the persistence ports shared by the local and cloud
// adapters. Every call carries the owner id; the local adapter ignores it.
package storage

import (
	"context"

	"expensetracker/internal/core"
)

type (
	SettingsStore interface {
		// Settings returns the owner's settings, or the defaults when none are stored.
		Settings(ctx context.Context, owner string) (core.Settings, error)
		PutSettings(ctx context.Context, owner string, patch core.SettingsPatch) (core.Settings, error)
	}

	ViewStore interface {
		Views(ctx context.Context, owner string) ([]core.View, error)
		// InsertViews stores the views and returns them with store-assigned ids.
		InsertViews(ctx context.Context, owner string, views []core.View) ([]core.View, error)
		// DeleteView removes the view, its categories and their expenses.
		DeleteView(ctx context.Context, owner, id string) error
	}

	CategoryStore interface {
		Categories(ctx context.Context, owner string) ([]core.Category, error)
		InsertCategories(ctx context.Context, owner string, cats []core.Category) ([]core.Category, error)
		// DeleteCategory removes the category and its expenses.
		DeleteCategory(ctx context.Context, owner, id string) error
	}

	ExpenseStore interface {
		Expenses(ctx context.Context, owner string) ([]core.Expense, error)
		InsertExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error)
		// UpdateExpense returns core.ErrNotFound when no expense has the id.
		UpdateExpense(ctx context.Context, owner, id string, patch core.ExpensePatch) (core.Expense, error)
		// DeleteExpense is a no-op for unknown ids.
		DeleteExpense(ctx context.Context, owner, id string) error
	}

	Seeder interface {
		// EnsureSeed writes the starter views, categories and settings if the
		// owner has none. It reports whether anything was written.
		EnsureSeed(ctx context.Context, owner string) (bool, error)
	}

	// Adapter is one complete persistence backend.
	Adapter interface {
		SettingsStore
		ViewStore
		CategoryStore
		ExpenseStore
		Seeder
		Close() error
	}
)
