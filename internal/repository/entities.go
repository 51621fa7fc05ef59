package repository

import (
	"context"
	"slices"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
)

type SettingsRepository struct{ *base }

func (r *SettingsRepository) Get(ctx context.Context, scope core.Scope) (core.Settings, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return core.Settings{}, err
	}
	return cache.Load(ctx, r.cache, cache.KeyFor(core.CollectionSettings, scope),
		func(ctx context.Context) (core.Settings, error) { return a.Settings(ctx, owner) })
}

func (r *SettingsRepository) Update(ctx context.Context, scope core.Scope, patch core.SettingsPatch) (core.Settings, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return core.Settings{}, err
	}
	s, err := a.PutSettings(ctx, owner, patch)
	if err != nil {
		r.logWriteError(ctx, scope, OpUpdateSettings, err)
		return core.Settings{}, err
	}
	r.afterWrite(ctx, scope, OpUpdateSettings)
	return s, nil
}

type ViewRepository struct{ *base }

func (r *ViewRepository) List(ctx context.Context, scope core.Scope) ([]core.View, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return nil, err
	}
	views, err := cache.Load(ctx, r.cache, cache.KeyFor(core.CollectionViews, scope),
		func(ctx context.Context) ([]core.View, error) { return a.Views(ctx, owner) })
	return slices.Clone(views), err
}

func (r *ViewRepository) Add(ctx context.Context, scope core.Scope, name string) (core.View, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return core.View{}, err
	}
	added, err := a.InsertViews(ctx, owner, []core.View{{Name: name}})
	if err != nil {
		r.logWriteError(ctx, scope, OpAddView, err)
		return core.View{}, err
	}
	r.afterWrite(ctx, scope, OpAddView)
	return added[0], nil
}

// Delete removes the view together with its categories and their expenses.
func (r *ViewRepository) Delete(ctx context.Context, scope core.Scope, id string) error {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return err
	}
	if err := a.DeleteView(ctx, owner, id); err != nil {
		r.logWriteError(ctx, scope, OpDeleteView, err)
		return err
	}
	r.afterWrite(ctx, scope, OpDeleteView)
	return nil
}

type CategoryRepository struct{ *base }

func (r *CategoryRepository) List(ctx context.Context, scope core.Scope) ([]core.Category, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return nil, err
	}
	cats, err := cache.Load(ctx, r.cache, cache.KeyFor(core.CollectionCategories, scope),
		func(ctx context.Context) ([]core.Category, error) { return a.Categories(ctx, owner) })
	return slices.Clone(cats), err
}

// ListByView returns the categories of one view.
func (r *CategoryRepository) ListByView(ctx context.Context, scope core.Scope, viewID string) ([]core.Category, error) {
	cats, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(cats, func(c core.Category) bool { return c.ViewID != viewID }), nil
}

func (r *CategoryRepository) Add(ctx context.Context, scope core.Scope, viewID, name string) (core.Category, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return core.Category{}, err
	}
	added, err := a.InsertCategories(ctx, owner, []core.Category{{ViewID: viewID, Name: name}})
	if err != nil {
		r.logWriteError(ctx, scope, OpAddCategory, err)
		return core.Category{}, err
	}
	r.afterWrite(ctx, scope, OpAddCategory)
	return added[0], nil
}

// Delete removes the category and its expenses.
func (r *CategoryRepository) Delete(ctx context.Context, scope core.Scope, id string) error {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return err
	}
	if err := a.DeleteCategory(ctx, owner, id); err != nil {
		r.logWriteError(ctx, scope, OpDeleteCategory, err)
		return err
	}
	r.afterWrite(ctx, scope, OpDeleteCategory)
	return nil
}

type ExpenseRepository struct{ *base }

func (r *ExpenseRepository) List(ctx context.Context, scope core.Scope) ([]core.Expense, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return nil, err
	}
	expenses, err := cache.Load(ctx, r.cache, cache.KeyFor(core.CollectionExpenses, scope),
		func(ctx context.Context) ([]core.Expense, error) { return a.Expenses(ctx, owner) })
	return slices.Clone(expenses), err
}

// Add stores e and returns it with its store-assigned id.
func (r *ExpenseRepository) Add(ctx context.Context, scope core.Scope, e core.Expense) (core.Expense, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = ""
	stored, err := a.InsertExpense(ctx, owner, e)
	if err != nil {
		r.logWriteError(ctx, scope, OpAddExpense, err)
		return core.Expense{}, err
	}
	r.afterWrite(ctx, scope, OpAddExpense)
	return stored, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, scope core.Scope, id string, patch core.ExpensePatch) (core.Expense, error) {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return core.Expense{}, err
	}
	updated, err := a.UpdateExpense(ctx, owner, id, patch)
	if err != nil {
		r.logWriteError(ctx, scope, OpUpdateExpense, err)
		return core.Expense{}, err
	}
	r.afterWrite(ctx, scope, OpUpdateExpense)
	return updated, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, scope core.Scope, id string) error {
	a, owner, err := r.resolve(scope)
	if err != nil {
		return err
	}
	if err := a.DeleteExpense(ctx, owner, id); err != nil {
		r.logWriteError(ctx, scope, OpDeleteExpense, err)
		return err
	}
	r.afterWrite(ctx, scope, OpDeleteExpense)
	return nil
}
