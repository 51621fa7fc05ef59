package repository

import "expensetracker/internal/core"

// Op names a write operation.
type Op string

const (
	OpUpdateSettings Op = "update_settings"
	OpAddView        Op = "add_view"
	OpDeleteView     Op = "delete_view"
	OpAddCategory    Op = "add_category"
	OpDeleteCategory Op = "delete_category"
	OpAddExpense     Op = "add_expense"
	OpUpdateExpense  Op = "update_expense"
	OpDeleteExpense  Op = "delete_expense"
	OpSeed           Op = "seed"
)

// affects lists the collections each write can change. Cascading deletes
// reach into the collections below them.
var affects = map[Op][]core.Collection{
	OpUpdateSettings: {core.CollectionSettings},
	OpAddView:        {core.CollectionViews},
	OpDeleteView:     {core.CollectionViews, core.CollectionCategories, core.CollectionExpenses},
	OpAddCategory:    {core.CollectionCategories},
	OpDeleteCategory: {core.CollectionCategories, core.CollectionExpenses},
	OpAddExpense:     {core.CollectionExpenses},
	OpUpdateExpense:  {core.CollectionExpenses},
	OpDeleteExpense:  {core.CollectionExpenses},
	OpSeed:           core.AllCollections(),
}

// Affected returns the collections invalidated by op. Unknown ops affect
// everything.
func Affected(op Op) []core.Collection {
	if cols, ok := affects[op]; ok {
		return append([]core.Collection(nil), cols...)
	}
	return core.AllCollections()
}
