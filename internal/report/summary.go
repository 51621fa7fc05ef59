package report

import (
	"slices"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Total sums the amounts. Currency is a display label, so no conversion happens.
func Total(expenses []core.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// ByCategory groups amounts per category in first-seen order.
func ByCategory(expenses []core.Expense, names Names) []core.CategoryTotal {
	index := make(map[string]int)
	var out []core.CategoryTotal
	for _, e := range expenses {
		i, ok := index[e.CategoryID]
		if !ok {
			i = len(out)
			index[e.CategoryID] = i
			out = append(out, core.CategoryTotal{
				CategoryID: e.CategoryID,
				Name:       names.Category(e.CategoryID),
				Total:      decimal.Zero,
			})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}
	return out
}

// TopCategory returns the category with the largest total, or nil for an empty
// list. Ties go to the category seen first.
func TopCategory(expenses []core.Expense, names Names) *core.CategoryTotal {
	groups := ByCategory(expenses, names)
	if len(groups) == 0 {
		return nil
	}
	top := groups[0]
	for _, g := range groups[1:] {
		if g.Total.GreaterThan(top.Total) {
			top = g
		}
	}
	return &top
}

func Summarize(expenses []core.Expense, names Names) core.Summary {
	byCat := ByCategory(expenses, names)
	if byCat == nil {
		byCat = []core.CategoryTotal{}
	}
	return core.Summary{
		Total:       Total(expenses),
		Count:       len(expenses),
		TopCategory: TopCategory(expenses, names),
		ByCategory:  byCat,
	}
}

// ViewTotal sums the expenses of one view inside rng, restricted to the
// selected categories. An empty selection means every category.
func ViewTotal(expenses []core.Expense, viewID string, rng DateRange, selected []string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if e.ViewID != viewID || !rng.Contains(e.Date) {
			continue
		}
		if len(selected) > 0 && !slices.Contains(selected, e.CategoryID) {
			continue
		}
		sum = sum.Add(e.Amount)
	}
	return sum
}
