package report

import (
	"strings"

	"expensetracker/internal/core"
)

// Names resolves view and category ids to display names.
type Names struct {
	views      map[string]string
	categories map[string]string
}

func NewNames(views []core.View, categories []core.Category) Names {
	n := Names{
		views:      make(map[string]string, len(views)),
		categories: make(map[string]string, len(categories)),
	}
	for _, v := range views {
		n.views[v.ID] = v.Name
	}
	for _, c := range categories {
		n.categories[c.ID] = c.Name
	}
	return n
}

// View returns the name of a view, or "" if unknown.
func (n Names) View(id string) string { return n.views[id] }

// Category returns the name of a category, or "" if unknown.
func (n Names) Category(id string) string { return n.categories[id] }

// Filter narrows an expense list. Empty fields match everything.
type Filter struct {
	Range      DateRange
	ViewID     string
	CategoryID string
	// Search is matched case-insensitively against "<view> <category> <note>".
	Search string
}

func (f Filter) Match(e core.Expense, names Names) bool {
	if !f.Range.Contains(e.Date) {
		return false
	}
	if f.ViewID != "" && e.ViewID != f.ViewID {
		return false
	}
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if strings.TrimSpace(f.Search) != "" {
		text := strings.ToLower(names.View(e.ViewID) + " " + names.Category(e.CategoryID) + " " + e.Note)
		if !strings.Contains(text, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

// Apply returns the matching expenses in their original order.
func (f Filter) Apply(expenses []core.Expense, names Names) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e, names) {
			out = append(out, e)
		}
	}
	return out
}
