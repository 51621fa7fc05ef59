package cloud

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Row types mirror the table columns. Conversions to and from the domain
// types go through the functions below only.
type (
	settingsRow struct {
		OwnerID  string
		Currency string
	}

	viewRow struct {
		ID      string
		OwnerID string
		Name    string
	}

	categoryRow struct {
		ID      string
		OwnerID string
		ViewID  string
		Name    string
	}

	expenseRow struct {
		ID         string
		OwnerID    string
		ViewID     string
		CategoryID string
		// Amount is the numeric column rendered as text.
		Amount string
		Date   time.Time
		Note   *string
	}
)

func (r settingsRow) toDomain() core.Settings {
	s := core.Settings{Currency: core.Currency(r.Currency)}
	if !s.Currency.Valid() {
		return core.DefaultSettings()
	}
	return s
}

func settingsToStorage(owner string, s core.Settings) settingsRow {
	return settingsRow{OwnerID: owner, Currency: string(s.Currency)}
}

func (r viewRow) toDomain() core.View {
	return core.View{ID: r.ID, Name: r.Name}
}

func viewToStorage(owner string, v core.View) viewRow {
	return viewRow{ID: v.ID, OwnerID: owner, Name: v.Name}
}

func (r categoryRow) toDomain() core.Category {
	return core.Category{ID: r.ID, ViewID: r.ViewID, Name: r.Name}
}

func categoryToStorage(owner string, c core.Category) categoryRow {
	return categoryRow{ID: c.ID, OwnerID: owner, ViewID: c.ViewID, Name: c.Name}
}

func (r expenseRow) toDomain() (core.Expense, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse amount %q: %w", r.ID, r.Amount, err)
	}
	e := core.Expense{
		ID:         r.ID,
		ViewID:     r.ViewID,
		CategoryID: r.CategoryID,
		Amount:     amount,
		Date:       core.DateOf(r.Date),
	}
	if r.Note != nil {
		e.Note = *r.Note
	}
	return e, nil
}

func expenseToStorage(owner string, e core.Expense) expenseRow {
	return expenseRow{
		ID:         e.ID,
		OwnerID:    owner,
		ViewID:     e.ViewID,
		CategoryID: e.CategoryID,
		Amount:     e.Amount.StringFixed(2),
		Date:       e.Date.Time,
		Note:       nullIfEmpty(e.Note),
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// expenseUpdate renders the SET clause of an expense patch. Placeholders start
// at $1; the caller appends the id and owner arguments after args.
func expenseUpdate(p core.ExpensePatch) (sets []string, args []any) {
	add := func(column string, value any, cast string) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, len(args), cast))
	}
	if p.ViewID != nil {
		add("view_id", *p.ViewID, "::uuid")
	}
	if p.CategoryID != nil {
		add("category_id", *p.CategoryID, "::uuid")
	}
	if p.Amount != nil {
		add("amount", p.Amount.StringFixed(2), "::numeric")
	}
	if p.Date != nil {
		add("date", p.Date.Time, "::date")
	}
	if p.Note != nil {
		add("note", nullIfEmpty(*p.Note), "")
	}
	return sets, args
}
