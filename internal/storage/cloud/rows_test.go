package cloud

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestExpenseRowMapping(t *testing.T) {
	e := core.Expense{
		ID:         "e1",
		ViewID:     "v1",
		CategoryID: "c1",
		Amount:     decimal.RequireFromString("250.5"),
		Date:       core.NewDate(2024, 3, 5),
	}
	row := expenseToStorage("owner-1", e)
	require.Equal(t, "owner-1", row.OwnerID)
	require.Equal(t, "250.50", row.Amount)
	require.Nil(t, row.Note)

	back, err := row.toDomain()
	require.NoError(t, err)
	require.True(t, back.Amount.Equal(e.Amount))
	require.Equal(t, e.Date, back.Date)
	require.Empty(t, back.Note)

	note := "dinner"
	row.Note = &note
	row.Date = time.Date(2024, 3, 5, 0, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	back, err = row.toDomain()
	require.NoError(t, err)
	require.Equal(t, "dinner", back.Note)
	require.Equal(t, "2024-03-05", back.Date.String())

	row.Amount = "not a number"
	_, err = row.toDomain()
	require.Error(t, err)
}

func TestSettingsRowMapping(t *testing.T) {
	require.Equal(t, core.USD, settingsRow{Currency: "USD"}.toDomain().Currency)
	require.Equal(t, core.DefaultSettings(), settingsRow{Currency: "EUR"}.toDomain())
	require.Equal(t, settingsRow{OwnerID: "o", Currency: "INR"}, settingsToStorage("o", core.DefaultSettings()))
}

func TestViewAndCategoryRowMapping(t *testing.T) {
	v := core.View{ID: "v", Name: "Home"}
	require.Equal(t, v, viewToStorage("o", v).toDomain())

	c := core.Category{ID: "c", ViewID: "v", Name: "Milk"}
	row := categoryToStorage("o", c)
	require.Equal(t, "o", row.OwnerID)
	require.Equal(t, c, row.toDomain())
}

func TestExpenseUpdate(t *testing.T) {
	sets, args := expenseUpdate(core.ExpensePatch{})
	require.Empty(t, sets)
	require.Empty(t, args)

	amount := decimal.RequireFromString("9.9")
	date := core.NewDate(2024, 1, 2)
	empty := ""
	sets, args = expenseUpdate(core.ExpensePatch{Amount: &amount, Date: &date, Note: &empty})
	require.Equal(t, "amount = $1::numeric, date = $2::date, note = $3", strings.Join(sets, ", "))
	require.Equal(t, "9.90", args[0])
	require.Equal(t, date.Time, args[1])
	require.Nil(t, args[2])
}

func TestValidID(t *testing.T) {
	require.True(t, validID("2f1d5e4e-8f3a-4b8e-9a3c-0c1d2e3f4a5b"))
	require.False(t, validID("id-1"))
	require.False(t, validID(""))
}
