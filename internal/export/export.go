// Package export renders expense lists as CSV, XLSX and Google Sheets rows.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

var ErrUnknownNoteMode = errors.New("unknown note mode")

// Row is one expense with its references resolved to names.
type Row struct {
	ID       string
	Date     string
	View     string
	Category string
	Amount   decimal.Decimal
	Note     string
}

// Header labels the columns of a readable export.
var Header = []string{"Date", "View", "Category", "Amount", "Note"}

// Rows resolves names in list order.
func Rows(expenses []core.Expense, names report.Names) []Row {
	rows := make([]Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, Row{
			ID:       e.ID,
			Date:     e.Date.String(),
			View:     names.View(e.ViewID),
			Category: names.Category(e.CategoryID),
			Amount:   e.Amount,
			Note:     e.Note,
		})
	}
	return rows
}

// NoteMode controls how notes containing commas are written to CSV.
type NoteMode string

const (
	// NotesSemicolon replaces commas in notes with semicolons.
	NotesSemicolon NoteMode = "semicolon"
	// NotesQuoted keeps notes intact and quotes fields as needed.
	NotesQuoted NoteMode = "quoted"
)

func ParseNoteMode(s string) (NoteMode, error) {
	switch NoteMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NotesSemicolon:
		return NotesSemicolon, nil
	case NotesQuoted:
		return NotesQuoted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNoteMode, s)
	}
}
