package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"expensetracker/internal/core"
)

// CSVHeader is the raw record layout: ids instead of names.
var CSVHeader = []string{"id", "date", "viewId", "categoryId", "amount", "note"}

// WriteCSV writes expenses as raw records in list order.
func WriteCSV(w io.Writer, expenses []core.Expense, mode NoteMode) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		note := e.Note
		if mode != NotesQuoted {
			note = strings.ReplaceAll(note, ",", ";")
		}
		record := []string{e.ID, e.Date.String(), e.ViewID, e.CategoryID, e.Amount.String(), note}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
