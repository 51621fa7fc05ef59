package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
	"expensetracker/internal/report"
)

var errSheetsDisabled = errors.New("google sheets export not configured")

type viewAggregate struct {
	ViewID       string          `json:"viewId"`
	Categories   []string        `json:"categories"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"totalDisplay"`
}

type summaryResponse struct {
	core.Summary
	TotalDisplay string           `json:"totalDisplay"`
	Currency     core.Currency    `json:"currency"`
	Range        report.DateRange `json:"range"`
	Label        string           `json:"label,omitempty"`
	View         *viewAggregate   `json:"view,omitempty"`
}

// handleSummary aggregates the range across all views. With view set it also
// totals that view over the selected categories.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := s.deps.Now()

	rng, period, err := parseRange(q, now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.deps.Repos.Snapshot(r.Context(), s.scope())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names := report.NewNames(snap.Views, snap.Categories)
	inRange := report.Filter{Range: rng}.Apply(snap.Expenses, names)
	summary := report.Summarize(inRange, names)

	resp := summaryResponse{
		Summary:      summary,
		TotalDisplay: core.FormatAmount(snap.Settings.Currency, summary.Total),
		Currency:     snap.Settings.Currency,
		Range:        rng,
		Label:        report.PeriodLabel(period, now),
	}
	if viewID := strings.TrimSpace(q.Get("view")); viewID != "" {
		selected := splitList(q.Get("categories"))
		total := report.ViewTotal(snap.Expenses, viewID, rng, selected)
		if selected == nil {
			selected = []string{}
		}
		resp.View = &viewAggregate{
			ViewID:       viewID,
			Categories:   selected,
			Total:        total,
			TotalDisplay: core.FormatAmount(snap.Settings.Currency, total),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	mode, err := export.ParseNoteMode(r.URL.Query().Get("notes"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	expenses, err := s.deps.Repos.Expenses.List(r.Context(), s.scope())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses, mode); err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", "expenses-"+s.deps.Now().Format("20060102")+".csv")
	w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Repos.Snapshot(r.Context(), s.scope())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap.Expenses, report.NewNames(snap.Views, snap.Categories)); err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"expenses-"+s.deps.Now().Format("20060102")+".xlsx")
	w.Write(buf.Bytes())
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sheets == nil {
		s.writeError(w, r, errSheetsDisabled)
		return
	}
	snap, err := s.deps.Repos.Snapshot(r.Context(), s.scope())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ref, err := s.deps.Sheets.Export(r.Context(), snap.Expenses, report.NewNames(snap.Views, snap.Categories))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"range": ref, "count": len(snap.Expenses)})
}
