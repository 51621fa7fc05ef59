package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

type expenseListResponse struct {
	report.Page[core.Expense]
	Total        string           `json:"total"`
	TotalDisplay string           `json:"totalDisplay"`
	PageWindow   []int            `json:"pageWindow"`
	Range        report.DateRange `json:"range"`
	Label        string           `json:"label,omitempty"`
}

// handleListExpenses filters, totals and paginates the scope's expenses.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := s.deps.Now()

	rng, period, err := parseRange(q, now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lq, err := s.parseListQuery(q)
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
	filter := report.Filter{
		Range:      rng,
		ViewID:     strings.TrimSpace(q.Get("view")),
		CategoryID: strings.TrimSpace(q.Get("category")),
		Search:     q.Get("q"),
	}
	filtered := filter.Apply(snap.Expenses, names)
	page := report.Paginate(filtered, lq.Page, lq.PageSize)
	total := report.Total(filtered)

	writeJSON(w, http.StatusOK, expenseListResponse{
		Page:         page,
		Total:        total.StringFixed(2),
		TotalDisplay: core.FormatAmount(snap.Settings.Currency, total),
		PageWindow:   report.PageWindow(page.Index, page.TotalPages),
		Range:        rng,
		Label:        report.PeriodLabel(period, now),
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := s.deps.Repos.Expenses.Add(r.Context(), s.scope(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expensePatchRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.deps.Repos.Expenses.Update(r.Context(), s.scope(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Repos.Expenses.Delete(r.Context(), s.scope(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
