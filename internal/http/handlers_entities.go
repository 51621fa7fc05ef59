package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

type settingsResponse struct {
	Currency   core.Currency   `json:"currency"`
	Symbol     string          `json:"symbol"`
	Currencies []core.Currency `json:"currencies"`
	PageSizes  []int           `json:"pageSizes"`
}

func newSettingsResponse(st core.Settings) settingsResponse {
	return settingsResponse{
		Currency:   st.Currency,
		Symbol:     st.Currency.Symbol(),
		Currencies: core.Currencies(),
		PageSizes:  report.PageSizes(),
	}
}

type viewResponse struct {
	core.View
	Label string `json:"label"`
}

type categoryResponse struct {
	core.Category
	Label string `json:"label"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Repos.Settings.Get(r.Context(), s.scope())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(st))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch core.SettingsPatch
	if req.Currency != nil {
		c, err := core.ParseCurrency(*req.Currency)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		patch.Currency = &c
	}
	st, err := s.deps.Repos.Settings.Update(r.Context(), s.scope(), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(st))
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.deps.Repos.Views.List(r.Context(), s.scope())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]viewResponse, len(views))
	for i, v := range views {
		resp[i] = viewResponse{View: v, Label: core.Label(v.Name)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.deps.Repos.Views.Add(r.Context(), s.scope(), strings.TrimSpace(req.Name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewResponse{View: v, Label: core.Label(v.Name)})
}

// handleDeleteView also removes the view's categories and expenses.
func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Repos.Views.Delete(r.Context(), s.scope(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		cats []core.Category
		err  error
	)
	if viewID := strings.TrimSpace(r.URL.Query().Get("view")); viewID != "" {
		cats, err = s.deps.Repos.Categories.ListByView(r.Context(), s.scope(), viewID)
	} else {
		cats, err = s.deps.Repos.Categories.List(r.Context(), s.scope())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = categoryResponse{Category: c, Label: core.Label(c.Name)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Repos.Categories.Add(r.Context(), s.scope(), strings.TrimSpace(req.ViewID), strings.TrimSpace(req.Name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{Category: c, Label: core.Label(c.Name)})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Repos.Categories.Delete(r.Context(), s.scope(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
