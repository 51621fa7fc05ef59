package http

import (
	"net/http"

	"expensetracker/internal/core"
)

type sessionResponse struct {
	Mode         core.Mode `json:"mode"`
	OwnerID      string    `json:"ownerId,omitempty"`
	CloudEnabled bool      `json:"cloudEnabled"`
}

func (s *Server) currentSession() sessionResponse {
	scope := s.scope()
	resp := sessionResponse{Mode: scope.Mode, CloudEnabled: s.deps.Tokens != nil}
	if scope.Mode == core.ModeCloud {
		resp.OwnerID = scope.OwnerID
	}
	return resp
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentSession())
}

// handleSignIn verifies the token and switches to the owner's cloud data.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tokens == nil {
		s.writeError(w, r, core.ErrCloudUnavailable)
		return
	}
	var req sessionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := s.deps.Tokens.Verify(req.Token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Session.SignIn(r.Context(), owner); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentSession())
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Session.SignOut(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentSession())
}
