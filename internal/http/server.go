// Package http serves the JSON API over the repositories for one session.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/report"
	"expensetracker/internal/repository"
)

// SessionManager switches between local and cloud mode.
type SessionManager interface {
	Current() core.Scope
	SignIn(ctx context.Context, ownerID string) error
	SignOut(ctx context.Context) error
}

// TokenVerifier turns a session token into an owner id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SheetsExporter mirrors expenses into a spreadsheet.
type SheetsExporter interface {
	Export(ctx context.Context, expenses []core.Expense, names report.Names) (string, error)
}

type Deps struct {
	Repos   *repository.Repositories
	Session SessionManager
	// Tokens is nil when cloud mode is not configured.
	Tokens TokenVerifier
	// Sheets is nil when no spreadsheet is configured.
	Sheets SheetsExporter
	Logger *log.Logger
	Now    func() time.Time
}

type Server struct {
	http.Server
	deps     Deps
	validate *validator.Validate
	limiter  *ratelimit.Limiter
	logger   *log.Logger

	shutdownOnce sync.Once
}

// NewServer wires the routes and returns a server ready for ListenAndServe.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{
		deps:     deps,
		validate: newValidator(),
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:   deps.Logger.WithComponent(log.ComponentHTTP),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(security.ClientIP))

	r.Get("/healthz", s.handleHealth)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Post("/", s.handleSignIn)
		r.Delete("/", s.handleSignOut)
	})

	r.Get("/settings", s.handleGetSettings)
	r.Patch("/settings", s.handleUpdateSettings)

	r.Route("/views", func(r chi.Router) {
		r.Get("/", s.handleListViews)
		r.Post("/", s.handleAddView)
		r.Delete("/{id}", s.handleDeleteView)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleListCategories)
		r.Post("/", s.handleAddCategory)
		r.Delete("/{id}", s.handleDeleteCategory)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.handleListExpenses)
		r.Post("/", s.handleAddExpense)
		r.Patch("/{id}", s.handleUpdateExpense)
		r.Delete("/{id}", s.handleDeleteExpense)
	})

	r.Get("/summary", s.handleSummary)

	r.Route("/export", func(r chi.Router) {
		r.Get("/expenses.csv", s.handleExportCSV)
		r.Get("/expenses.xlsx", s.handleExportXLSX)
		r.Post("/sheets", s.handleExportSheets)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) scope() core.Scope {
	return s.deps.Session.Current()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
