package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentic-store/concierge/pkg/usecase"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

type Server struct {
	router    *chi.Mux
	uc        *usecase.UseCases
	adminUser string
	catalog   *catalogHandler
}

type Options func(*Server)

// WithAdminUser names the identity allowed to call /admin endpoints
func WithAdminUser(userID string) Options {
	return func(s *Server) {
		s.adminUser = userID
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	catalog, err := newCatalogHandler(uc.Retriever())
	if err != nil {
		return nil, err
	}
	s.catalog = catalog

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	// Catalog read endpoints, no identity required
	r.Get("/products", s.catalog.listProducts)
	r.Get("/products/{productID}", s.catalog.getProduct)
	r.Get("/categories", s.catalog.listCategories)

	// Chat endpoints require an identity header
	r.Route("/chat", func(r chi.Router) {
		r.Use(identityMiddleware)
		r.Post("/", s.handleChat)
		r.Post("/memory/clear", s.handleMemoryClear)
	})

	// Issue administration
	r.Route("/admin/issues", func(r chi.Router) {
		r.Use(identityMiddleware)
		r.Use(adminMiddleware(s.adminUser))
		r.Get("/", s.handleListIssues)
		r.Get("/{issueID}", s.handleGetIssue)
		r.Patch("/{issueID}", s.handleUpdateIssue)
		r.Delete("/{issueID}", s.handleDeleteIssue)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
