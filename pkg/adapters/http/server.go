// Package http exposes the catalog and per-session controllers over a JSON
// API built on chi, with server-sent events carrying snapshot diffs.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/aretw0/toolshed/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the toolshed API.
type Server struct {
	Sessions *session.Manager
	Catalog  ports.Catalog
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog sets the catalog behind the /catalog routes.
func WithCatalog(c ports.Catalog) Option {
	return func(s *Server) {
		s.Catalog = c
	}
}

// WithMetrics exposes the gatherer on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams shares a stream manager whose Hooks are wired into the
// session controllers.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds a Server around a session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Catalog:  catalog.Builtin(),
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for a session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes mounts every endpoint on a chi router.
func (s *Server) Routes() http.Handler {
	return enableCORS(s.Router())
}

// Router returns the chi router without middleware. Every route except
// /metrics and the document routes is described by the OpenAPI document.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/swagger", s.GetSwagger)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", s.ListTools)
		r.Get("/categories", s.ListCategories)
		r.Get("/{toolID}", s.GetTool)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/events", s.SubscribeEvents)

			r.Post("/navigate", s.Navigate)

			r.Post("/compare", s.AddToCompare)
			r.Delete("/compare", s.ClearCompare)
			r.Delete("/compare/{toolID}", s.RemoveFromCompare)

			r.Post("/wizards/{name}/{action}", s.WizardAction)
			r.Put("/wizards/{name}/steps/{step}", s.SetWizardStep)

			r.Post("/notifications", s.Notify)
			r.Delete("/notifications/{id}", s.Dismiss)

			r.Post("/signin", s.SignIn)
			r.Post("/signout", s.SignOut)
			r.Put("/theme", s.SetTheme)

			r.Post("/checkout", s.Checkout)
			r.Delete("/checkout", s.CancelCheckout)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "toolshed-http",
		"version":     strings.TrimSpace(toolshed.Version),
		"api_version": apiVersion(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
