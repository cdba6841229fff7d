package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/domain"
	apimw "github.com/hamed0406/svrmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/svrmonitor/internal/repo"
)

// maxEventsLimit caps /api/events?limit=N.
const maxEventsLimit = 1000

// StatusReader is the read side of the status board.
type StatusReader interface {
	List() []domain.Snapshot
	Get(id domain.EndpointID) (domain.Snapshot, bool)
}

type Server struct {
	Logger  *zap.Logger
	Status  StatusReader
	Events  repo.EventStore // optional
	Metrics http.Handler    // optional
}

type Options struct {
	Keys           apimw.Keys
	AllowedOrigins []string // empty allows all
	RPM            int
	Burst          int
}

func NewServer(l *zap.Logger, status StatusReader, events repo.EventStore, metrics http.Handler) *Server {
	return &Server{Logger: l, Status: status, Events: events, Metrics: metrics}
}

// Router exposes a read-only view of the monitors. Nothing here can change
// configuration or monitor state.
func (s *Server) Router(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(o.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(o.RPM, o.Burst))
		r.Use(apimw.RequireAny(o.Keys))
		r.Get("/api/endpoints", s.handleListEndpoints)
		r.Get("/api/endpoints/{id}", s.handleGetEndpoint)
		r.Get("/api/events", s.handleListEvents)
	})

	if s.Metrics != nil {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAdmin(o.Keys))
			r.Method(http.MethodGet, "/metrics", s.Metrics)
		})
	}
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
		MaxAge:         300,
	})
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status.List())
}

func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	id := domain.EndpointID(chi.URLParam(r, "id"))
	snap, ok := s.Status.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r.URL.Query().Get("limit"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		return
	}
	if s.Events == nil {
		writeJSON(w, http.StatusOK, []domain.Event{})
		return
	}
	evs, err := s.Events.Recent(r.Context(), limit)
	if err != nil {
		s.Logger.Error("events_list_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list error"})
		return
	}
	if evs == nil {
		evs = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}

// parseLimit accepts an empty value (store default) or a positive integer,
// clamped to maxEventsLimit.
func parseLimit(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxEventsLimit {
		n = maxEventsLimit
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
