package panel

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/casegraph/internal/catalog"
	"github.com/rendis/casegraph/internal/ingest"
	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/internal/streaming"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// PanelDeps holds the dependencies for the panel server.
type PanelDeps struct {
	Catalog  *catalog.Catalog
	Store    store.Store
	Importer *ingest.Importer   // optional; uploads are rejected without it
	Hub      streaming.EventHub // optional; /api/events is unavailable without it
	Logger   *slog.Logger
	// MermaidBinDir is searched for a mermaid-ascii binary for ASCII diagrams.
	MermaidBinDir string
}

// PanelServer serves the case timeline HTTP API.
type PanelServer struct {
	deps PanelDeps
}

// NewPanelServer creates a new PanelServer.
func NewPanelServer(deps PanelDeps) *PanelServer {
	deps.Logger = logging.OrDefault(deps.Logger)
	return &PanelServer{deps: deps}
}

// Handler returns the HTTP handler for the panel routes.
func (s *PanelServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Cases.
	mux.HandleFunc("GET /api/cases", s.handleSearch)
	mux.HandleFunc("GET /api/cases/filter", s.handleFilter)
	mux.HandleFunc("GET /api/cases/summaries", s.handleSummaries)
	mux.HandleFunc("GET /api/cases/{id}", s.handleCase)
	mux.HandleFunc("DELETE /api/cases/{id}", s.handleDeleteCase)
	mux.HandleFunc("GET /api/cases/{id}/graph", s.handleGraph)
	mux.HandleFunc("GET /api/cases/{id}/diagram", s.handleDiagram)

	// Imports.
	mux.HandleFunc("GET /api/imports", s.handleListImports)
	mux.HandleFunc("POST /api/imports", s.handleCreateImport)

	// SSE stream.
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return s.withRequestID(mux)
}

// withRequestID tags every request with an id, honoring one sent by the
// client, and logs the request once it completes.
func (s *PanelServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logging.WithRequestID(r.Context(), id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		s.deps.Logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
