package panel

import (
	"net/http"
	"strings"

	"github.com/rendis/casegraph/internal/diagram"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/pkg/schema"
)

// maxUploadBytes bounds the size of an uploaded cases document.
const maxUploadBytes = 32 << 20

func (s *PanelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Store.ListImports(r.Context(), 1); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch returns the case picker state for ?q= and ?selected=.
func (s *PanelServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.deps.Catalog.Search(r.Context(), q.Get("q"), q.Get("selected"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// handleFilter evaluates ?expr= with ?engine= (default cel) against every case.
func (s *PanelServer) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	engine := q.Get("engine")
	if engine == "" {
		engine = "cel"
	}
	ids, err := s.deps.Catalog.Where(r.Context(), engine, q.Get("expr"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

func (s *PanelServer) handleSummaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.CaseFilter{
		Officer:    q.Get("officer"),
		CustomerID: q.Get("customer"),
	}
	var err error
	if filter.OpenOnly, err = queryBool(r, "open"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		s.writeError(w, r, err)
		return
	}

	cases, err := s.deps.Store.ListCases(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

// handleCase returns the case record as it was imported.
func (s *PanelServer) handleCase(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Catalog.Case(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Data)
}

func (s *PanelServer) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.deps.Store.DeleteCase(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGraph returns the timeline graph, or its jq projection with ?jq=.
func (s *PanelServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if jq := r.URL.Query().Get("jq"); jq != "" {
		out, err := s.deps.Catalog.Project(r.Context(), id, jq)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	g, err := s.deps.Catalog.Timeline(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleDiagram renders the timeline as ascii (default), mermaid, svg or png.
func (s *PanelServer) handleDiagram(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "ascii"
	}
	contentType, ok := diagramContentTypes[format]
	if !ok {
		s.writeError(w, r, schema.NewErrorf(schema.ErrCodeValidation,
			"unsupported diagram format %q (want ascii, mermaid, svg or png)", format))
		return
	}

	g, err := s.deps.Catalog.Timeline(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body []byte
	switch format {
	case "ascii":
		body = []byte(diagram.RenderASCIIAuto(g, s.deps.MermaidBinDir))
	case "mermaid":
		body = []byte(diagram.RenderMermaid(g))
	default:
		body, err = diagram.RenderImage(r.Context(), g, diagram.ImageFormat(format))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

var diagramContentTypes = map[string]string{
	"ascii":   "text/plain; charset=utf-8",
	"mermaid": "text/plain; charset=utf-8",
	"svg":     "image/svg+xml",
	"png":     "image/png",
}

// handleListImports returns the most recent import runs (?limit=, default 20).
func (s *PanelServer) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runs, err := s.deps.Store.ListImports(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": runs})
}

// handleCreateImport loads the request body as a cases document.
func (s *PanelServer) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Importer == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "imports are not enabled on this server"})
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}
	res, err := s.deps.Importer.Import(r.Context(), source, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
