package ingest

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/internal/streaming"
	"github.com/rendis/casegraph/internal/validation"
	"github.com/rendis/casegraph/pkg/schema"
)

// ImporterDeps holds the importer's collaborators.
type ImporterDeps struct {
	Store     store.Store
	Validator *validation.DocumentValidator // nil uses the shared validator
	Hub       streaming.EventHub            // optional
	Logger    *slog.Logger
}

// Importer loads cases documents into a store, recording each load as an
// import run.
type Importer struct {
	deps ImporterDeps
	// Prune removes stored cases missing from the imported document.
	Prune bool
}

// NewImporter creates an Importer.
func NewImporter(deps ImporterDeps) *Importer {
	deps.Logger = logging.OrDefault(deps.Logger)
	return &Importer{deps: deps}
}

// Result summarizes a finished import.
type Result struct {
	ImportID  string                   `json:"import_id"`
	Source    string                   `json:"source"`
	CaseCount int                      `json:"case_count"`
	Pruned    int                      `json:"pruned"`
	Warnings  []schema.ValidationIssue `json:"warnings,omitempty"`
}

// Import reads a cases document from r and upserts every case. The document
// is validated before any case is written: an invalid document leaves the
// store untouched and marks the run failed.
func (im *Importer) Import(ctx context.Context, source string, r io.Reader) (*Result, error) {
	run := &store.ImportRun{ID: uuid.NewString(), Source: source}
	ctx = logging.WithImportID(ctx, run.ID)
	log := im.deps.Logger

	if err := im.deps.Store.CreateImport(ctx, run); err != nil {
		return nil, err
	}
	im.publish(ctx, streaming.CatalogEvent{Type: streaming.EventImportStarted, ImportID: run.ID})
	log.InfoContext(ctx, "import started", "source", source)

	res, err := im.load(ctx, run, r)
	count := 0
	if res != nil {
		count = res.CaseCount
	}
	if cerr := im.deps.Store.CompleteImport(ctx, run.ID, count, err); cerr != nil {
		log.ErrorContext(ctx, "failed to complete import run", "error", cerr)
		if err == nil {
			err = cerr
		}
	}

	if err != nil {
		log.ErrorContext(ctx, "import failed", "source", source, "error", err)
		im.publish(ctx, streaming.CatalogEvent{
			Type:     streaming.EventImportFailed,
			ImportID: run.ID,
			Payload:  map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	log.InfoContext(ctx, "import completed",
		"source", source, "cases", res.CaseCount, "pruned", res.Pruned, "warnings", len(res.Warnings))
	im.publish(ctx, streaming.CatalogEvent{Type: streaming.EventImportCompleted, ImportID: run.ID, Payload: res})
	return res, nil
}

func (im *Importer) load(ctx context.Context, run *store.ImportRun, r io.Reader) (*Result, error) {
	doc, validated, err := decodeWith(im.deps.Validator, r)
	if err != nil {
		return nil, err
	}

	res := &Result{ImportID: run.ID, Source: run.Source, Warnings: validated.Warnings}
	for _, w := range validated.Warnings {
		im.deps.Logger.WarnContext(logging.WithCaseID(ctx, w.CaseID), "case document warning",
			"path", w.Path, "message", w.Message)
	}

	ids := doc.IDs()
	sort.Strings(ids)
	for _, id := range ids {
		rec := &store.CaseRecord{ID: id, Data: doc[id], ImportID: run.ID}
		if err := im.deps.Store.PutCase(ctx, rec); err != nil {
			return res, err
		}
		res.CaseCount++
		im.publish(ctx, streaming.CatalogEvent{Type: streaming.EventCaseUpdated, CaseID: id, ImportID: run.ID})
	}

	if im.Prune {
		pruned, err := im.prune(ctx, doc)
		res.Pruned = pruned
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// prune deletes stored cases that are not part of doc.
func (im *Importer) prune(ctx context.Context, doc schema.CasesFile) (int, error) {
	ids, err := im.deps.Store.ListCaseIDs(ctx)
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, id := range ids {
		if _, keep := doc[id]; keep {
			continue
		}
		if err := im.deps.Store.DeleteCase(ctx, id); err != nil && !schema.IsNotFound(err) {
			return pruned, err
		}
		pruned++
		im.publish(ctx, streaming.CatalogEvent{Type: streaming.EventCaseDeleted, CaseID: id})
		im.deps.Logger.DebugContext(logging.WithCaseID(ctx, id), "case pruned")
	}
	return pruned, nil
}

func (im *Importer) publish(ctx context.Context, event streaming.CatalogEvent) {
	if im.deps.Hub == nil {
		return
	}
	if err := im.deps.Hub.Publish(ctx, event); err != nil {
		im.deps.Logger.WarnContext(ctx, "event publish failed", "event", event.Type, "error", err)
	}
}
