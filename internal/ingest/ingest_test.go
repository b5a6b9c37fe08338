package ingest

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/internal/streaming"
	"github.com/rendis/casegraph/pkg/schema"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func openFixture(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Open("testdata/cases.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// failingStore fails PutCase for one case ID.
type failingStore struct {
	store.Store
	failOn string
}

func (f *failingStore) PutCase(ctx context.Context, rec *store.CaseRecord) error {
	if rec.ID == f.failOn {
		return schema.NewError(schema.ErrCodeStore, "disk full")
	}
	return f.Store.PutCase(ctx, rec)
}

// --- Decode ---

func TestDecodeFile(t *testing.T) {
	doc, err := DecodeFile("testdata/cases.json")
	require.NoError(t, err)
	require.Len(t, doc, 2)

	info := doc["C-200"].CaseInformation
	assert.Equal(t, "B. Officer", info.Officer)
	assert.Equal(t, "", info.DecisionTree["1"].FlowchartBox)
	assert.Equal(t, "", doc["C-100"].CaseInformation.DateClosed)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile("testdata/nope.json")
	assert.Error(t, err)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"C-1": {"Case_information": {"Decision_Tree": [1]}}}`))
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))
}

// --- Import ---

func TestImport(t *testing.T) {
	s := store.NewMemoryStore()
	hub := streaming.NewMemoryHub()
	events, cancel, err := hub.Subscribe(context.Background(), streaming.EventFilter{
		Types: []string{streaming.EventImportCompleted},
	})
	require.NoError(t, err)
	defer cancel()

	im := NewImporter(ImporterDeps{Store: s, Hub: hub, Logger: quietLogger()})
	res, err := im.Import(context.Background(), "testdata/cases.json", openFixture(t))
	require.NoError(t, err)

	assert.Equal(t, 2, res.CaseCount)
	assert.NotEmpty(t, res.ImportID)
	assert.Empty(t, res.Warnings)

	ids, err := s.ListCaseIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C-100", "C-200"}, ids)

	rec, err := s.GetCase(context.Background(), "C-100")
	require.NoError(t, err)
	assert.Equal(t, res.ImportID, rec.ImportID)

	runs, err := s.ListImports(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.ImportCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[0].CaseCount)

	select {
	case evt := <-events:
		assert.Equal(t, res.ImportID, evt.ImportID)
	case <-time.After(time.Second):
		t.Fatal("no import.completed event")
	}
}

func TestImportInvalidDocumentLeavesStoreUntouched(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.PutCase(context.Background(), &store.CaseRecord{ID: "OLD"}))

	im := NewImporter(ImporterDeps{Store: s, Logger: quietLogger()})
	_, err := im.Import(context.Background(), "bad.json", strings.NewReader(`{"C-1": 5}`))
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))

	ids, err := s.ListCaseIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"OLD"}, ids)

	runs, err := s.ListImports(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.ImportFailed, runs[0].Status)
	assert.NotEmpty(t, runs[0].Error)
}

func TestImportReportsWarnings(t *testing.T) {
	im := NewImporter(ImporterDeps{Store: store.NewMemoryStore(), Logger: quietLogger()})

	raw := `{"K-1": {"Case_information": {"Case_Id": "other", "Decision_Tree": {"1": {"Decision_DecisionMadeDate": "soon"}}}}}`
	res, err := im.Import(context.Background(), "inline", strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CaseCount)
	assert.Len(t, res.Warnings, 2)
}

func TestImportPrune(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.PutCase(ctx, &store.CaseRecord{ID: "STALE"}))

	im := NewImporter(ImporterDeps{Store: s, Logger: quietLogger()})
	im.Prune = true
	res, err := im.Import(ctx, "testdata/cases.json", openFixture(t))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pruned)

	ids, err := s.ListCaseIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C-100", "C-200"}, ids)
}

func TestImportWithoutPruneKeepsStaleCases(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.PutCase(ctx, &store.CaseRecord{ID: "STALE"}))

	im := NewImporter(ImporterDeps{Store: s, Logger: quietLogger()})
	_, err := im.Import(ctx, "testdata/cases.json", openFixture(t))
	require.NoError(t, err)

	ids, err := s.ListCaseIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestImportStoreFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	im := NewImporter(ImporterDeps{Store: &failingStore{Store: mem, failOn: "C-200"}, Logger: quietLogger()})

	_, err := im.Import(context.Background(), "testdata/cases.json", openFixture(t))
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeStore, schema.CodeOf(err))

	runs, err := mem.ListImports(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.ImportFailed, runs[0].Status)
	assert.Equal(t, 1, runs[0].CaseCount)
}

func TestImportReadError(t *testing.T) {
	im := NewImporter(ImporterDeps{Store: store.NewMemoryStore(), Logger: quietLogger()})
	_, err := im.Import(context.Background(), "broken", errReader{})
	assert.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }
