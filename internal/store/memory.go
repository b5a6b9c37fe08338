package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rendis/casegraph/pkg/schema"
)

// MemoryStore is an in-memory Store, used when the catalog is loaded straight
// from a cases document instead of a database.
type MemoryStore struct {
	mu      sync.RWMutex
	cases   map[string]*CaseRecord
	imports map[string]*ImportRun
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:   make(map[string]*CaseRecord),
		imports: make(map[string]*ImportRun),
	}
}

func (m *MemoryStore) Migrate(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) PutCase(ctx context.Context, rec *CaseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		return schema.NewError(schema.ErrCodeValidation, "case id is required")
	}
	rec.UpdatedAt = timeOrNow(rec.UpdatedAt)

	m.mu.Lock()
	m.cases[rec.ID] = cloneRecord(rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetCase(ctx context.Context, id string) (*CaseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.cases[id]
	if !ok {
		return nil, storeNotFound("case", id)
	}
	return cloneRecord(rec), nil
}

func (m *MemoryStore) ListCases(ctx context.Context, filter CaseFilter) ([]*CaseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var out []*CaseSummary
	for _, rec := range m.cases {
		if s := rec.Summary(); filter.matches(s) {
			out = append(out, s)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Offset, filter.Limit), nil
}

func (m *MemoryStore) ListCaseIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	ids := make([]string, 0, len(m.cases))
	for id := range m.cases {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) DeleteCase(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cases[id]; !ok {
		return storeNotFound("case", id)
	}
	delete(m.cases, id)
	return nil
}

func (m *MemoryStore) CreateImport(ctx context.Context, run *ImportRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.Status == "" {
		run.Status = ImportRunning
	}
	run.StartedAt = timeOrNow(run.StartedAt)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.imports[run.ID]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "import run %q already exists", run.ID)
	}
	cp := *run
	m.imports[run.ID] = &cp
	return nil
}

func (m *MemoryStore) CompleteImport(ctx context.Context, id string, caseCount int, importErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.imports[id]
	if !ok {
		return storeNotFound("import run", id)
	}
	now := time.Now().UTC()
	run.Status, run.Error = importOutcome(importErr)
	run.CaseCount = caseCount
	run.CompletedAt = &now
	return nil
}

func (m *MemoryStore) ListImports(ctx context.Context, limit int) ([]*ImportRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var runs []*ImportRun
	for _, run := range m.imports {
		cp := *run
		runs = append(runs, &cp)
	}
	m.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return page(runs, 0, limit), nil
}

// cloneRecord copies a record including its decision tree.
func cloneRecord(rec *CaseRecord) *CaseRecord {
	cp := *rec
	if tree := rec.Data.CaseInformation.DecisionTree; tree != nil {
		cp.Data.CaseInformation.DecisionTree = make(map[string]schema.Decision, len(tree))
		for step, d := range tree {
			cp.Data.CaseInformation.DecisionTree[step] = d
		}
	}
	return &cp
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*LibSQLStore)(nil)
)
