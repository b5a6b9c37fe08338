package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/casegraph/internal/expressions"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/pkg/schema"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	put := func(id, officer string, tree map[string]schema.Decision) {
		require.NoError(t, s.PutCase(ctx, &store.CaseRecord{
			ID: id,
			Data: schema.CaseData{CaseInformation: schema.CaseInformation{
				CaseID:       id,
				Officer:      officer,
				DateCreated:  "2023-12-28 00:00:00",
				DecisionTree: tree,
			}},
		}))
	}
	put("CASE-002", "bob", map[string]schema.Decision{
		"1": {DecisionType: "Prevention", MadeDate: "2024-01-01 00:00:00"},
	})
	put("CASE-001", "alice", map[string]schema.Decision{
		"1": {DecisionType: "Prevention", MadeDate: "2024-01-01 00:00:00"},
		"2": {DecisionType: "Relief", MadeDate: "2024-01-03 00:00:00"},
	})
	put("OTHER-1", "alice", nil)

	engines, err := expressions.NewRegistry()
	require.NoError(t, err)
	return New(Deps{Store: s, Engines: engines})
}

func TestSearch_DefaultsToFirstCase(t *testing.T) {
	c := newTestCatalog(t)

	sel, err := c.Search(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CASE-001", "CASE-002", "OTHER-1"}, sel.IDs)
	assert.Equal(t, sel.IDs, sel.Dropdown)
	assert.Equal(t, "CASE-001", sel.Selected)
	assert.Empty(t, sel.Exact)
}

func TestSearch_KeepsSelectionVisible(t *testing.T) {
	c := newTestCatalog(t)

	sel, err := c.Search(context.Background(), "case", "OTHER-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CASE-001", "CASE-002"}, sel.IDs)
	assert.Equal(t, []string{"OTHER-1", "CASE-001", "CASE-002"}, sel.Dropdown)
	assert.Equal(t, "OTHER-1", sel.Selected)
}

func TestSearch_UnknownSelectionFallsBack(t *testing.T) {
	c := newTestCatalog(t)

	sel, err := c.Search(context.Background(), "other", "NOPE")
	require.NoError(t, err)
	assert.Equal(t, "CASE-001", sel.Selected)
	assert.Equal(t, []string{"CASE-001", "OTHER-1"}, sel.Dropdown)
}

func TestSearch_ExactMatch(t *testing.T) {
	c := newTestCatalog(t)

	sel, err := c.Search(context.Background(), " CASE-002 ", "")
	require.NoError(t, err)
	assert.Equal(t, "CASE-002", sel.Exact)
}

func TestSearch_EmptyCatalog(t *testing.T) {
	c := New(Deps{Store: store.NewMemoryStore()})

	sel, err := c.Search(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Empty(t, sel.IDs)
	assert.Empty(t, sel.Dropdown)
	assert.Empty(t, sel.Selected)
}

func TestWhere(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	ids, err := c.Where(ctx, "cel", `record.officer == "alice"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"CASE-001", "OTHER-1"}, ids)

	ids, err = c.Where(ctx, "expr", `record.decision_count >= 1`)
	require.NoError(t, err)
	assert.Equal(t, []string{"CASE-001", "CASE-002"}, ids)

	ids, err = c.Where(ctx, "jq", `.record.decision_count == 0`)
	require.NoError(t, err)
	assert.Equal(t, []string{"OTHER-1"}, ids)
}

func TestWhere_Errors(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Where(ctx, "lua", "true")
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))

	_, err = c.Where(ctx, "cel", `record.officer`)
	assert.Equal(t, schema.ErrCodeExpression, schema.CodeOf(err))

	noEngines := New(Deps{Store: store.NewMemoryStore()})
	_, err = noEngines.Where(ctx, "cel", "true")
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))
}

func TestTimeline(t *testing.T) {
	c := newTestCatalog(t)

	g, err := c.Timeline(context.Background(), "CASE-001")
	require.NoError(t, err)
	assert.Equal(t, "CASE-001", g.CaseID)

	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, "case-info")
	assert.Contains(t, ids, "decision-1")
	assert.Contains(t, ids, "decision-2")
}

func TestTimeline_NotFound(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Timeline(context.Background(), "missing")
	assert.True(t, schema.IsNotFound(err))
}

func TestProject(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	out, err := c.Project(ctx, "CASE-001", `[.nodes[] | select(.type == "decision") | .id]`)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []any{"decision-1", "decision-2"}, out[0])

	_, err = c.Project(ctx, "CASE-001", `.nodes[`)
	assert.Equal(t, schema.ErrCodeExpression, schema.CodeOf(err))

	_, err = c.Project(ctx, "missing", `.`)
	assert.True(t, schema.IsNotFound(err))
}

func TestCase(t *testing.T) {
	c := newTestCatalog(t)

	rec, err := c.Case(context.Background(), "CASE-002")
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.Data.CaseInformation.Officer)
}
