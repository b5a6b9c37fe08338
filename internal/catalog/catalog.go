package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/rendis/casegraph/internal/expressions"
	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/store"
	"github.com/rendis/casegraph/internal/timeline"
	"github.com/rendis/casegraph/pkg/schema"
)

// Deps holds the catalog's collaborators.
type Deps struct {
	Store   store.Store
	Engines *expressions.Registry
	Layout  timeline.Layout // zero value uses the default layout
	Logger  *slog.Logger
}

// Catalog answers case selection and timeline queries over a store.
type Catalog struct {
	deps Deps
	jq   *expressions.GoJQEngine
}

// New creates a Catalog.
func New(deps Deps) *Catalog {
	deps.Logger = logging.OrDefault(deps.Logger)
	deps.Layout = deps.Layout.WithDefaults()
	return &Catalog{deps: deps, jq: expressions.NewGoJQEngine()}
}

// Selection is the case picker state for a search query.
type Selection struct {
	// IDs are the case ids matching the query.
	IDs []string `json:"ids"`
	// Dropdown is IDs with the selected id kept visible.
	Dropdown []string `json:"dropdown"`
	// Selected is the effective selection: the requested id when it exists,
	// otherwise the first case.
	Selected string `json:"selected"`
	// Exact is the id the query names exactly, if any.
	Exact string `json:"exact,omitempty"`
}

// Search filters the catalog ids by query and resolves the selection.
func (c *Catalog) Search(ctx context.Context, query, selected string) (*Selection, error) {
	ids, err := c.deps.Store.ListCaseIDs(ctx)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(ids, selected) {
		selected = ""
		if len(ids) > 0 {
			selected = ids[0]
		}
	}

	filtered := FilterIDs(ids, query)
	sel := &Selection{
		IDs:      filtered,
		Dropdown: DropdownIDs(filtered, selected),
		Selected: selected,
	}
	if exact, ok := ResolveExact(ids, query); ok {
		sel.Exact = exact
	}
	return sel, nil
}

// Where returns the ids of the cases for which expression, evaluated by the
// named engine over expressions.RecordEnv, is true.
func (c *Catalog) Where(ctx context.Context, engine, expression string) ([]string, error) {
	if c.deps.Engines == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "expression filters are not configured")
	}
	if _, err := c.deps.Engines.Get(engine); err != nil {
		return nil, err
	}

	ids, err := c.deps.Store.ListCaseIDs(ctx)
	if err != nil {
		return nil, err
	}

	matched := []string{}
	for _, id := range ids {
		rec, err := c.deps.Store.GetCase(ctx, id)
		if schema.IsNotFound(err) {
			continue // deleted since listing
		}
		if err != nil {
			return nil, err
		}
		ok, err := c.deps.Engines.EvaluateBool(ctx, engine, expression, expressions.RecordEnv(id, &rec.Data))
		if err != nil {
			return nil, withCase(err, id)
		}
		if ok {
			matched = append(matched, id)
		}
	}

	c.deps.Logger.DebugContext(ctx, "case filter evaluated",
		"engine", engine, "expression", expression, "matched", len(matched), "total", len(ids))
	return matched, nil
}

// Case returns the stored record of a case.
func (c *Catalog) Case(ctx context.Context, id string) (*store.CaseRecord, error) {
	return c.deps.Store.GetCase(logging.WithCaseID(ctx, id), id)
}

// Timeline builds the positioned timeline graph of a case. Unknown ids fail
// with NOT_FOUND before any layout work happens.
func (c *Catalog) Timeline(ctx context.Context, id string) (*schema.Graph, error) {
	ctx = logging.WithCaseID(ctx, id)
	rec, err := c.deps.Store.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	g := timeline.BuildWithLayout(&rec.Data, c.deps.Layout)
	c.deps.Logger.DebugContext(ctx, "timeline built", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// Project builds the timeline of a case and runs a jq program over it.
func (c *Catalog) Project(ctx context.Context, id, jq string) ([]any, error) {
	g, err := c.Timeline(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := c.jq.Project(ctx, jq, g)
	if err != nil {
		return nil, withCase(err, id)
	}
	return out, nil
}

// withCase tags a CaseGraphError with the case it concerns.
func withCase(err error, id string) error {
	var cgErr *schema.CaseGraphError
	if errors.As(err, &cgErr) && cgErr.CaseID == "" {
		return cgErr.WithCase(id)
	}
	return err
}
