package expressions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rendis/casegraph/pkg/schema"
)

// Engine evaluates expressions against case data.
// Three implementations: CEL and Expr (case filters), GoJQ (filters and graph projection).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// Registry holds the available engines by name.
type Registry struct {
	engines map[string]Engine
}

// NewRegistry creates a Registry with the cel, expr and jq engines.
func NewRegistry() (*Registry, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return NewRegistryOf(celEngine, NewExprEngine(), NewGoJQEngine()), nil
}

// NewRegistryOf creates a Registry from the given engines.
func NewRegistryOf(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine, len(engines))}
	for _, e := range engines {
		r.engines[e.Name()] = e
	}
	return r
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	e, ok := r.engines[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"unknown expression engine %q; available: [%s]", name, strings.Join(r.Names(), ", "))
	}
	return e, nil
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvaluateBool runs expression on the named engine and requires a boolean result.
func (r *Registry) EvaluateBool(ctx context.Context, engine, expression string, data map[string]any) (bool, error) {
	e, err := r.Get(engine)
	if err != nil {
		return false, err
	}
	out, err := e.Evaluate(ctx, expression, data)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeExpression,
			"%s expression %q returned %s, want bool", e.Name(), expression, describe(out)).
			WithDetails(map[string]any{"expression": expression, "engine": e.Name()})
	}
	return b, nil
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// compileError and evalError build the errors shared by all engines.
func compileError(engine, expression string, err error) *schema.CaseGraphError {
	return schema.NewErrorf(schema.ErrCodeExpression,
		"%s compile error in %q: %s", engine, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression, "engine": engine})
}

func evalError(engine, expression string, err error) *schema.CaseGraphError {
	return schema.NewErrorf(schema.ErrCodeExpression,
		"%s evaluation failed for %q: %s", engine, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression, "engine": engine})
}

func emptyExpression(engine string) *schema.CaseGraphError {
	return schema.NewErrorf(schema.ErrCodeValidation, "empty %s expression", engine)
}
