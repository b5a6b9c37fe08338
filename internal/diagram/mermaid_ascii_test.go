package diagram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rendis/casegraph/internal/timeline"
	"github.com/rendis/casegraph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMermaidForCLI(t *testing.T) {
	result := RenderMermaidForCLI(sampleGraph())

	assert.Contains(t, result, "graph LR")
	assert.Contains(t, result, "01-Jan-2024 -->|2 days| 03-Jan-2024")
	assert.Contains(t, result, "1-Prevention-PREV --> 2-Relief-RELIEF")
	assert.Contains(t, result, "2-Relief-RELIEF --> 3")
	assert.Contains(t, result, "3 --> 4-Review")
	// Must NOT contain node declarations with ["..."] syntax.
	assert.NotContains(t, result, "[\"")
	assert.NotContains(t, result, "classDef")
}

func TestRenderMermaidForCLISingleDecision(t *testing.T) {
	g := timeline.Build(&schema.CaseData{CaseInformation: schema.CaseInformation{
		CaseID: "C-2",
		DecisionTree: map[string]schema.Decision{
			"1": {DecisionType: "Prevention", MadeDate: "2024-01-01"},
		},
	}})

	result := RenderMermaidForCLI(g)
	assert.Equal(t, "graph LR\n    1-Prevention-PREV\n", result)
}

func TestRenderASCIIAutoFallback(t *testing.T) {
	g := sampleGraph()

	// Empty bin dir: hand-rolled renderer.
	assert.Equal(t, RenderASCII(g), RenderASCIIAuto(g, ""))

	// Bin dir without the binary: hand-rolled renderer.
	assert.Equal(t, RenderASCII(g), RenderASCIIAuto(g, t.TempDir()))
}

func TestRenderASCIIAutoFailingBinaryFallsBack(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "mermaid-ascii")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 3\n"), 0o755))

	g := sampleGraph()
	assert.Equal(t, RenderASCII(g), RenderASCIIAuto(g, dir))
}

func TestRenderASCIIViaCLI(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "mermaid-ascii")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\ncat\n"), 0o755))

	g := sampleGraph()
	out, err := RenderASCIIViaCLI(g, bin)
	require.NoError(t, err)
	assert.Equal(t, RenderMermaidForCLI(g), out)
}
