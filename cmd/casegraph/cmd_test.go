package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/casegraph/pkg/schema"
)

const fixture = "testdata/cases.json"

// executeCmd runs the root command and returns what it wrote to stdout.
// Logs go to a separate buffer.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(newApp())
	var out, logs bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestListCmd(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "list", "--file", fixture)
	require.NoError(t, err)
	assert.Equal(t, "* C-100\n  C-200\n", out)

	out, err = executeCmd(t, "list", "--file", fixture, "-q", "100", "--selected", "C-200")
	require.NoError(t, err)
	assert.Equal(t, "* C-200\n  C-100\n", out)
}

func TestListCmd_Template(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "list", "--file", fixture, "--template", "${{record.id}} ${{record.officer}} ${{record.decision_count}}")
	require.NoError(t, err)
	assert.Equal(t, "C-100 A. Officer 2\nC-200 B. Officer 1\n", out)

	_, err = executeCmd(t, "list", "--file", fixture, "--template", "${{record.nope}}")
	assert.Error(t, err)
}

func TestListCmd_Long(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "list", "--file", fixture, "--long")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "OFFICER")
	assert.Contains(t, lines[2], "C-100")
	assert.Contains(t, lines[2], "A. Officer")
	assert.Contains(t, lines[3], "2024-03-01 00:00:00")
}

func TestFilterCmd(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "filter", "--file", fixture, "--expr", "record.open")
	require.NoError(t, err)
	assert.Equal(t, "C-100\n", out)

	out, err = executeCmd(t, "filter", "--file", fixture, "-e", "expr", "--expr", `record.officer startsWith "B."`)
	require.NoError(t, err)
	assert.Equal(t, "C-200\n", out)

	_, err = executeCmd(t, "filter", "--file", fixture)
	assert.Error(t, err, "--expr is required")

	_, err = executeCmd(t, "filter", "--file", fixture, "--expr", "record.officer")
	assert.Equal(t, schema.ErrCodeExpression, schema.CodeOf(err))
}

func TestGraphCmd(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "graph", "--file", fixture, "C-100", "--jq", "[.nodes[].id]")
	require.NoError(t, err)
	assert.Contains(t, out, `"case-info"`)
	assert.Contains(t, out, `"decision-2"`)

	out, err = executeCmd(t, "graph", "--file", fixture, "C-200")
	require.NoError(t, err)
	assert.Contains(t, out, `"case_id": "C-200"`)

	_, err = executeCmd(t, "graph", "--file", fixture, "missing")
	assert.True(t, schema.IsNotFound(err))
}

func TestRenderCmd(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "render", "--file", fixture, "C-100", "--format", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR"))

	out, err = executeCmd(t, "render", "--file", fixture, "C-100")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Case C-100 ===")

	path := filepath.Join(t.TempDir(), "c100.svg")
	out, err = executeCmd(t, "render", "--file", fixture, "C-100", "--format", "svg", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	_, err = executeCmd(t, "render", "--file", fixture, "C-100", "--format", "gif")
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))
}

func TestImportCmd(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "import", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 cases from "+fixture)

	out, err = executeCmd(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "* C-100\n  C-200\n", out)

	out, err = executeCmd(t, "imports")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, fixture)
}

func TestImportCmd_Invalid(t *testing.T) {
	home := newTestHome(t)
	bad := filepath.Join(home, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"C-1": {"Case_information": 5}}`), 0o644))

	_, err := executeCmd(t, "import", bad)
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))

	out, err := executeCmd(t, "imports")
	require.NoError(t, err)
	assert.Contains(t, out, "failed")
}

func TestImportsCmd_Empty(t *testing.T) {
	newTestHome(t)

	out, err := executeCmd(t, "imports")
	require.NoError(t, err)
	assert.Equal(t, "no imports yet\n", out)
}

func TestBadLogLevelFlag(t *testing.T) {
	newTestHome(t)

	_, err := executeCmd(t, "list", "--file", fixture, "--log-level", "loud")
	assert.Error(t, err)
}
