package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStylesFor_NonTerminalIsPlain(t *testing.T) {
	st := stylesFor(&bytes.Buffer{})
	assert.Equal(t, "C-1", st.selected.Render("C-1"))
	assert.Equal(t, "x", st.header.Render("x"))
}

func TestRenderTable(t *testing.T) {
	out := renderTable(stylesFor(&bytes.Buffer{}),
		[]string{"CASE", "OFFICER"},
		[][]string{{"C-1", "alice"}, {"C-100", "b"}},
	)
	assert.Equal(t, "CASE   OFFICER\n─────  ───────\nC-1    alice\nC-100  b\n", out)
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, renderTable(styles{}, nil, nil))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "x", orDash("x"))
}
