package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Terminal palette.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
)

// styles is the set of styles one output stream is rendered with.
type styles struct {
	header   lipgloss.Style
	selected lipgloss.Style
	ok       lipgloss.Style
	warn     lipgloss.Style
	fail     lipgloss.Style
	dim      lipgloss.Style
}

// stylesFor colors output only for terminals, and never when NO_COLOR is set.
func stylesFor(w io.Writer) styles {
	plain := lipgloss.NewStyle()
	if !isTerminal(w) || os.Getenv("NO_COLOR") != "" {
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		header:   plain.Foreground(colorHeader).Bold(true),
		selected: plain.Foreground(colorGreen).Bold(true),
		ok:       plain.Foreground(colorGreen),
		warn:     plain.Foreground(colorYellow),
		fail:     plain.Foreground(colorRed),
		dim:      plain.Foreground(colorDim),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderTable renders an aligned table with a header separator line. Widths
// are measured with lipgloss so styled cells line up.
func renderTable(st styles, headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	const colGap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return st.header.Render(s) })
	for i, w := range widths {
		b.WriteString(st.dim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

// orDash renders empty values as a dash.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
