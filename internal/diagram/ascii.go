package diagram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rendis/casegraph/pkg/schema"
)

// maxBoxText caps the content width of an ASCII box.
const maxBoxText = 36

// categoryTag returns a short ASCII indicator for a decision category.
func categoryTag(c schema.DecisionCategory) string {
	switch c {
	case schema.CategoryPrevention:
		return "[PREV]"
	case schema.CategoryRelief:
		return "[RELIEF]"
	case schema.CategoryAdvice:
		return "[ADVICE]"
	case schema.CategoryAccommodation:
		return "[ACCOM]"
	default:
		return ""
	}
}

// RenderASCII renders a timeline graph as a text diagram: a case summary,
// the day-diff chain between date headers, then one column of boxes per date.
func RenderASCII(g *schema.Graph) string {
	var b strings.Builder

	if info := caseInfo(g); info != nil {
		b.WriteString(fmt.Sprintf("=== Case %s ===\n", info.CaseID))
		b.WriteString(fmt.Sprintf("Customer: %s | Officer: %s | Created: %s | Closed: %s\n\n",
			orDash(info.CustomerID), orDash(info.Officer), orDash(info.CreatedLabel), orDash(info.ClosedLabel)))
	}

	cols := columnsOf(g)
	if len(cols) == 0 {
		b.WriteString("(no decisions)\n")
		return b.String()
	}

	renderDateChain(&b, g)

	// Box grid: one column per date, rows by stacking order.
	grid := make([][]asciiBox, len(cols))
	widths := make([]int, len(cols))
	rows := 0
	for i, col := range cols {
		for _, n := range col.Decisions {
			box := makeBox(n)
			grid[i] = append(grid[i], box)
			widths[i] = max(widths[i], box.width)
		}
		if col.Header != nil {
			widths[i] = max(widths[i], textWidth(nodeLabel(col.Header)))
		}
		rows = max(rows, len(col.Decisions))
	}

	// Header row.
	for i, col := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		label := ""
		if col.Header != nil {
			label = nodeLabel(col.Header)
		}
		b.WriteString(pad(label, widths[i]))
	}
	b.WriteString("\n")

	for r := 0; r < rows; r++ {
		boxes := make([]asciiBox, len(cols))
		for i := range cols {
			if r < len(grid[i]) {
				boxes[i] = grid[i][r].widen(widths[i])
			} else {
				boxes[i] = asciiBox{width: widths[i]}
			}
		}
		renderBoxRow(&b, boxes)
	}

	renderDecisionEdges(&b, g)
	return b.String()
}

// renderDateChain writes the date-to-date edges as one chain line.
func renderDateChain(b *strings.Builder, g *schema.Graph) {
	edges := g.EdgesOfRole(schema.EdgeRoleDateToDate)
	if len(edges) == 0 {
		return
	}
	for i, e := range edges {
		if i == 0 {
			b.WriteString(headerLabel(g, e.Source))
		}
		b.WriteString(fmt.Sprintf(" ──%s──▶ %s", e.Label, headerLabel(g, e.Target)))
	}
	b.WriteString("\n\n")
}

// renderDecisionEdges lists the decision-to-decision edges.
func renderDecisionEdges(b *strings.Builder, g *schema.Graph) {
	var lines []string
	for _, e := range g.Edges {
		switch e.Role {
		case schema.EdgeRoleColumnEntry:
			lines = append(lines, fmt.Sprintf("  %s ─→ %s", shortID(e.Source), shortID(e.Target)))
		case schema.EdgeRoleVerticalChain:
			lines = append(lines, fmt.Sprintf("  %s ↓ %s", shortID(e.Source), shortID(e.Target)))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\nflow:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}

func headerLabel(g *schema.Graph, id string) string {
	if n := g.Node(id); n != nil {
		return "[" + nodeLabel(n) + "]"
	}
	return id
}

// asciiBox holds the rendered lines of a single box.
type asciiBox struct {
	lines []string
	width int
}

// widen right-pads every line of the box to width.
func (a asciiBox) widen(width int) asciiBox {
	if width <= a.width {
		return a
	}
	lines := make([]string, len(a.lines))
	for i, l := range a.lines {
		lines[i] = pad(l, width)
	}
	return asciiBox{lines: lines, width: width}
}

// makeBox creates an ASCII box for a decision node.
func makeBox(node *schema.Node) asciiBox {
	var contentLines []string
	for _, line := range strings.Split(nodeLabel(node), "\n") {
		contentLines = append(contentLines, truncate(line, maxBoxText))
	}
	if tag := categoryTag(decisionCategory(node)); tag != "" {
		contentLines = append(contentLines, tag)
	}

	maxLen := 0
	for _, line := range contentLines {
		maxLen = max(maxLen, textWidth(line))
	}
	width := maxLen + 4 // 2 border + 2 padding

	var lines []string
	top := "┌" + strings.Repeat("─", width-2) + "┐"
	bot := "└" + strings.Repeat("─", width-2) + "┘"
	lines = append(lines, top)
	for _, content := range contentLines {
		lines = append(lines, "│ "+pad(content, maxLen)+" │")
	}
	lines = append(lines, bot)

	return asciiBox{lines: lines, width: width}
}

// renderBoxRow writes boxes side by side.
func renderBoxRow(b *strings.Builder, boxes []asciiBox) {
	if len(boxes) == 0 {
		return
	}

	maxHeight := 0
	for _, box := range boxes {
		maxHeight = max(maxHeight, len(box.lines))
	}

	for row := 0; row < maxHeight; row++ {
		var line strings.Builder
		for i, box := range boxes {
			if i > 0 {
				line.WriteString("  ") // gap between columns
			}
			if row < len(box.lines) {
				line.WriteString(box.lines[row])
			} else {
				line.WriteString(strings.Repeat(" ", box.width))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
}

// firstLine returns only the first line of a multi-line label.
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// shortID strips the decision- prefix from a node ID.
func shortID(id string) string {
	return strings.TrimPrefix(id, "decision-")
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s)
}

func pad(s string, width int) string {
	if n := textWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// truncate shortens s to limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if textWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}
