package diagram

import (
	"fmt"
	"strings"

	"github.com/rendis/casegraph/pkg/schema"
)

// RenderMermaid renders a timeline graph as a left-to-right Mermaid flowchart.
func RenderMermaid(g *schema.Graph) string {
	var b strings.Builder

	b.WriteString("graph LR\n")

	if g.CaseID != "" {
		b.WriteString(fmt.Sprintf("    %%%% Case %s\n", g.CaseID))
	}

	ids := uniqueMermaidIDs(g.Nodes, func(n *schema.Node) string { return mermaidSafeID(n.ID) })
	resolve := func(id string) string {
		if m, ok := ids[id]; ok {
			return m
		}
		return mermaidSafeID(id)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(n, ids[n.ID])))
	}

	for _, edge := range g.Edges {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidEdgeDef(edge, resolve(edge.Source), resolve(edge.Target))))
	}

	// Category class definitions.
	b.WriteString("\n")
	b.WriteString("    classDef caseinfo fill:#ffffff,stroke:#e5e7eb,color:#111827\n")
	b.WriteString("    classDef header fill:#003f72,stroke:#022d51,color:#fff\n")
	b.WriteString("    classDef prevention fill:#403b65,stroke:#2d294b,color:#fff\n")
	b.WriteString("    classDef relief fill:#ec7a08,stroke:#b35c06,color:#000\n")
	b.WriteString("    classDef advice fill:#fff,stroke:#1e9d8b,color:#000\n")
	b.WriteString("    classDef accommodation fill:#fff,stroke:#69be28,color:#000\n")

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if cls := mermaidClass(n); cls != "" {
			b.WriteString(fmt.Sprintf("    class %s %s\n", ids[n.ID], cls))
		}
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the shape of its kind.
func mermaidNodeDef(n *schema.Node, id string) string {
	label := mermaidEscapeLabel(nodeLabel(n))

	switch n.Kind {
	case schema.NodeKindCaseInfo:
		return fmt.Sprintf("%s[/\"%s\"/]", id, label)
	case schema.NodeKindDateHeader:
		return fmt.Sprintf("%s([\"%s\"])", id, label)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, label)
	}
}

// mermaidEdgeDef returns a Mermaid edge; vertical chains are dotted.
func mermaidEdgeDef(e schema.Edge, from, to string) string {
	switch {
	case e.Label != "":
		return fmt.Sprintf("%s -->|%s| %s", from, mermaidEscapeLabel(e.Label), to)
	case e.Role == schema.EdgeRoleVerticalChain:
		return fmt.Sprintf("%s -.-> %s", from, to)
	default:
		return fmt.Sprintf("%s --> %s", from, to)
	}
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_", ":", "_", "/", "_", "(", "_", ")", "_")
	return r.Replace(id)
}

// uniqueMermaidIDs maps every node ID to the identifier produced by safe.
// When two nodes produce the same identifier the later one gets a numeric
// suffix, so distinct nodes never merge in the rendered diagram.
func uniqueMermaidIDs(nodes []schema.Node, safe func(*schema.Node) string) map[string]string {
	ids := make(map[string]string, len(nodes))
	used := make(map[string]bool, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if _, ok := ids[n.ID]; ok {
			continue
		}
		base := safe(n)
		id := base
		for k := 2; used[id]; k++ {
			id = fmt.Sprintf("%s_%d", base, k)
		}
		used[id] = true
		ids[n.ID] = id
	}
	return ids
}

// mermaidEscapeLabel escapes quotes and turns newlines into line breaks.
func mermaidEscapeLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, "\n", "<br/>")
}

// mermaidClass maps a node to its Mermaid class name.
func mermaidClass(n *schema.Node) string {
	switch n.Kind {
	case schema.NodeKindCaseInfo:
		return "caseinfo"
	case schema.NodeKindDateHeader:
		return "header"
	}
	switch decisionCategory(n) {
	case schema.CategoryPrevention:
		return "prevention"
	case schema.CategoryRelief:
		return "relief"
	case schema.CategoryAdvice:
		return "advice"
	case schema.CategoryAccommodation:
		return "accommodation"
	default:
		return ""
	}
}
