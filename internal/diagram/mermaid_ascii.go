package diagram

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rendis/casegraph/pkg/schema"
)

// RenderASCIIAuto tries to render using the mermaid-ascii CLI binary if available,
// falling back to the hand-rolled RenderASCII renderer.
func RenderASCIIAuto(g *schema.Graph, binDir string) string {
	if binDir != "" {
		binPath := filepath.Join(binDir, "mermaid-ascii")
		if _, err := os.Stat(binPath); err == nil {
			result, err := RenderASCIIViaCLI(g, binPath)
			if err == nil {
				return result
			}
		}
	}
	return RenderASCII(g)
}

// RenderASCIIViaCLI pipes simplified Mermaid syntax through the mermaid-ascii binary.
func RenderASCIIViaCLI(g *schema.Graph, binPath string) (string, error) {
	mermaid := RenderMermaidForCLI(g)

	cmd := exec.Command(binPath)
	cmd.Stdin = strings.NewReader(mermaid)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("mermaid-ascii: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// RenderMermaidForCLI generates simplified Mermaid syntax compatible with the
// mermaid-ascii CLI tool. mermaid-ascii cannot parse ["label"] declarations,
// so the display text is embedded in the node IDs referenced by edges.
// The case information node has no edges and is left out.
func RenderMermaidForCLI(g *schema.Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	displayID := uniqueMermaidIDs(g.Nodes, cliNodeID)

	resolve := func(id string) string {
		if d, ok := displayID[id]; ok {
			return d
		}
		return mermaidSafeID(id)
	}

	for _, edge := range g.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n", resolve(edge.Source), label, resolve(edge.Target)))
	}

	// Isolated decisions (a single-decision graph) still need to show up.
	if len(g.Edges) == 0 {
		for i := range g.Nodes {
			if g.Nodes[i].Kind == schema.NodeKindDecision {
				b.WriteString(fmt.Sprintf("    %s\n", displayID[g.Nodes[i].ID]))
			}
		}
	}

	return b.String()
}

// cliNodeID builds a display ID for the mermaid-ascii CLI.
func cliNodeID(n *schema.Node) string {
	id := firstLine(nodeLabel(n))
	if n.Kind == schema.NodeKindDecision {
		if tag := cliCategoryTag(decisionCategory(n)); tag != "" {
			id += "-" + tag
		}
	}
	id = truncate(id, maxBoxText)

	// Spaces and separators are not valid in Mermaid IDs.
	id = strings.NewReplacer(" ", "-", ":", "", "|", "", "(", "", ")", "").Replace(id)
	return id
}

// cliCategoryTag returns a compact category indicator for node IDs.
func cliCategoryTag(c schema.DecisionCategory) string {
	switch c {
	case schema.CategoryPrevention:
		return "PREV"
	case schema.CategoryRelief:
		return "RELIEF"
	case schema.CategoryAdvice:
		return "ADVICE"
	case schema.CategoryAccommodation:
		return "ACCOM"
	default:
		return ""
	}
}
