package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/casegraph/pkg/schema"
)

// ImageFormat selects the Graphviz output encoding.
type ImageFormat string

const (
	ImagePNG ImageFormat = "png"
	ImageSVG ImageFormat = "svg"
)

// layoutUnitsPerInch converts builder layout units to Graphviz inches.
const layoutUnitsPerInch = 100.0

// RenderImage renders a timeline graph with Graphviz. Nodes are pinned to the
// builder's positions and laid out with neato, so the picture keeps the
// column/row grid instead of a computed ranking.
func RenderImage(ctx context.Context, g *schema.Graph, format ImageFormat) ([]byte, error) {
	gvFormat, err := graphvizFormat(format)
	if err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.NEATO)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("diagram: create graph: %w", err)
	}
	defer graph.Close()

	if g.CaseID != "" {
		graph.SetLabel("Case " + g.CaseID)
	}

	gvNodes := make(map[string]*cgraph.Node, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		gvNode, nErr := graph.CreateNodeByName(node.ID)
		if nErr != nil {
			return nil, fmt.Errorf("diagram: create node %s: %w", node.ID, nErr)
		}
		gvNode.SetLabel(nodeLabel(node))
		// Graphviz y grows upwards.
		gvNode.SetPos(node.Position.X/layoutUnitsPerInch, -node.Position.Y/layoutUnitsPerInch)
		gvNode.SetPin(true)
		applyNodeStyle(gvNode, node)
		gvNodes[node.ID] = gvNode
	}

	for _, edge := range g.Edges {
		fromGV, toGV := gvNodes[edge.Source], gvNodes[edge.Target]
		if fromGV == nil || toGV == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName(edge.ID, fromGV, toGV)
		if eErr != nil {
			return nil, fmt.Errorf("diagram: create edge %s: %w", edge.ID, eErr)
		}
		if edge.Label != "" {
			e.SetLabel(edge.Label)
		}
		if edge.Role == schema.EdgeRoleVerticalChain {
			e.SetStyle(cgraph.DashedEdgeStyle)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, gvFormat, &buf); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeRender, "graphviz render %s failed", format).
			WithCase(g.CaseID).
			WithCause(err)
	}

	return buf.Bytes(), nil
}

func graphvizFormat(format ImageFormat) (graphviz.Format, error) {
	switch format {
	case ImagePNG, "":
		return graphviz.PNG, nil
	case ImageSVG:
		return graphviz.SVG, nil
	default:
		return "", schema.NewErrorf(schema.ErrCodeValidation, "unsupported image format %q", format)
	}
}

// applyNodeStyle sets graphviz attributes based on node kind and category.
func applyNodeStyle(gvNode *cgraph.Node, node *schema.Node) {
	switch node.Kind {
	case schema.NodeKindCaseInfo:
		gvNode.SetShape(cgraph.BoxShape)
	case schema.NodeKindDateHeader:
		gvNode.SetShape(cgraph.EllipseShape)
		gvNode.SetStyle(cgraph.FilledNodeStyle)
		gvNode.SetFillColor("#003f72")
		gvNode.SetFontColor("white")
	case schema.NodeKindDecision:
		gvNode.SetShape(cgraph.BoxShape)
		applyCategoryColor(gvNode, decisionCategory(node))
	}
}

// applyCategoryColor sets fill and border colors for a decision category.
func applyCategoryColor(gvNode *cgraph.Node, category schema.DecisionCategory) {
	gvNode.SetStyle(cgraph.FilledNodeStyle)
	switch category {
	case schema.CategoryPrevention:
		gvNode.SetFillColor("#403b65")
		gvNode.SetFontColor("white")
	case schema.CategoryRelief:
		gvNode.SetFillColor("#ec7a08")
		gvNode.SetFontColor("black")
	case schema.CategoryAdvice:
		gvNode.SetFillColor("white")
		gvNode.SetColor("#1e9d8b")
	case schema.CategoryAccommodation:
		gvNode.SetFillColor("white")
		gvNode.SetColor("#69be28")
	default:
		gvNode.SetFillColor("white")
		gvNode.SetColor("#cbd5e1")
	}
}
