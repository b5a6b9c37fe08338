package diagram

import (
	"fmt"
	"sort"

	"github.com/rendis/casegraph/pkg/schema"
)

// column is one date column of a timeline graph: an optional header and the
// decisions stacked below it, top to bottom.
type column struct {
	X         float64
	Header    *schema.Node
	Decisions []*schema.Node
}

// columnsOf groups header and decision nodes by their X position.
func columnsOf(g *schema.Graph) []*column {
	byX := make(map[float64]*column)
	var cols []*column
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Kind == schema.NodeKindCaseInfo {
			continue
		}
		col, ok := byX[n.Position.X]
		if !ok {
			col = &column{X: n.Position.X}
			byX[n.Position.X] = col
			cols = append(cols, col)
		}
		switch n.Kind {
		case schema.NodeKindDateHeader:
			col.Header = n
		case schema.NodeKindDecision:
			col.Decisions = append(col.Decisions, n)
		}
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].X < cols[j].X })
	for _, col := range cols {
		sort.SliceStable(col.Decisions, func(i, j int) bool {
			return col.Decisions[i].Position.Y < col.Decisions[j].Position.Y
		})
	}
	return cols
}

// caseInfo returns the case information payload, or nil when absent.
func caseInfo(g *schema.Graph) *schema.CaseInfoData {
	for _, n := range g.Nodes {
		if info, ok := n.Data.(*schema.CaseInfoData); ok {
			return info
		}
	}
	return nil
}

// nodeLabel creates a human-readable, possibly multi-line label for a node.
func nodeLabel(n *schema.Node) string {
	switch data := n.Data.(type) {
	case *schema.CaseInfoData:
		return fmt.Sprintf("Case %s\nCustomer: %s\nOfficer: %s", data.CaseID, data.CustomerID, data.Officer)
	case *schema.DateHeaderData:
		return data.Label
	case *schema.DecisionData:
		title := data.Step
		if data.DecisionType != "" {
			title = fmt.Sprintf("%s: %s", data.Step, data.DecisionType)
		}
		if data.Outcome == "" {
			return title
		}
		return title + "\n" + data.Outcome
	default:
		return n.ID
	}
}

// decisionCategory returns the category of a decision node, or "".
func decisionCategory(n *schema.Node) schema.DecisionCategory {
	if data, ok := n.Data.(*schema.DecisionData); ok {
		return data.Category
	}
	return ""
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
