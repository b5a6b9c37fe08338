package timeline

import (
	"strings"
	"time"

	"github.com/rendis/casegraph/pkg/schema"
)

// CaseInfoNodeID is the fixed ID of the case information node.
const CaseInfoNodeID = "case-info"

// DecisionNodeID returns the stable node ID of a decision step.
func DecisionNodeID(step string) string { return "decision-" + step }

// DateHeaderNodeID returns the node ID of a date column header.
func DateHeaderNodeID(key string) string { return "date-" + key }

// Build turns a case record into a positioned timeline graph using the
// default layout.
func Build(data *schema.CaseData) *schema.Graph {
	return BuildWithLayout(data, DefaultLayout())
}

// accumulator is the state threaded through the fold over buckets.
type accumulator struct {
	x              float64
	prevDecisionID string
	prevHeaderID   string
	prevHeaderDate time.Time
}

// BuildWithLayout turns a case record into a positioned timeline graph.
//
// Each bucket from Group becomes one column. A column gets a date header only
// when its key is a valid date; consecutive headers are joined by an edge
// labeled with the elapsed days. Every decision has exactly one incoming edge
// except the first decision of the graph.
func BuildWithLayout(data *schema.CaseData, layout Layout) *schema.Graph {
	if data == nil {
		data = &schema.CaseData{}
	}
	info := data.CaseInformation
	g := &schema.Graph{
		CaseID: info.CaseID,
		Nodes:  []schema.Node{caseInfoNode(info, layout)},
		Edges:  []schema.Edge{},
	}

	acc := accumulator{x: layout.ColumnGap}
	for _, bucket := range Group(info.DecisionTree) {
		acc = foldBucket(g, acc, bucket, layout)
	}
	return g
}

// foldBucket emits the header and decisions of one column and returns the
// accumulator for the next column.
func foldBucket(g *schema.Graph, acc accumulator, bucket Bucket, layout Layout) accumulator {
	if date, ok := Normalize(bucket.Key); ok {
		headerID := DateHeaderNodeID(bucket.Key)
		g.Nodes = append(g.Nodes, schema.Node{
			ID:       headerID,
			Kind:     schema.NodeKindDateHeader,
			Position: schema.Position{X: acc.x, Y: -layout.HeaderOffset},
			Data: &schema.DateHeaderData{
				RawDate: bucket.Key,
				Label:   date.Format(HeaderDateLayout),
			},
		})
		if acc.prevHeaderID != "" {
			g.Edges = append(g.Edges, schema.Edge{
				ID:           acc.prevHeaderID + "__to__" + headerID,
				Source:       acc.prevHeaderID,
				Target:       headerID,
				Role:         schema.EdgeRoleDateToDate,
				Label:        DayLabel(DaysBetween(acc.prevHeaderDate, date)),
				SourceHandle: schema.HandleRight,
				TargetHandle: schema.HandleLeft,
			})
		}
		acc.prevHeaderID = headerID
		acc.prevHeaderDate = date
	}

	prev := acc.prevDecisionID
	for idx, row := range bucket.Rows {
		nodeID := DecisionNodeID(row.Step)
		g.Nodes = append(g.Nodes, decisionNode(nodeID, row, acc.x, float64(idx)*layout.RowGap))

		switch {
		case idx > 0:
			g.Edges = append(g.Edges, decisionEdge(prev, nodeID, schema.EdgeRoleVerticalChain))
		case prev != "":
			g.Edges = append(g.Edges, decisionEdge(prev, nodeID, schema.EdgeRoleColumnEntry))
		}
		prev = nodeID
	}

	acc.prevDecisionID = prev
	acc.x += layout.ColumnGap
	return acc
}

func caseInfoNode(info schema.CaseInformation, layout Layout) schema.Node {
	return schema.Node{
		ID:       CaseInfoNodeID,
		Kind:     schema.NodeKindCaseInfo,
		Position: schema.Position{X: layout.CaseInfoOffsetX, Y: layout.CaseInfoOffsetY},
		Data: &schema.CaseInfoData{
			CaseID:       info.CaseID,
			CustomerID:   info.CustomerID,
			Officer:      info.Officer,
			Created:      info.DateCreated,
			Closed:       info.DateClosed,
			CreatedLabel: FormatDate(info.DateCreated),
			ClosedLabel:  FormatDate(info.DateClosed),
		},
	}
}

func decisionNode(id string, row Row, x, y float64) schema.Node {
	return schema.Node{
		ID:       id,
		Kind:     schema.NodeKindDecision,
		Position: schema.Position{X: x, Y: y},
		Data: &schema.DecisionData{
			Step:         row.Step,
			DecisionType: row.Decision.DecisionType,
			Outcome:      row.Decision.Outcome,
			MadeDate:     row.Decision.MadeDate,
			FlowchartBox: row.Decision.FlowchartBox,
			Category:     Categorize(row.Decision.DecisionType),
		},
	}
}

func decisionEdge(source, target string, role schema.EdgeRole) schema.Edge {
	e := schema.Edge{
		ID:     source + "-" + target,
		Source: source,
		Target: target,
		Role:   role,
	}
	if role == schema.EdgeRoleColumnEntry {
		e.SourceHandle, e.TargetHandle = schema.HandleRight, schema.HandleLeft
	} else {
		e.SourceHandle, e.TargetHandle = schema.HandleBottom, schema.HandleTop
	}
	return e
}

// Decision types with dedicated styling.
const (
	adviceType        = "No application taken, general advice provided"
	accommodationType = "s.195(8)(a)"
)

// Categorize maps a decision type to its display category.
func Categorize(decisionType string) schema.DecisionCategory {
	switch {
	case strings.EqualFold(decisionType, "prevention"):
		return schema.CategoryPrevention
	case strings.EqualFold(decisionType, "relief"):
		return schema.CategoryRelief
	case decisionType == adviceType:
		return schema.CategoryAdvice
	case strings.HasPrefix(decisionType, accommodationType):
		return schema.CategoryAccommodation
	default:
		return schema.CategoryDefault
	}
}
