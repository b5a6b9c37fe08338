package schema

// NodeKind classifies a timeline graph node.
type NodeKind string

const (
	NodeKindCaseInfo   NodeKind = "case-info"
	NodeKindDateHeader NodeKind = "date-header"
	NodeKindDecision   NodeKind = "decision"
)

// EdgeRole classifies a timeline graph edge.
type EdgeRole string

const (
	// EdgeRoleDateToDate connects consecutive valid date headers.
	EdgeRoleDateToDate EdgeRole = "date-to-date"
	// EdgeRoleColumnEntry enters a column from the previous column's last decision.
	EdgeRoleColumnEntry EdgeRole = "column-entry"
	// EdgeRoleVerticalChain links decisions inside the same column.
	EdgeRoleVerticalChain EdgeRole = "vertical-chain"
)

// Handle names used as visual hints for edge attachment points.
const (
	HandleLeft   = "left"
	HandleRight  = "right"
	HandleTop    = "top"
	HandleBottom = "bottom"
)

// Graph is the positioned node/edge output for one case.
type Graph struct {
	CaseID string `json:"case_id"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Position is a 2D point in layout units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single positioned graph node. Data holds the kind-specific payload
// and always matches Kind.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData is the sealed set of node payloads.
type NodeData interface {
	NodeKind() NodeKind
}

// CaseInfoData is the payload of the fixed case information node.
type CaseInfoData struct {
	CaseID       string `json:"case_id"`
	CustomerID   string `json:"customer_id"`
	Officer      string `json:"officer"`
	Created      string `json:"created"`
	Closed       string `json:"closed"`
	CreatedLabel string `json:"created_label"`
	ClosedLabel  string `json:"closed_label"`
}

// DateHeaderData is the payload of a date column header.
type DateHeaderData struct {
	RawDate string `json:"raw_date"`
	Label   string `json:"label"`
}

// DecisionCategory drives decision styling in renderers.
type DecisionCategory string

const (
	CategoryDefault       DecisionCategory = "default"
	CategoryPrevention    DecisionCategory = "prevention"
	CategoryRelief        DecisionCategory = "relief"
	CategoryAdvice        DecisionCategory = "advice"
	CategoryAccommodation DecisionCategory = "accommodation"
)

// DecisionData is the payload of a decision node.
type DecisionData struct {
	Step         string           `json:"step"`
	DecisionType string           `json:"decision_type"`
	Outcome      string           `json:"outcome"`
	MadeDate     string           `json:"made_date"`
	FlowchartBox string           `json:"flowchart_box"`
	Category     DecisionCategory `json:"category"`
}

func (*CaseInfoData) NodeKind() NodeKind   { return NodeKindCaseInfo }
func (*DateHeaderData) NodeKind() NodeKind { return NodeKindDateHeader }
func (*DecisionData) NodeKind() NodeKind   { return NodeKindDecision }

// Edge connects two nodes of the same Graph.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Role         EdgeRole `json:"role"`
	Label        string   `json:"label,omitempty"`
	SourceHandle string   `json:"source_handle,omitempty"`
	TargetHandle string   `json:"target_handle,omitempty"`
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodesOfKind returns the nodes of the given kind in emission order.
func (g *Graph) NodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOfRole returns the edges with the given role in emission order.
func (g *Graph) EdgesOfRole(role EdgeRole) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns all edges targeting the node ID.
func (g *Graph) IncomingEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}
