package schema

// CasesFile is the on-disk cases document: case ID -> case record.
type CasesFile map[string]CaseData

// CaseData is the root of a single case record.
type CaseData struct {
	CaseInformation CaseInformation `json:"Case_information"`
}

// CaseInformation carries the case metadata and its decision tree.
// Optional fields decode to "" when missing or null.
type CaseInformation struct {
	CaseID       string              `json:"Case_Id"`
	CustomerID   string              `json:"CustomerId"`
	Officer      string              `json:"Case_AssignedTo$Officer$"`
	DateCreated  string              `json:"Case_DateCreated"`
	DateClosed   string              `json:"Case_DateClosed"`
	DecisionTree map[string]Decision `json:"Decision_Tree"`
}

// Decision is one step of the case process. Keys in DecisionTree are step
// identifiers such as "1", "2" or "13a".
type Decision struct {
	DecisionType string `json:"Decision_DecisionType"`
	Outcome      string `json:"Decision_DecisionOutcome"`
	MadeDate     string `json:"Decision_DecisionMadeDate"`
	FlowchartBox string `json:"Decision_DecisionFlowchartBox"`
}

// IDs returns the case IDs of the document in no particular order.
func (f CasesFile) IDs() []string {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	return ids
}
