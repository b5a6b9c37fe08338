package expressions

import (
	"github.com/rendis/casegraph/internal/timeline"
	"github.com/rendis/casegraph/pkg/schema"
)

// RecordVar is the variable name case filters see the case under.
const RecordVar = "record"

// RecordEnv builds the case filter environment for the case stored under id:
//
//	{"record": {id, case_id, customer_id, officer, created, closed, open,
//	            decision_count, decisions: [{step, type, outcome, date, box, category}]}}
//
// Decisions are listed in timeline order. Numbers are int64 so CEL sees ints.
func RecordEnv(id string, data *schema.CaseData) map[string]any {
	if data == nil {
		data = &schema.CaseData{}
	}
	info := data.CaseInformation

	decisions := make([]any, 0, len(info.DecisionTree))
	for _, bucket := range timeline.Group(info.DecisionTree) {
		for _, row := range bucket.Rows {
			decisions = append(decisions, map[string]any{
				"step":     row.Step,
				"type":     row.Decision.DecisionType,
				"outcome":  row.Decision.Outcome,
				"date":     row.Decision.MadeDate,
				"box":      row.Decision.FlowchartBox,
				"category": string(timeline.Categorize(row.Decision.DecisionType)),
			})
		}
	}

	return map[string]any{
		RecordVar: map[string]any{
			"id":             id,
			"case_id":        info.CaseID,
			"customer_id":    info.CustomerID,
			"officer":        info.Officer,
			"created":        info.DateCreated,
			"closed":         info.DateClosed,
			"open":           info.DateClosed == "",
			"decision_count": int64(len(info.DecisionTree)),
			"decisions":      decisions,
		},
	}
}
