package diagram

import (
	"github.com/rendis/casegraph/internal/timeline"
	"github.com/rendis/casegraph/pkg/schema"
)

// --- Test graph builders ---

func sampleCase() *schema.CaseData {
	return &schema.CaseData{
		CaseInformation: schema.CaseInformation{
			CaseID:      "C-1",
			CustomerID:  "CU-9",
			Officer:     "J. Doe",
			DateCreated: "2023-12-28 00:00:00",
			DecisionTree: map[string]schema.Decision{
				"1": {DecisionType: "Prevention", Outcome: "Yes", MadeDate: "2024-01-01 00:00:00"},
				"2": {DecisionType: "Relief", Outcome: "No", MadeDate: "2024-01-03 00:00:00"},
				"3": {Outcome: "Pending", MadeDate: "2024-01-03 00:00:00"},
				"4": {DecisionType: "Review", Outcome: "Open", MadeDate: "NaT"},
			},
		},
	}
}

func sampleGraph() *schema.Graph {
	return timeline.Build(sampleCase())
}

func emptyGraph() *schema.Graph {
	return timeline.Build(&schema.CaseData{CaseInformation: schema.CaseInformation{CaseID: "C-0"}})
}
