package expressions

import "github.com/rendis/casegraph/pkg/schema"

func sampleCase() *schema.CaseData {
	return &schema.CaseData{CaseInformation: schema.CaseInformation{
		CaseID:      "C-1",
		CustomerID:  "CU-9",
		Officer:     "alice",
		DateCreated: "2023-12-28 00:00:00",
		DecisionTree: map[string]schema.Decision{
			"3": {Outcome: "Pending", MadeDate: "2024-01-03 00:00:00"},
			"2": {DecisionType: "Relief", Outcome: "No", MadeDate: "2024-01-03 00:00:00"},
			"1": {DecisionType: "Prevention", Outcome: "Yes", MadeDate: "2024-01-01 00:00:00"},
		},
	}}
}

func sampleEnv() map[string]any {
	return RecordEnv("C-1", sampleCase())
}
