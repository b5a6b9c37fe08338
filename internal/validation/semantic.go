package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rendis/casegraph/internal/timeline"
	"github.com/rendis/casegraph/pkg/schema"
)

// validateSemantic checks what JSON Schema cannot express. Every finding is a
// warning: the timeline builder tolerates all of them, but they usually point
// at a data-entry problem worth surfacing at import time.
func validateSemantic(doc schema.CasesFile) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	ids := doc.IDs()
	sort.Strings(ids)
	for _, id := range ids {
		data := doc[id]
		validateCaseSemantic(id, &data, result)
	}
	return result
}

// validateCaseSemantic checks a single case record keyed by id.
func validateCaseSemantic(id string, data *schema.CaseData, result *schema.ValidationResult) {
	info := data.CaseInformation

	switch {
	case info.CaseID == "":
		result.AddWarning(id, "/Case_information/Case_Id", "case id is empty")
	case info.CaseID != id:
		result.AddWarning(id, "/Case_information/Case_Id",
			fmt.Sprintf("case id %q differs from document key", info.CaseID))
	}

	created, createdOK := timeline.Normalize(info.DateCreated)
	closed, closedOK := timeline.Normalize(info.DateClosed)
	if info.DateCreated != "" && !createdOK {
		result.AddWarning(id, "/Case_information/Case_DateCreated",
			fmt.Sprintf("unrecognized date %q", info.DateCreated))
	}
	if createdOK && closedOK && closed.Before(created) {
		result.AddWarning(id, "/Case_information/Case_DateClosed", "case closed before it was created")
	}

	steps := make([]string, 0, len(info.DecisionTree))
	for step := range info.DecisionTree {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	for _, step := range steps {
		if strings.TrimSpace(step) == "" {
			result.AddWarning(id, "/Case_information/Decision_Tree/"+step,
				fmt.Sprintf("blank step key %q, the decision is shown without a step number", step))
		}
		made := info.DecisionTree[step].MadeDate
		if made == "" || made == timeline.SentinelNaT || made == timeline.SentinelUnknown {
			continue
		}
		if _, ok := timeline.Normalize(made); !ok {
			result.AddWarning(id, fmt.Sprintf("/Case_information/Decision_Tree/%s/Decision_DecisionMadeDate", step),
				fmt.Sprintf("unrecognized date %q, the decision gets a column without a header", made))
		}
	}
}
