package validation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rendis/casegraph/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	caseSchemaURL  = "https://casegraph.dev/schemas/case.json"
	casesSchemaURL = "https://casegraph.dev/schemas/cases.json"
)

// caseSchemaJSON describes a single case record. Optional text fields may be
// null; unknown fields are tolerated.
const caseSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://casegraph.dev/schemas/case.json",
  "type": "object",
  "required": ["Case_information"],
  "properties": {
    "Case_information": {
      "type": "object",
      "properties": {
        "Case_Id": { "$ref": "#/$defs/text" },
        "CustomerId": { "$ref": "#/$defs/text" },
        "Case_AssignedTo$Officer$": { "$ref": "#/$defs/text" },
        "Case_DateCreated": { "$ref": "#/$defs/text" },
        "Case_DateClosed": { "$ref": "#/$defs/text" },
        "Decision_Tree": {
          "type": ["object", "null"],
          "additionalProperties": { "$ref": "#/$defs/decision" }
        }
      }
    }
  },
  "$defs": {
    "text": { "type": ["string", "null"] },
    "decision": {
      "type": "object",
      "properties": {
        "Decision_DecisionType": { "$ref": "#/$defs/text" },
        "Decision_DecisionOutcome": { "$ref": "#/$defs/text" },
        "Decision_DecisionMadeDate": { "$ref": "#/$defs/text" },
        "Decision_DecisionFlowchartBox": { "$ref": "#/$defs/text" }
      }
    }
  }
}`

// casesSchemaJSON describes a cases document: case id -> case record.
const casesSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://casegraph.dev/schemas/cases.json",
  "type": "object",
  "propertyNames": { "minLength": 1 },
  "additionalProperties": { "$ref": "case.json" }
}`

// JSONSchemaValidator implements Validator using JSON Schema Draft 2020-12.
// Compiled schemas are immutable, so it is safe for concurrent use.
type JSONSchemaValidator struct {
	caseSchema  *jsonschema.Schema
	casesSchema *jsonschema.Schema
}

// NewJSONSchemaValidator creates a JSONSchemaValidator with both schemas pre-compiled.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	for url, src := range map[string]string{
		caseSchemaURL:  caseSchemaJSON,
		casesSchemaURL: casesSchemaJSON,
	} {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", url, err)
		}
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", url, err)
		}
	}

	caseSchema, err := c.Compile(caseSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile case schema: %w", err)
	}
	casesSchema, err := c.Compile(casesSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile cases schema: %w", err)
	}

	return &JSONSchemaValidator{caseSchema: caseSchema, casesSchema: casesSchema}, nil
}

// ValidateCasesFile validates a raw cases document.
func (v *JSONSchemaValidator) ValidateCasesFile(raw []byte) error {
	return v.checkCasesFile(raw).ToError()
}

// ValidateCase validates a single raw case record.
func (v *JSONSchemaValidator) ValidateCase(raw []byte) error {
	result := &schema.ValidationResult{}
	doc, err := parseDocument(raw)
	if err != nil {
		result.AddError("", "/", err.Error())
		return result.ToError()
	}
	if err := v.caseSchema.Validate(doc); err != nil {
		addViolations(result, err, false)
	}
	return result.ToError()
}

// checkCasesFile runs the structural pass and reports every violation.
func (v *JSONSchemaValidator) checkCasesFile(raw []byte) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	doc, err := parseDocument(raw)
	if err != nil {
		result.AddError("", "/", err.Error())
		return result
	}
	if err := v.casesSchema.Validate(doc); err != nil {
		addViolations(result, err, true)
	}
	return result
}

// parseDocument decodes raw JSON into the value form the jsonschema library
// expects (json.Number for numbers).
func parseDocument(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc, nil
}

// addViolations walks a ValidationError tree and records its leaf messages.
// When keyed is set the first instance location segment is the case id.
func addViolations(result *schema.ValidationResult, err error, keyed bool) {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.AddError("", "/", err.Error())
		return
	}
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		caseID := ""
		if keyed && len(loc) > 0 {
			caseID, loc = loc[0], loc[1:]
		}
		result.AddError(caseID, "/"+strings.Join(loc, "/"), verr.Error())
		return
	}
	for _, cause := range verr.Causes {
		addViolations(result, cause, keyed)
	}
}
