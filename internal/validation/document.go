package validation

import (
	"encoding/json"

	"github.com/rendis/casegraph/pkg/schema"
)

// DocumentValidator runs the two-stage validation pipeline over a cases document:
// 1. Structural (JSON Schema)
// 2. Semantic (id agreement, recognizable dates)
type DocumentValidator struct {
	jsonSchema *JSONSchemaValidator
}

// NewDocumentValidator creates a DocumentValidator.
func NewDocumentValidator() (*DocumentValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &DocumentValidator{jsonSchema: jsv}, nil
}

// Validate checks raw and decodes it. Structural errors short-circuit: the
// returned document is nil and the semantic stage is skipped.
func (dv *DocumentValidator) Validate(raw []byte) (schema.CasesFile, *schema.ValidationResult) {
	result := dv.jsonSchema.checkCasesFile(raw)
	if !result.Valid() {
		return nil, result
	}

	var doc schema.CasesFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.AddError("", "/", err.Error())
		return nil, result
	}

	result.Merge(validateSemantic(doc))
	return doc, result
}

// ValidateCasesFile satisfies the Validator interface.
func (dv *DocumentValidator) ValidateCasesFile(raw []byte) error {
	_, result := dv.Validate(raw)
	return result.ToError()
}

// ValidateCase delegates to the underlying JSONSchemaValidator.
func (dv *DocumentValidator) ValidateCase(raw []byte) error {
	return dv.jsonSchema.ValidateCase(raw)
}
