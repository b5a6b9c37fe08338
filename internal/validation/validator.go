package validation

// Validator checks cases documents before they reach the catalog.
// Uses JSON Schema Draft 2020-12 for the structural pass.
type Validator interface {
	// ValidateCasesFile checks a whole cases document (case id -> record).
	ValidateCasesFile(raw []byte) error
	// ValidateCase checks a single case record.
	ValidateCase(raw []byte) error
}

var (
	_ Validator = (*JSONSchemaValidator)(nil)
	_ Validator = (*DocumentValidator)(nil)
)
