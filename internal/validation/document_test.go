package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentValidator_Valid(t *testing.T) {
	dv, err := NewDocumentValidator()
	require.NoError(t, err)

	doc, result := dv.Validate([]byte(validCases))
	require.True(t, result.Valid())
	require.Len(t, doc, 2)
	assert.Equal(t, "Prevention", doc["C-1"].CaseInformation.DecisionTree["1"].DecisionType)
	assert.Equal(t, "", doc["C-1"].CaseInformation.DateClosed)
	assert.Empty(t, doc["C-2"].CaseInformation.DecisionTree)
	assert.Empty(t, result.Warnings)
}

func TestDocumentValidator_StructuralShortCircuits(t *testing.T) {
	dv, err := NewDocumentValidator()
	require.NoError(t, err)

	doc, result := dv.Validate([]byte(`{"C-1": {"Case_information": {"Case_Id": 1}}}`))
	assert.Nil(t, doc)
	assert.False(t, result.Valid())
	assert.Empty(t, result.Warnings)

	validationError(t, dv.ValidateCasesFile([]byte(`{"C-1": 3}`)))
}

func TestDocumentValidator_WarningsDoNotFail(t *testing.T) {
	dv, err := NewDocumentValidator()
	require.NoError(t, err)

	raw := []byte(`{"K": {"Case_information": {"Case_Id": "other"}}}`)
	doc, result := dv.Validate(raw)
	require.NotNil(t, doc)
	assert.True(t, result.Valid())
	assert.Len(t, result.Warnings, 1)
	assert.NoError(t, dv.ValidateCasesFile(raw))
}

func TestDocumentValidator_EmptyStepKeyIsWarning(t *testing.T) {
	dv, err := NewDocumentValidator()
	require.NoError(t, err)

	raw := []byte(`{"C-1": {"Case_information": {"Case_Id": "C-1", "Decision_Tree": {"": {"Decision_DecisionMadeDate": "2024-01-02"}}}}}`)
	doc, result := dv.Validate(raw)
	require.NotNil(t, doc)
	assert.True(t, result.Valid())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, doc["C-1"].CaseInformation.DecisionTree, "")
}

func TestDocumentValidator_ValidateCase(t *testing.T) {
	dv, err := NewDocumentValidator()
	require.NoError(t, err)

	assert.NoError(t, dv.ValidateCase([]byte(`{"Case_information": {}}`)))
	validationError(t, dv.ValidateCase([]byte(`{}`)))
}
