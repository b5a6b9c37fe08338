package ingest

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rendis/casegraph/internal/validation"
	"github.com/rendis/casegraph/pkg/schema"
)

var defaultValidator = sync.OnceValues(validation.NewDocumentValidator)

// Decode reads a cases document from r, validates it and returns the decoded
// records. Semantic warnings do not fail the decode.
func Decode(r io.Reader) (schema.CasesFile, error) {
	doc, _, err := decodeWith(nil, r)
	return doc, err
}

// DecodeFile decodes the cases document stored at path.
func DecodeFile(path string) (schema.CasesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// decodeWith validates and decodes r with v, falling back to the shared
// validator when v is nil.
func decodeWith(v *validation.DocumentValidator, r io.Reader) (schema.CasesFile, *schema.ValidationResult, error) {
	if v == nil {
		var err error
		if v, err = defaultValidator(); err != nil {
			return nil, nil, err
		}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read cases document: %w", err)
	}

	doc, result := v.Validate(raw)
	if err := result.ToError(); err != nil {
		return nil, result, err
	}
	return doc, result, nil
}
