package store

import "context"

// Store defines the case catalog persistence contract.
// All implementations must be safe for concurrent use.
type Store interface {
	// Cases
	PutCase(ctx context.Context, rec *CaseRecord) error
	GetCase(ctx context.Context, id string) (*CaseRecord, error)
	ListCases(ctx context.Context, filter CaseFilter) ([]*CaseSummary, error)
	ListCaseIDs(ctx context.Context) ([]string, error)
	DeleteCase(ctx context.Context, id string) error

	// Import runs
	CreateImport(ctx context.Context, run *ImportRun) error
	CompleteImport(ctx context.Context, id string, caseCount int, importErr error) error
	ListImports(ctx context.Context, limit int) ([]*ImportRun, error)

	// Maintenance
	Migrate(ctx context.Context) error

	// Lifecycle
	Close() error
}
