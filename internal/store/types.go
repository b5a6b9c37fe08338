package store

import (
	"time"

	"github.com/rendis/casegraph/pkg/schema"
)

// CaseRecord is a stored case keyed by its catalog ID (the cases document key).
type CaseRecord struct {
	ID        string          `json:"id"`
	Data      schema.CaseData `json:"data"`
	ImportID  string          `json:"import_id,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Summary projects the record onto its list view.
func (r *CaseRecord) Summary() *CaseSummary {
	info := r.Data.CaseInformation
	return &CaseSummary{
		ID:            r.ID,
		CaseID:        info.CaseID,
		CustomerID:    info.CustomerID,
		Officer:       info.Officer,
		DateCreated:   info.DateCreated,
		DateClosed:    info.DateClosed,
		DecisionCount: len(info.DecisionTree),
		UpdatedAt:     r.UpdatedAt,
	}
}

// CaseSummary is the list view of a stored case.
type CaseSummary struct {
	ID            string    `json:"id"`
	CaseID        string    `json:"case_id"`
	CustomerID    string    `json:"customer_id"`
	Officer       string    `json:"officer"`
	DateCreated   string    `json:"date_created"`
	DateClosed    string    `json:"date_closed,omitempty"`
	DecisionCount int       `json:"decision_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CaseFilter narrows ListCases. Zero values match everything. Results are
// ordered by catalog ID.
type CaseFilter struct {
	Officer    string
	CustomerID string
	// OpenOnly keeps cases without a closing date.
	OpenOnly bool
	Limit    int
	Offset   int
}

func (f CaseFilter) matches(s *CaseSummary) bool {
	if f.Officer != "" && f.Officer != s.Officer {
		return false
	}
	if f.CustomerID != "" && f.CustomerID != s.CustomerID {
		return false
	}
	if f.OpenOnly && s.DateClosed != "" {
		return false
	}
	return true
}

// ImportStatus is the lifecycle state of an import run.
type ImportStatus string

const (
	ImportRunning   ImportStatus = "running"
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
)

// ImportRun records one load of a cases document into the catalog.
type ImportRun struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	Status      ImportStatus `json:"status"`
	CaseCount   int          `json:"case_count"`
	Error       string       `json:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
