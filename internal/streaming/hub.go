package streaming

import "context"

// Catalog event types.
const (
	EventImportStarted   = "import.started"
	EventImportCompleted = "import.completed"
	EventImportFailed    = "import.failed"
	EventCaseUpdated     = "case.updated"
	EventCaseDeleted     = "case.deleted"
)

// CatalogEvent announces a change to the case catalog. Renderers subscribe to
// reload the graph of the case they are showing.
type CatalogEvent struct {
	Type     string `json:"event_type"`
	CaseID   string `json:"case_id,omitempty"`
	ImportID string `json:"import_id,omitempty"`
	Payload  any    `json:"payload,omitempty"`
}

// EventFilter specifies which events a subscriber wants to receive.
// Import events carry no case ID and pass any CaseID filter.
type EventFilter struct {
	CaseID string   `json:"case_id,omitempty"`
	Types  []string `json:"event_types,omitempty"`
}

// EventHub provides pub/sub for catalog events.
type EventHub interface {
	Publish(ctx context.Context, event CatalogEvent) error
	Subscribe(ctx context.Context, filter EventFilter) (<-chan CatalogEvent, func(), error)
}
