package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/casegraph/internal/streaming"
)

// CatalogNotificationMethod is the notification method catalog events are sent under.
const CatalogNotificationMethod = "notifications/casegraph/catalog"

// notificationSender is the slice of *server.MCPServer the notifier uses.
type notificationSender interface {
	SendNotificationToAllClients(method string, params map[string]any)
	SendNotificationToSpecificClient(sessionID string, method string, params map[string]any) error
}

// CatalogNotifier pushes catalog events to connected MCP clients. Case events
// go to the sessions watching that case; import events go to every client.
type CatalogNotifier struct {
	sender   notificationSender
	sessions *SessionRegistry
	logger   *slog.Logger
}

// NewCatalogNotifier creates a notifier that pushes via the MCP server.
func NewCatalogNotifier(mcpServer *server.MCPServer, sessions *SessionRegistry, logger *slog.Logger) *CatalogNotifier {
	return &CatalogNotifier{sender: mcpServer, sessions: sessions, logger: logger}
}

// Forward subscribes to hub and delivers events until ctx is cancelled.
func (n *CatalogNotifier) Forward(ctx context.Context, hub streaming.EventHub) error {
	ch, cancel, err := hub.Subscribe(ctx, streaming.EventFilter{})
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			n.Notify(event)
		}
	}
}

// Notify delivers one event. Best-effort: sessions that have gone away are
// forgotten rather than reported.
func (n *CatalogNotifier) Notify(event streaming.CatalogEvent) {
	payload := map[string]any{"event_type": event.Type}
	if event.CaseID != "" {
		payload["case_id"] = event.CaseID
	}
	if event.ImportID != "" {
		payload["import_id"] = event.ImportID
	}

	if event.CaseID == "" {
		n.sender.SendNotificationToAllClients(CatalogNotificationMethod, payload)
		return
	}

	for _, sessionID := range n.sessions.Watchers(event.CaseID) {
		err := n.sender.SendNotificationToSpecificClient(sessionID, CatalogNotificationMethod, payload)
		switch {
		case errors.Is(err, server.ErrSessionNotFound):
			n.sessions.Remove(sessionID)
		case err != nil:
			n.logger.Warn("catalog notification failed", "session_id", sessionID, "error", err)
		}
	}
}
