package mcp

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/casegraph/internal/streaming"
)

type sentNotification struct {
	sessionID string // empty for broadcasts
	params    map[string]any
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentNotification
	gone map[string]bool
}

func (f *fakeSender) SendNotificationToAllClients(_ string, params map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{params: params})
}

func (f *fakeSender) SendNotificationToSpecificClient(sessionID string, _ string, params map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gone[sessionID] {
		return server.ErrSessionNotFound
	}
	f.sent = append(f.sent, sentNotification{sessionID: sessionID, params: params})
	return nil
}

func (f *fakeSender) notifications() []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentNotification(nil), f.sent...)
}

func newTestNotifier() (*CatalogNotifier, *fakeSender, *SessionRegistry) {
	sender := &fakeSender{gone: map[string]bool{}}
	sessions := NewSessionRegistry()
	n := &CatalogNotifier{
		sender:   sender,
		sessions: sessions,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return n, sender, sessions
}

func TestNotify_ImportEventsBroadcast(t *testing.T) {
	n, sender, _ := newTestNotifier()

	n.Notify(streaming.CatalogEvent{Type: streaming.EventImportCompleted, ImportID: "imp-1"})

	sent := sender.notifications()
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].sessionID)
	assert.Equal(t, map[string]any{"event_type": "import.completed", "import_id": "imp-1"}, sent[0].params)
}

func TestNotify_CaseEventsReachWatchers(t *testing.T) {
	n, sender, sessions := newTestNotifier()
	sessions.Watch("s1", "C-1")
	sessions.Watch("s2", "C-2")

	n.Notify(streaming.CatalogEvent{Type: streaming.EventCaseUpdated, CaseID: "C-1", ImportID: "imp-1"})

	sent := sender.notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, "s1", sent[0].sessionID)
	assert.Equal(t, "C-1", sent[0].params["case_id"])
}

func TestNotify_ForgetsGoneSessions(t *testing.T) {
	n, sender, sessions := newTestNotifier()
	sessions.Watch("s1", "C-1")
	sender.gone["s1"] = true

	n.Notify(streaming.CatalogEvent{Type: streaming.EventCaseDeleted, CaseID: "C-1"})

	assert.Empty(t, sender.notifications())
	_, ok := sessions.CaseFor("s1")
	assert.False(t, ok)
}

func TestForward(t *testing.T) {
	n, sender, _ := newTestNotifier()
	hub := streaming.NewMemoryHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Forward(ctx, hub) }()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(ctx, streaming.CatalogEvent{Type: streaming.EventImportStarted, ImportID: "imp-9"}))

	require.Eventually(t, func() bool { return len(sender.notifications()) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not return after cancel")
	}
}
