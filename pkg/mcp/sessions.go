package mcp

import (
	"slices"
	"sync"
)

// SessionRegistry maps MCP session IDs to the case each session last viewed.
// Populated automatically by the timeline and diagram tools.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]string // sessionID → caseID
}

// NewSessionRegistry creates a new empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]string)}
}

// Watch records that a session is looking at a case, replacing any earlier case.
func (r *SessionRegistry) Watch(sessionID, caseID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = caseID
}

// CaseFor returns the case a session is watching, if any.
func (r *SessionRegistry) CaseFor(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sessions[sessionID]
	return id, ok
}

// Watchers returns the sessions watching a case, sorted.
func (r *SessionRegistry) Watchers(caseID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for sid, cid := range r.sessions {
		if cid == caseID {
			out = append(out, sid)
		}
	}
	slices.Sort(out)
	return out
}

// Remove forgets a session. Called when a session disconnects.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
