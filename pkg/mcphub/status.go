package mcphub

import (
	"sync"
	"time"
)

// ServerState is the availability state of one managed server.
type ServerState string

const (
	StateDisabled  ServerState = "disabled"
	StateConnected ServerState = "connected"
	StateFailed    ServerState = "failed"
	StateNeedsAuth ServerState = "needs_auth"
)

// ServerStatus is the tracked availability record for one server. It is
// owned exclusively by the StatusTracker and mutated only as a side effect
// of a discovery attempt.
type ServerStatus struct {
	State     ServerState `json:"state"`
	UpdatedAt time.Time   `json:"updated_at"`
	Error     string      `json:"error,omitempty"`
	AuthURL   string      `json:"auth_url,omitempty"`
}

// StatusTracker keeps the per-server availability state machine. It is safe
// for concurrent use.
type StatusTracker struct {
	mu       sync.Mutex
	statuses map[string]ServerStatus
	now      func() time.Time
}

// NewStatusTracker seeds the tracker from the configured servers: disabled
// ones start in StateDisabled, the rest are unknown until the first
// discovery attempt.
func NewStatusTracker(configs []ServerConfig) *StatusTracker {
	t := &StatusTracker{
		statuses: make(map[string]ServerStatus, len(configs)),
		now:      time.Now,
	}
	for _, cfg := range configs {
		if !cfg.base().Enabled {
			t.MarkDisabled(cfg.base().ID)
		}
	}
	return t
}

// MarkDisabled records that the server was seen disabled.
func (t *StatusTracker) MarkDisabled(serverID string) {
	t.set(serverID, ServerStatus{State: StateDisabled})
}

// MarkConnected records a successful discovery attempt.
func (t *StatusTracker) MarkConnected(serverID string) {
	t.set(serverID, ServerStatus{State: StateConnected})
}

// MarkFailed records a failed discovery attempt with its diagnostic text.
func (t *StatusTracker) MarkFailed(serverID, message string) {
	t.set(serverID, ServerStatus{State: StateFailed, Error: message})
}

// MarkNeedsAuth records an authorization-required outcome, capturing the
// redirect URL for an external flow to consume.
func (t *StatusTracker) MarkNeedsAuth(serverID, authURL, message string) {
	t.set(serverID, ServerStatus{State: StateNeedsAuth, AuthURL: authURL, Error: message})
}

// Get returns the current status for one server.
func (t *StatusTracker) Get(serverID string) (ServerStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.statuses[serverID]
	return status, ok
}

// Snapshot returns a caller-safe copy of all current statuses.
func (t *StatusTracker) Snapshot() map[string]ServerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := make(map[string]ServerStatus, len(t.statuses))
	for id, status := range t.statuses {
		snapshot[id] = status
	}
	return snapshot
}

func (t *StatusTracker) set(serverID string, status ServerStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status.UpdatedAt = t.now()
	t.statuses[serverID] = status
}
