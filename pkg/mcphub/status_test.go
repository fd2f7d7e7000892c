package mcphub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTrackerSeedsDisabledServers(t *testing.T) {
	t.Parallel()

	configs := []ServerConfig{
		&HTTPServerConfig{BaseServerConfig: BaseServerConfig{ID: "on", Enabled: true}, Endpoint: "https://on.example"},
		&HTTPServerConfig{BaseServerConfig: BaseServerConfig{ID: "off", Enabled: false}, Endpoint: "https://off.example"},
	}
	tracker := NewStatusTracker(configs)

	status, ok := tracker.Get("off")
	require.True(t, ok)
	assert.Equal(t, StateDisabled, status.State)
	assert.False(t, status.UpdatedAt.IsZero())

	_, ok = tracker.Get("on")
	assert.False(t, ok, "enabled servers stay unknown until a discovery attempt")
}

func TestStatusTrackerTransitions(t *testing.T) {
	t.Parallel()

	tracker := NewStatusTracker(nil)

	tracker.MarkConnected("a")
	status, _ := tracker.Get("a")
	assert.Equal(t, StateConnected, status.State)
	assert.Empty(t, status.Error)

	tracker.MarkFailed("a", "connection refused")
	status, _ = tracker.Get("a")
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "connection refused", status.Error)

	tracker.MarkNeedsAuth("a", "https://auth.example/x", "403 from server")
	status, _ = tracker.Get("a")
	assert.Equal(t, StateNeedsAuth, status.State)
	assert.Equal(t, "https://auth.example/x", status.AuthURL)

	tracker.MarkDisabled("a")
	status, _ = tracker.Get("a")
	assert.Equal(t, StateDisabled, status.State)
	assert.Empty(t, status.AuthURL, "re-entering disabled clears stale fields")
}

func TestStatusTrackerSnapshotIsCallerSafe(t *testing.T) {
	t.Parallel()

	tracker := NewStatusTracker(nil)
	tracker.MarkConnected("a")

	snapshot := tracker.Snapshot()
	snapshot["a"] = ServerStatus{State: StateFailed}
	snapshot["b"] = ServerStatus{State: StateConnected}

	status, ok := tracker.Get("a")
	require.True(t, ok)
	assert.Equal(t, StateConnected, status.State)
	_, ok = tracker.Get("b")
	assert.False(t, ok)
}
