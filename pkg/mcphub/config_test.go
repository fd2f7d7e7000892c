package mcphub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeServerHTTP(t *testing.T) {
	t.Parallel()

	cfg := NormalizeServer(map[string]any{
		"id":      "docs",
		"type":    "http",
		"url":     "https://docs.example.com/mcp///",
		"version": "2.1",
		"timeout": 10,
		"headers": map[string]any{"X-Team": "infra"},
	})
	require.NotNil(t, cfg)

	httpCfg, ok := AsHTTP(cfg)
	require.True(t, ok)
	assert.Equal(t, "docs", httpCfg.ID)
	assert.Equal(t, "https://docs.example.com/mcp", httpCfg.Endpoint)
	assert.True(t, httpCfg.Enabled)
	assert.Equal(t, "2.1", httpCfg.Version)
	assert.Equal(t, 10*time.Second, httpCfg.Timeout)
	assert.Equal(t, map[string]string{"X-Team": "infra"}, httpCfg.Headers)
}

func TestNormalizeServerStdio(t *testing.T) {
	t.Parallel()

	cfg := NormalizeServer(map[string]any{
		"id":      "local",
		"type":    "stdio",
		"command": "python3",
		"args":    []any{"server.py", "--fast"},
		"cwd":     "/srv/tools",
		"env":     map[string]any{"MODE": "prod"},
		"enabled": false,
	})
	require.NotNil(t, cfg)

	stdioCfg, ok := AsStdio(cfg)
	require.True(t, ok)
	assert.Equal(t, "local", stdioCfg.ID)
	assert.Equal(t, "python3", stdioCfg.Command)
	assert.Equal(t, []string{"server.py", "--fast"}, stdioCfg.Args)
	assert.Equal(t, "/srv/tools", stdioCfg.WorkingDir)
	assert.Equal(t, map[string]string{"MODE": "prod"}, stdioCfg.Env)
	assert.False(t, stdioCfg.Enabled)
}

func TestNormalizeServerDrops(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NormalizeServer(nil), "nil entry")
	assert.Nil(t, NormalizeServer(map[string]any{"type": "http", "url": "https://x"}), "missing id")
	assert.Nil(t, NormalizeServer(map[string]any{"id": "  "}), "blank id")
	assert.Nil(t, NormalizeServer(map[string]any{"id": "a", "type": "http"}), "http without endpoint")
}

func TestNormalizeServerUnrecognizedKindDefaultsToHTTP(t *testing.T) {
	t.Parallel()

	cfg := NormalizeServer(map[string]any{"id": "a", "type": "websocket", "url": "https://a.example"})
	require.NotNil(t, cfg)
	assert.Equal(t, TransportHTTP, TransportOf(cfg))
}

func TestNormalizeServersSkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	configs := NormalizeServers([]map[string]any{
		{"id": "good", "url": "https://good.example"},
		{"url": "https://orphan.example"},
		{"id": "also-good", "type": "stdio", "command": "srv"},
	})
	require.Len(t, configs, 2)
	assert.Equal(t, "good", configs[0].base().ID)
	assert.Equal(t, "also-good", configs[1].base().ID)
}

func TestNormalizeExpiry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1700000000000), normalizeExpiry(1700000000), "epoch seconds")
	assert.Equal(t, int64(1700000000000), normalizeExpiry(int64(1700000000000)), "epoch milliseconds")
	assert.Equal(t, int64(0), normalizeExpiry("not-a-date"))
	assert.Equal(t, int64(0), normalizeExpiry(nil))

	iso := normalizeExpiry("2026-01-02T03:04:05Z")
	expected, err := time.Parse(time.RFC3339, "2026-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, expected.UnixMilli(), iso)
}

func TestOAuthRecordExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fresh := &OAuthRecord{AccessToken: "tok", ExpiresAt: now.Add(time.Hour).UnixMilli()}
	stale := &OAuthRecord{AccessToken: "tok", ExpiresAt: now.Add(-time.Hour).UnixMilli()}
	forever := &OAuthRecord{AccessToken: "tok"}

	assert.False(t, fresh.Expired(now))
	assert.True(t, stale.Expired(now))
	assert.False(t, forever.Expired(now), "no resolvable expiry never expires")
}
