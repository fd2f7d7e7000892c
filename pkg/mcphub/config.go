package mcphub

import (
	"strings"
	"time"
)

// OAuthRecord carries a previously obtained access token for a server. The
// manager never runs an authorization flow itself; it only consumes tokens
// placed here by an external one.
type OAuthRecord struct {
	AccessToken string
	// ExpiresAt is the token expiry in epoch milliseconds. Zero means the
	// record carries no resolvable expiry and the token never expires by
	// this check alone.
	ExpiresAt int64
}

// Expired reports whether the token is past its expiry at the given instant.
func (o *OAuthRecord) Expired(now time.Time) bool {
	if o == nil || o.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() >= o.ExpiresAt
}

// BaseServerConfig captures settings shared by all transport types.
type BaseServerConfig struct {
	ID      string
	Enabled bool
	// Version is the protocol version declared in configuration. Discovery
	// payloads may override it; see DiscoveredServer.Version.
	Version string
	// Timeout bounds each individual network request or subprocess run for
	// this server. Zero falls back to the adapter default.
	Timeout time.Duration
	// Headers are static headers sent on every outbound call. Values may
	// reference environment variables as ${NAME}.
	Headers map[string]string
	// APIKey and APIKeyEnv supply a bearer credential when no usable OAuth
	// token is present. APIKeyEnv names an environment variable.
	APIKey    string
	APIKeyEnv string
	OAuth     *OAuthRecord
}

// HTTPServerConfig describes a server reachable over HTTP.
type HTTPServerConfig struct {
	BaseServerConfig
	Endpoint string
}

func (c *HTTPServerConfig) base() *BaseServerConfig { return &c.BaseServerConfig }

// StdioServerConfig describes a server launched as a subprocess per call.
type StdioServerConfig struct {
	BaseServerConfig
	Command    string
	Args       []string
	WorkingDir string
	Env        map[string]string
}

func (c *StdioServerConfig) base() *BaseServerConfig { return &c.BaseServerConfig }

// ServerConfig is implemented by all transport-specific configurations.
type ServerConfig interface {
	base() *BaseServerConfig
}

// NormalizeServer validates and canonicalizes one raw server entry into a
// ServerConfig. It returns nil when the entry is unusable: a missing or empty
// id, or an HTTP entry without an endpoint. Unrecognized transport kinds
// default to HTTP. The transform is pure and never panics on odd value types.
func NormalizeServer(raw map[string]any) ServerConfig {
	if raw == nil {
		return nil
	}
	id := strings.TrimSpace(stringField(raw, "id"))
	if id == "" {
		return nil
	}

	base := BaseServerConfig{
		ID:        id,
		Enabled:   boolField(raw, "enabled", true),
		Version:   strings.TrimSpace(stringField(raw, "version")),
		Timeout:   durationField(raw, "timeout"),
		Headers:   stringMapField(raw, "headers"),
		APIKey:    stringField(raw, "api_key"),
		APIKeyEnv: stringField(raw, "api_key_env"),
		OAuth:     oauthField(raw, "oauth"),
	}

	kind := strings.ToLower(strings.TrimSpace(stringField(raw, "type")))
	if kind == string(TransportStdio) {
		return &StdioServerConfig{
			BaseServerConfig: base,
			Command:          strings.TrimSpace(stringField(raw, "command")),
			Args:             stringSliceField(raw, "args"),
			WorkingDir:       stringField(raw, "cwd"),
			Env:              stringMapField(raw, "env"),
		}
	}

	endpoint := strings.TrimSpace(stringField(raw, "url"))
	if endpoint == "" {
		endpoint = strings.TrimSpace(stringField(raw, "endpoint"))
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint == "" {
		return nil
	}
	return &HTTPServerConfig{BaseServerConfig: base, Endpoint: endpoint}
}

// NormalizeServers canonicalizes a batch of raw entries, silently dropping
// the unusable ones. One malformed entry never fails the whole load.
func NormalizeServers(raws []map[string]any) []ServerConfig {
	configs := make([]ServerConfig, 0, len(raws))
	for _, raw := range raws {
		if cfg := NormalizeServer(raw); cfg != nil {
			configs = append(configs, cfg)
		}
	}
	return configs
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func boolField(raw map[string]any, key string, fallback bool) bool {
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return fallback
}

// durationField accepts either a number of seconds or a Go duration string.
func durationField(raw map[string]any, key string) time.Duration {
	switch v := raw[key].(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 0
}

func stringSliceField(raw map[string]any, key string) []string {
	switch v := raw[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringMapField(raw map[string]any, key string) map[string]string {
	switch v := raw[key].(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

func oauthField(raw map[string]any, key string) *OAuthRecord {
	entry, ok := raw[key].(map[string]any)
	if !ok {
		return nil
	}
	token := stringField(entry, "access_token")
	if token == "" {
		return nil
	}
	return &OAuthRecord{AccessToken: token, ExpiresAt: normalizeExpiry(entry["expires_at"])}
}

// millisecondEpochFloor distinguishes second-resolution epochs from
// millisecond ones: values at or above it are already in milliseconds.
// It corresponds to 2001-09-09 in milliseconds and the year 33658 in seconds.
const millisecondEpochFloor = 1e12

// normalizeExpiry converts an expiry expressed as epoch seconds, epoch
// milliseconds, or an ISO-8601 string into epoch milliseconds. Unresolvable
// values yield zero, which Expired treats as "never".
func normalizeExpiry(v any) int64 {
	switch t := v.(type) {
	case int:
		return normalizeEpoch(float64(t))
	case int64:
		return normalizeEpoch(float64(t))
	case float64:
		return normalizeEpoch(t)
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts.UnixMilli()
		}
	}
	return 0
}

func normalizeEpoch(v float64) int64 {
	if v <= 0 {
		return 0
	}
	if v >= millisecondEpochFloor {
		return int64(v)
	}
	return int64(v * 1000)
}
