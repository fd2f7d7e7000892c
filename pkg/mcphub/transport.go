package mcphub

import (
	"context"
	"time"
)

// defaultCallTimeout bounds individual transport calls when neither the
// server config nor the adapter specifies one.
const defaultCallTimeout = 30 * time.Second

// TransportAdapter reaches one server over one transport kind. Both methods
// bound every individual exchange with the per-server timeout (falling back
// to the adapter default) and return the typed errors from errors.go.
type TransportAdapter interface {
	// Discover queries the server for its current catalog of tools,
	// resources, and prompts.
	Discover(ctx context.Context, cfg ServerConfig) (*DiscoveredServer, error)
	// Execute invokes one tool by its native (un-namespaced) name.
	Execute(ctx context.Context, cfg ServerConfig, toolName string, args map[string]any) (any, error)
}

// callTimeout resolves the effective timeout for one exchange.
func callTimeout(base *BaseServerConfig, fallback time.Duration) time.Duration {
	if base.Timeout > 0 {
		return base.Timeout
	}
	if fallback > 0 {
		return fallback
	}
	return defaultCallTimeout
}

// resolveVersion applies the version precedence: discovery payload first,
// then the configured version, then "unknown".
func resolveVersion(payloadVersion, configured string) string {
	if payloadVersion != "" {
		return payloadVersion
	}
	if configured != "" {
		return configured
	}
	return "unknown"
}
