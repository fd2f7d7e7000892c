package mcphub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ManagerOptions configures a Manager instance.
type ManagerOptions struct {
	// CacheTTL is how long an aggregated discovery result stays fresh.
	// Defaults to one minute.
	CacheTTL time.Duration
	// CallTimeout bounds each transport call when a server config omits its
	// own timeout. Defaults to 30 seconds.
	CallTimeout time.Duration
	// Logger receives structured diagnostics. Defaults to the logrus
	// standard logger.
	Logger *logrus.Logger
	// HTTPAdapter and StdioAdapter override the default transports, mainly
	// for tests that count or fake transport calls.
	HTTPAdapter  TransportAdapter
	StdioAdapter TransportAdapter
}

func (o *ManagerOptions) normalized() ManagerOptions {
	if o == nil {
		return ManagerOptions{}
	}
	return *o
}

// Manager aggregates the catalogs of all configured servers into a single
// namespaced registry and routes invocation requests to the owning server's
// transport. Discovery results are cached for the configured TTL. All shared
// state sits behind one mutex, so a Manager is safe for concurrent callers.
type Manager struct {
	mu sync.Mutex

	configs []ServerConfig
	byID    map[string]ServerConfig
	status  *StatusTracker
	logger  *logrus.Logger

	http  TransportAdapter
	stdio TransportAdapter

	cacheTTL time.Duration
	cached   *DiscoveryResult

	now func() time.Time
}

// NewManager builds a Manager from normalized server configurations.
// Duplicate server IDs keep the first occurrence.
func NewManager(configs []ServerConfig, opts *ManagerOptions) *Manager {
	options := opts.normalized()
	if options.CacheTTL <= 0 {
		options.CacheTTL = time.Minute
	}
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}

	m := &Manager{
		byID:     make(map[string]ServerConfig, len(configs)),
		status:   NewStatusTracker(configs),
		logger:   options.Logger,
		cacheTTL: options.CacheTTL,
		now:      time.Now,
	}
	for _, cfg := range configs {
		id := cfg.base().ID
		if _, dup := m.byID[id]; dup {
			m.logger.WithField("server", id).Warn("duplicate server id, keeping first")
			continue
		}
		m.byID[id] = cfg
		m.configs = append(m.configs, cfg)
	}

	m.http = options.HTTPAdapter
	if m.http == nil {
		m.http = &HTTPAdapter{Timeout: options.CallTimeout, Logger: options.Logger}
	}
	m.stdio = options.StdioAdapter
	if m.stdio == nil {
		m.stdio = &StdioAdapter{Timeout: options.CallTimeout, Logger: options.Logger}
	}
	return m
}

// ServerIDs returns the configured server identifiers in configuration order.
func (m *Manager) ServerIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.configs))
	for _, cfg := range m.configs {
		ids = append(ids, cfg.base().ID)
	}
	return ids
}

// StatusSnapshot returns a caller-safe copy of all current server statuses.
func (m *Manager) StatusSnapshot() map[string]ServerStatus {
	return m.status.Snapshot()
}

// Discover returns the aggregated catalog across all enabled servers. When
// force is false and a cached result younger than the TTL exists, it is
// returned unchanged with no transport calls made. Per-server failures are
// isolated: they populate the Errors list and the status map but never abort
// the pass.
func (m *Manager) Discover(ctx context.Context, force bool) (*DiscoveryResult, error) {
	m.mu.Lock()
	if !force && m.cached != nil && m.now().Sub(m.cached.fetchedAt) < m.cacheTTL {
		cached := m.cached
		m.mu.Unlock()
		return cached, nil
	}
	configs := append([]ServerConfig(nil), m.configs...)
	m.mu.Unlock()

	result := m.discoverAll(ctx, configs)

	m.mu.Lock()
	m.cached = result
	m.mu.Unlock()
	return result, nil
}

// discoverAll queries every enabled server sequentially in configuration
// order. A slow server delays the rest of the pass, but its per-call timeout
// keeps it from blocking indefinitely.
func (m *Manager) discoverAll(ctx context.Context, configs []ServerConfig) *DiscoveryResult {
	result := &DiscoveryResult{fetchedAt: m.now()}

	for _, cfg := range configs {
		base := cfg.base()
		if !base.Enabled {
			m.status.MarkDisabled(base.ID)
			continue
		}

		discovered, err := m.adapterFor(cfg).Discover(ctx, cfg)
		if err != nil {
			result.Errors = append(result.Errors, m.recordFailure(cfg, err))
			continue
		}

		m.status.MarkConnected(base.ID)
		result.Servers = append(result.Servers, discovered)
		for _, tool := range discovered.Tools {
			result.Tools = append(result.Tools, CallableTool{
				Name:        BuildToolName(base.ID, tool.Name),
				Description: fmt.Sprintf("[%s %s] %s", base.ID, discovered.Version, tool.Description),
				InputSchema: tool.InputSchema,
				ServerID:    base.ID,
				ToolName:    tool.Name,
			})
		}
	}

	result.Statuses = m.status.Snapshot()
	result.Context = renderContext(result.Servers)
	m.logger.WithFields(logrus.Fields{
		"servers": len(result.Servers),
		"errors":  len(result.Errors),
		"tools":   len(result.Tools),
	}).Info("discovery pass complete")
	return result
}

func (m *Manager) recordFailure(cfg ServerConfig, err error) ServerError {
	base := cfg.base()
	entry := ServerError{
		ServerID:  base.ID,
		Transport: TransportOf(cfg),
		Message:   err.Error(),
	}
	if httpCfg, ok := AsHTTP(cfg); ok {
		entry.Endpoint = httpCfg.Endpoint
	}
	if authErr, ok := IsAuthRequired(err); ok {
		entry.Status = StateNeedsAuth
		entry.AuthURL = authErr.URL
		m.status.MarkNeedsAuth(base.ID, authErr.URL, authErr.Error())
	} else {
		entry.Status = StateFailed
		m.status.MarkFailed(base.ID, err.Error())
	}
	m.logger.WithFields(logrus.Fields{
		"server": base.ID,
		"status": entry.Status,
	}).WithError(err).Warn("server discovery failed")
	return entry
}

func (m *Manager) adapterFor(cfg ServerConfig) TransportAdapter {
	if IsStdio(cfg) {
		return m.stdio
	}
	return m.http
}

// ToolResultMeta carries execution metadata alongside a tool result.
type ToolResultMeta struct {
	// ServerVersion is the owning server's resolved version from the latest
	// discovery, or empty when the server has not been discovered.
	ServerVersion string `json:"server_version,omitempty"`
	InvocationID  string `json:"invocation_id"`
	Duration      string `json:"duration"`
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	ServerID string         `json:"server_id"`
	ToolName string         `json:"tool_name"`
	Content  any            `json:"content"`
	Meta     ToolResultMeta `json:"meta"`
}

// ExecuteTool invokes a tool on the named server. Unknown and disabled
// servers yield distinct lookup errors; transport errors propagate uncaught
// and no retries are attempted at any layer.
func (m *Manager) ExecuteTool(ctx context.Context, serverID, toolName string, args map[string]any) (*ToolResult, error) {
	m.mu.Lock()
	cfg, ok := m.byID[serverID]
	m.mu.Unlock()
	if !ok {
		return nil, &LookupError{Name: serverID, Err: ErrUnknownServer}
	}
	if !cfg.base().Enabled {
		return nil, &LookupError{Name: serverID, Err: ErrServerDisabled}
	}

	start := m.now()
	content, err := m.adapterFor(cfg).Execute(ctx, cfg, toolName, args)
	if err != nil {
		return nil, err
	}

	result := &ToolResult{
		ServerID: serverID,
		ToolName: toolName,
		Content:  content,
		Meta: ToolResultMeta{
			InvocationID: uuid.NewString(),
			Duration:     m.now().Sub(start).String(),
		},
	}
	// Cached discovery supplies the version metadata; a fresh pass is not
	// worth a failed execution, so errors here are ignored.
	if discovery, derr := m.Discover(ctx, false); derr == nil {
		for _, srv := range discovery.Servers {
			if srv.ID == serverID {
				result.Meta.ServerVersion = srv.Version
				break
			}
		}
	}
	return result, nil
}

// ToolCall is an invocation request addressed by namespaced wire name, with
// a raw JSON argument payload.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ExecuteToolCall decodes the namespaced tool name, parses the argument
// payload (falling back to an empty object when it is not valid JSON), and
// delegates to ExecuteTool.
func (m *Manager) ExecuteToolCall(ctx context.Context, call ToolCall) (*ToolResult, error) {
	serverID, toolName, ok := ParseToolName(call.Name)
	if !ok {
		return nil, &LookupError{Name: call.Name, Err: fmt.Errorf("invalid namespaced tool name")}
	}
	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			m.logger.WithField("tool", call.Name).Debug("unparseable arguments, using empty object")
			args = map[string]any{}
		}
	}
	return m.ExecuteTool(ctx, serverID, toolName, args)
}
