package mcphub

import (
	"fmt"
	"strings"
	"time"
)

// ToolDescriptor describes one callable capability advertised by a server.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ResourceDescriptor describes a supplementary resource advertised by a server.
type ResourceDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PromptDescriptor describes a prompt template advertised by a server.
type PromptDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DiscoveredServer is the catalog returned by one successful discovery call.
// It is created fresh on every pass and never mutated afterward.
type DiscoveredServer struct {
	ID        string
	Transport ConfigTransport
	// Version is the resolved protocol version: the discovery payload's
	// version when present, else the configured one, else "unknown".
	Version   string
	Tools     []ToolDescriptor
	Resources []ResourceDescriptor
	Prompts   []PromptDescriptor
}

// CallableTool is one entry of the flattened, namespaced tool registry.
type CallableTool struct {
	// Name is the wire name, mcp__{serverID}__{toolName}.
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
	ServerID    string         `json:"server_id"`
	ToolName    string         `json:"tool_name"`
}

// ServerError records one failed discovery attempt inside an aggregate.
type ServerError struct {
	ServerID  string          `json:"server_id"`
	Transport ConfigTransport `json:"transport"`
	Endpoint  string          `json:"endpoint,omitempty"`
	Status    ServerState     `json:"status"`
	AuthURL   string          `json:"auth_url,omitempty"`
	Message   string          `json:"message"`
}

// DiscoveryResult aggregates one full discovery pass across all servers.
// Instances are immutable once published; a new pass replaces the whole value.
type DiscoveryResult struct {
	Servers  []*DiscoveredServer
	Errors   []ServerError
	Statuses map[string]ServerStatus
	Tools    []CallableTool
	// Context is a human-readable multi-line summary suitable for inclusion
	// in an agent prompt.
	Context string

	fetchedAt time.Time
}

// openObjectSchema is the default input schema for tools that omit one.
func openObjectSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// listSection extracts a catalog section from a payload that is either a
// bare JSON list or an object nesting the list under the named field.
func listSection(payload any, field string) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		if items, ok := v[field].([]any); ok {
			return items
		}
	}
	return nil
}

// payloadVersion pulls an optional version string out of an object payload.
func payloadVersion(payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if v, ok := obj["version"].(string); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func decodeTools(payload any) []ToolDescriptor {
	items := listSection(payload, "tools")
	tools := make([]ToolDescriptor, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(obj, "name"))
		if name == "" {
			continue
		}
		schema, ok := obj["inputSchema"].(map[string]any)
		if !ok {
			if schema, ok = obj["input_schema"].(map[string]any); !ok {
				schema = openObjectSchema()
			}
		}
		tools = append(tools, ToolDescriptor{
			Name:        name,
			Description: stringField(obj, "description"),
			InputSchema: schema,
		})
	}
	return tools
}

func decodeResources(payload any) []ResourceDescriptor {
	items := listSection(payload, "resources")
	resources := make([]ResourceDescriptor, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(obj, "name"))
		if name == "" {
			continue
		}
		resources = append(resources, ResourceDescriptor{
			Name:        name,
			Description: stringField(obj, "description"),
		})
	}
	return resources
}

func decodePrompts(payload any) []PromptDescriptor {
	items := listSection(payload, "prompts")
	prompts := make([]PromptDescriptor, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(obj, "name"))
		if name == "" {
			continue
		}
		prompts = append(prompts, PromptDescriptor{
			Name:        name,
			Description: stringField(obj, "description"),
		})
	}
	return prompts
}

// contextNameLimit caps how many resource and prompt names each server
// contributes to the rendered context summary.
const contextNameLimit = 8

// renderContext builds the per-server summary text from discovered catalogs.
func renderContext(servers []*DiscoveredServer) string {
	var b strings.Builder
	for _, srv := range servers {
		fmt.Fprintf(&b, "%s (%s, v%s): %d tools, %d resources, %d prompts\n",
			srv.ID, srv.Transport, srv.Version,
			len(srv.Tools), len(srv.Resources), len(srv.Prompts))
		if names := descriptorNames(srv.Resources); len(names) > 0 {
			fmt.Fprintf(&b, "  resources: %s\n", strings.Join(names, ", "))
		}
		if names := promptNames(srv.Prompts); len(names) > 0 {
			fmt.Fprintf(&b, "  prompts: %s\n", strings.Join(names, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func descriptorNames(resources []ResourceDescriptor) []string {
	names := make([]string, 0, len(resources))
	for _, r := range resources {
		names = append(names, r.Name)
	}
	return capNames(names)
}

func promptNames(prompts []PromptDescriptor) []string {
	names := make([]string, 0, len(prompts))
	for _, p := range prompts {
		names = append(names, p.Name)
	}
	return capNames(names)
}

func capNames(names []string) []string {
	if len(names) <= contextNameLimit {
		return names
	}
	return append(names[:contextNameLimit:contextNameLimit], "…")
}
