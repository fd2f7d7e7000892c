package mcphub

import "strings"

// Wire-name grammar for namespaced tools:
//
//	name     = "mcp__" serverID "__" toolName
//	serverID = any character except a leading underscore; split at the FIRST
//	           "__" after the prefix
//	toolName = remainder, underscores allowed
//
// A server id that itself contains "__" therefore mis-splits on decode. That
// ambiguity is inherent to the delimiter choice and is pinned by tests rather
// than silently repaired.
const toolNamePrefix = "mcp__"

const toolNameSeparator = "__"

// BuildToolName encodes a server id and tool name into one wire-safe string
// so tool names from different servers never collide.
func BuildToolName(serverID, toolName string) string {
	return toolNamePrefix + serverID + toolNameSeparator + toolName
}

// ParseToolName decodes a namespaced wire name. It returns ok=false when the
// string lacks the mcp__ prefix, the server segment is empty or starts with
// an underscore, or no separator follows the server segment.
func ParseToolName(name string) (serverID, toolName string, ok bool) {
	rest, found := strings.CutPrefix(name, toolNamePrefix)
	if !found {
		return "", "", false
	}
	idx := strings.Index(rest, toolNameSeparator)
	if idx <= 0 {
		return "", "", false
	}
	serverID, toolName = rest[:idx], rest[idx+len(toolNameSeparator):]
	if strings.HasPrefix(serverID, "_") || toolName == "" {
		return "", "", false
	}
	return serverID, toolName, true
}
