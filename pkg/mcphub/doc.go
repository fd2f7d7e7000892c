// Package mcphub discovers and invokes tools exposed by independently
// configured remote servers speaking a simplified MCP tool-exposure
// protocol. A Manager normalizes heterogeneous per-server catalogs into a
// single namespaced registry, caches the aggregated discovery result for a
// configurable TTL, tracks per-server availability and authentication state,
// and forwards invocation requests to the owning server over the correct
// transport (HTTP request/response or a one-shot subprocess exchange).
//
// The package deliberately stops short of the protocol's server side,
// streaming transports, and OAuth flows: when a server demands
// authorization, the manager only surfaces the redirect target for an
// external flow to consume.
package mcphub
