package mcphub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

// errNotFound marks a 404 on an optional discovery sub-call so the caller
// can treat the section as empty rather than failed.
var errNotFound = errors.New("not found")

// HTTPAdapter speaks the request/response tool-exposure protocol over HTTP:
// GET {endpoint}/tools|/resources|/prompts for discovery and
// POST {endpoint}/tools/execute for invocation.
type HTTPAdapter struct {
	// Client is the underlying HTTP client. Nil falls back to
	// http.DefaultClient, matching how base clients are decorated elsewhere.
	Client *http.Client
	// Timeout bounds each request when the server config has none.
	Timeout time.Duration
	Logger  *logrus.Logger
}

func (a *HTTPAdapter) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

func (a *HTTPAdapter) logger() *logrus.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logrus.StandardLogger()
}

// Discover fetches the server's catalog. The /tools call is required; the
// /resources and /prompts calls are optional and a 404 on either yields an
// empty section instead of an error.
func (a *HTTPAdapter) Discover(ctx context.Context, cfg ServerConfig) (*DiscoveredServer, error) {
	httpCfg, ok := AsHTTP(cfg)
	if !ok {
		return nil, fmt.Errorf("mcphub: http adapter received %T", cfg)
	}

	toolsPayload, err := a.request(ctx, httpCfg, http.MethodGet, "/tools", nil)
	if err != nil {
		if errors.Is(err, errNotFound) {
			err = &TransportError{ServerID: httpCfg.ID, Body: "tools endpoint not found"}
		}
		return nil, err
	}

	resourcesPayload, err := a.optional(ctx, httpCfg, "/resources")
	if err != nil {
		return nil, err
	}
	promptsPayload, err := a.optional(ctx, httpCfg, "/prompts")
	if err != nil {
		return nil, err
	}

	discovered := &DiscoveredServer{
		ID:        httpCfg.ID,
		Transport: TransportHTTP,
		Version:   resolveVersion(payloadVersion(toolsPayload), httpCfg.Version),
		Tools:     decodeTools(toolsPayload),
		Resources: decodeResources(resourcesPayload),
		Prompts:   decodePrompts(promptsPayload),
	}
	a.logger().WithFields(logrus.Fields{
		"server": httpCfg.ID,
		"tools":  len(discovered.Tools),
	}).Debug("http discovery complete")
	return discovered, nil
}

// Execute POSTs {name, arguments} to {endpoint}/tools/execute and unwraps a
// result field when the response nests one.
func (a *HTTPAdapter) Execute(ctx context.Context, cfg ServerConfig, toolName string, args map[string]any) (any, error) {
	httpCfg, ok := AsHTTP(cfg)
	if !ok {
		return nil, fmt.Errorf("mcphub: http adapter received %T", cfg)
	}
	if args == nil {
		args = map[string]any{}
	}
	body := map[string]any{"name": toolName, "arguments": args}
	payload, err := a.request(ctx, httpCfg, http.MethodPost, "/tools/execute", body)
	if err != nil {
		if errors.Is(err, errNotFound) {
			err = &TransportError{ServerID: httpCfg.ID, Body: "execute endpoint not found"}
		}
		return nil, err
	}
	return unwrapResult(payload), nil
}

// optional performs a discovery sub-call whose absence is not an error.
func (a *HTTPAdapter) optional(ctx context.Context, cfg *HTTPServerConfig, path string) (any, error) {
	payload, err := a.request(ctx, cfg, http.MethodGet, path, nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	return payload, err
}

func (a *HTTPAdapter) request(ctx context.Context, cfg *HTTPServerConfig, method, path string, body any) (any, error) {
	timeout := callTimeout(&cfg.BaseServerConfig, a.Timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("mcphub: encoding request for %q: %w", cfg.ID, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.Endpoint+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("mcphub: building request for %q: %w", cfg.ID, err)
	}
	for name, value := range BuildHeaders(&cfg.BaseServerConfig) {
		req.Header.Set(name, value)
	}

	resp, err := a.client().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{ServerID: cfg.ID, Timeout: timeout}
		}
		return nil, &TransportError{ServerID: cfg.ID, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, &TransportError{ServerID: cfg.ID, Body: readErr.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthRequiredError{
			ServerID: cfg.ID,
			URL:      extractAuthURL(raw, resp.Header),
			Body:     string(raw),
		}
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &TransportError{ServerID: cfg.ID, Body: string(raw)}
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &TransportError{ServerID: cfg.ID, Body: fmt.Sprintf("invalid JSON response: %v", err)}
	}
	return payload, nil
}

// unwrapResult peels an optional {result: ...} envelope off a response.
func unwrapResult(payload any) any {
	if obj, ok := payload.(map[string]any); ok {
		if result, exists := obj["result"]; exists {
			return result
		}
	}
	return payload
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// extractAuthURL finds the authorization redirect target for a 401/403
// response: well-known body fields first, then response headers, then a
// best-effort scan of the raw body. An empty result is acceptable.
func extractAuthURL(raw []byte, header http.Header) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, field := range []string{"authorization_url", "auth_url", "url"} {
			if u, ok := body[field].(string); ok && u != "" {
				return u
			}
		}
	}
	for _, name := range []string{"Location", "Www-Authenticate"} {
		if v := header.Get(name); v != "" {
			if u := urlPattern.FindString(v); u != "" {
				return u
			}
		}
	}
	return urlPattern.FindString(string(raw))
}
