package mcphub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpConfig(id, endpoint string) *HTTPServerConfig {
	return &HTTPServerConfig{
		BaseServerConfig: BaseServerConfig{ID: id, Enabled: true, Timeout: 5 * time.Second},
		Endpoint:         endpoint,
	}
}

func TestHTTPAdapterDiscoverNestedLists(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tools":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			json.NewEncoder(w).Encode(map[string]any{
				"version": "3.2",
				"tools": []map[string]any{
					{"name": " search ", "description": "full text search"},
					{"name": "", "description": "dropped"},
					{"name": "fetch", "inputSchema": map[string]any{"type": "object", "required": []string{"url"}}},
				},
			})
		case "/resources":
			json.NewEncoder(w).Encode(map[string]any{
				"resources": []map[string]any{{"name": "readme"}},
			})
		case "/prompts":
			json.NewEncoder(w).Encode([]map[string]any{{"name": "summarize"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	discovered, err := adapter.Discover(context.Background(), httpConfig("docs", srv.URL))
	require.NoError(t, err)

	assert.Equal(t, "docs", discovered.ID)
	assert.Equal(t, TransportHTTP, discovered.Transport)
	assert.Equal(t, "3.2", discovered.Version, "payload version wins")

	require.Len(t, discovered.Tools, 2)
	assert.Equal(t, "search", discovered.Tools[0].Name, "names are trimmed")
	assert.Equal(t, openObjectSchema(), discovered.Tools[0].InputSchema, "missing schema defaults to open object")
	assert.Equal(t, "fetch", discovered.Tools[1].Name)

	require.Len(t, discovered.Resources, 1)
	require.Len(t, discovered.Prompts, 1, "bare list payloads are accepted")
}

func TestHTTPAdapterDiscoverOptional404sYieldEmptySections(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tools" {
			json.NewEncoder(w).Encode(map[string]any{"tools": []map[string]any{{"name": "ping"}}})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	discovered, err := adapter.Discover(context.Background(), httpConfig("a", srv.URL))
	require.NoError(t, err)
	assert.Len(t, discovered.Tools, 1)
	assert.Empty(t, discovered.Resources)
	assert.Empty(t, discovered.Prompts)
}

func TestHTTPAdapterDiscoverRequired404Fails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	adapter := &HTTPAdapter{}
	_, err := adapter.Discover(context.Background(), httpConfig("a", srv.URL))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestHTTPAdapterDiscoverAuthRequired(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"authorization_url": "https://auth.example/x"})
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	_, err := adapter.Discover(context.Background(), httpConfig("a", srv.URL))
	authErr, ok := IsAuthRequired(err)
	require.True(t, ok)
	assert.Equal(t, "https://auth.example/x", authErr.URL)
	assert.Equal(t, "a", authErr.ServerID)
}

func TestHTTPAdapterAuthURLFallsBackToBodyScan(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized. Please sign in at https://login.example/start to continue."))
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	_, err := adapter.Discover(context.Background(), httpConfig("a", srv.URL))
	authErr, ok := IsAuthRequired(err)
	require.True(t, ok)
	assert.Equal(t, "https://login.example/start", authErr.URL)
}

func TestHTTPAdapterAuthURLMayBeEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("forbidden"))
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	_, err := adapter.Discover(context.Background(), httpConfig("a", srv.URL))
	authErr, ok := IsAuthRequired(err)
	require.True(t, ok)
	assert.Empty(t, authErr.URL)
}

func TestHTTPAdapterDiscoverServerErrorCarriesBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	_, err := adapter.Discover(context.Background(), httpConfig("a", srv.URL))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.Body, "database unavailable")
}

func TestHTTPAdapterExecuteUnwrapsResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tools/execute", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "search", req["name"])
		assert.Equal(t, map[string]any{"q": "golang"}, req["arguments"])

		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"hits": float64(3)}})
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	result, err := adapter.Execute(context.Background(), httpConfig("a", srv.URL), "search", map[string]any{"q": "golang"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hits": float64(3)}, result)
}

func TestHTTPAdapterExecuteBareResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	adapter := &HTTPAdapter{}
	result, err := adapter.Execute(context.Background(), httpConfig("a", srv.URL), "noop", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, result)
}

func TestHTTPAdapterTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	cfg := httpConfig("slow", srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	adapter := &HTTPAdapter{}
	_, err := adapter.Discover(context.Background(), cfg)
	assert.True(t, IsTimeout(err), "expected timeout, got %v", err)
}
