// ABOUTME: Tests for the standalone HTTP server over the transport adapters.
// ABOUTME: Drives real HTTP requests through httptest against the full stack.

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docs-gateway/internal/mcp"
	"github.com/2389/docs-gateway/internal/provider"
	"github.com/2389/docs-gateway/internal/tools"
	"github.com/2389/docs-gateway/internal/transport"
)

type staticProvider struct{}

func (staticProvider) ReadDocumentation(_ context.Context, _ provider.ErrorSink, _ string, _, _ int) (string, error) {
	return "doc body", nil
}

func (staticProvider) SearchDocumentation(_ context.Context, _ provider.ErrorSink, _ string, _ int) ([]provider.SearchResult, error) {
	return nil, nil
}

func (staticProvider) Recommend(_ context.Context, _ provider.ErrorSink, _ string) ([]provider.Recommendation, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	router, err := mcp.NewRouter(mcp.RouterConfig{Registry: tools.NewRegistry(staticProvider{})})
	require.NoError(t, err)

	dispatcher, err := transport.NewDispatcher(transport.DispatcherConfig{
		Router:   router,
		Provider: staticProvider{},
	})
	require.NoError(t, err)

	srv, err := NewServer(Config{Addr: ":0", Dispatcher: dispatcher})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestServerConfigValidation(t *testing.T) {
	_, err := NewServer(Config{Addr: ":0"})
	assert.Error(t, err)
}

func TestServerServiceInfo(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Name  string   `json:"name"`
		Tools []string `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, mcp.ServerName, body.Name)
	assert.Len(t, body.Tools, 3)
}

func TestServerMCPEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/mcp", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rpc struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
	require.Len(t, rpc.Result.Tools, 3)
	assert.Equal(t, "read_documentation", rpc.Result.Tools[0].Name)
}

func TestServerSSEEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/sse", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":"a","method":"initialize"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "data: "))
	assert.Contains(t, string(body), mcp.ProtocolVersion)
}

func TestServerFetchEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/fetch?url=https://docs.aws.amazon.com/x")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		URL     string `json:"url"`
		Content string `json:"content"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "https://docs.aws.amazon.com/x", body.URL)
	assert.Equal(t, "doc body", body.Content)
}

func TestServerOptionsPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/mcp", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestServerRejectsOversizedBodies(t *testing.T) {
	ts := newTestServer(t)

	huge := strings.Repeat("x", MaxRequestBodySize+1)
	resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(huge))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
