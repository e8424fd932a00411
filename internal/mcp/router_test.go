// ABOUTME: Tests for the JSON-RPC method router.
// ABOUTME: Covers method dispatch, ID echoing, and the tool failure planes.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/2389/docs-gateway/internal/provider"
	"github.com/2389/docs-gateway/internal/tools"
)

// stubProvider implements provider.Provider with configurable behavior.
type stubProvider struct {
	readFn      func(url string, maxLength, startIndex int) (string, error)
	searchFn    func(phrase string, limit int) ([]provider.SearchResult, error)
	recommendFn func(url string) ([]provider.Recommendation, error)
}

func (s *stubProvider) ReadDocumentation(_ context.Context, _ provider.ErrorSink, url string, maxLength, startIndex int) (string, error) {
	if s.readFn != nil {
		return s.readFn(url, maxLength, startIndex)
	}
	return "stub content", nil
}

func (s *stubProvider) SearchDocumentation(_ context.Context, _ provider.ErrorSink, phrase string, limit int) ([]provider.SearchResult, error) {
	if s.searchFn != nil {
		return s.searchFn(phrase, limit)
	}
	return nil, nil
}

func (s *stubProvider) Recommend(_ context.Context, _ provider.ErrorSink, url string) ([]provider.Recommendation, error) {
	if s.recommendFn != nil {
		return s.recommendFn(url)
	}
	return nil, nil
}

func newTestRouter(t *testing.T, p provider.Provider) *Router {
	t.Helper()
	if p == nil {
		p = &stubProvider{}
	}
	router, err := NewRouter(RouterConfig{Registry: tools.NewRegistry(p)})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	return router
}

func TestNewRouterRequiresRegistry(t *testing.T) {
	if _, err := NewRouter(RouterConfig{}); err == nil {
		t.Fatal("expected error for missing registry")
	}
}

func TestHandleEchoesRequestID(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		name string
		id   string
	}{
		{"string id", `"abc-123"`},
		{"numeric id", `42`},
		{"null id", `null`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &Request{JSONRPC: "2.0", ID: json.RawMessage(tc.id), Method: "initialize"}
			resp := router.Handle(context.Background(), req)

			if string(resp.ID) != tc.id {
				t.Errorf("expected id %s, got %s", tc.id, string(resp.ID))
			}
			if resp.JSONRPC != "2.0" {
				t.Errorf("expected jsonrpc 2.0, got %s", resp.JSONRPC)
			}
		})
	}
}

func TestHandleInitialize(t *testing.T) {
	router := newTestRouter(t, nil)

	req := &Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize"}
	resp := router.Handle(context.Background(), req)

	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", resp.Result)
	}
	if result["protocolVersion"] != ProtocolVersion {
		t.Errorf("expected protocol version %s, got %v", ProtocolVersion, result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]any)
	if !ok {
		t.Fatalf("expected serverInfo map, got %T", result["serverInfo"])
	}
	if serverInfo["name"] != ServerName {
		t.Errorf("expected server name %q, got %v", ServerName, serverInfo["name"])
	}
	if serverInfo["version"] != ServerVersion {
		t.Errorf("expected server version %q, got %v", ServerVersion, serverInfo["version"])
	}

	capabilities, ok := result["capabilities"].(map[string]any)
	if !ok {
		t.Fatalf("expected capabilities map, got %T", result["capabilities"])
	}
	if _, ok := capabilities["tools"]; !ok {
		t.Error("expected tools capability")
	}
}

func TestHandleInitializeIsIdempotent(t *testing.T) {
	router := newTestRouter(t, nil)
	req := &Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize"}

	first := router.Handle(context.Background(), req)
	second := router.Handle(context.Background(), req)

	if !reflect.DeepEqual(first, second) {
		t.Error("initialize responses differ between calls")
	}
}

func TestHandleToolsList(t *testing.T) {
	router := newTestRouter(t, nil)

	req := &Request{JSONRPC: "2.0", ID: json.RawMessage(`2`), Method: "tools/list"}
	resp := router.Handle(context.Background(), req)

	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", resp.Result)
	}
	descriptors, ok := result["tools"].([]tools.Descriptor)
	if !ok {
		t.Fatalf("expected descriptor slice, got %T", result["tools"])
	}

	want := []string{"read_documentation", "search_documentation", "recommend"}
	if len(descriptors) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(descriptors))
	}
	for i, name := range want {
		if descriptors[i].Name != name {
			t.Errorf("tool %d: expected %s, got %s", i, name, descriptors[i].Name)
		}
	}

	// Same request again must list the same tools in the same order.
	again := router.Handle(context.Background(), req)
	if !reflect.DeepEqual(resp, again) {
		t.Error("tools/list responses differ between calls")
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, method := range []string{"resources/list", "prompts/list", "bogus"} {
		t.Run(method, func(t *testing.T) {
			req := &Request{JSONRPC: "2.0", ID: json.RawMessage(`3`), Method: method}
			resp := router.Handle(context.Background(), req)

			if resp.Error == nil {
				t.Fatal("expected error response")
			}
			if resp.Error.Code != JSONRPCMethodNotFound {
				t.Errorf("expected code %d, got %d", JSONRPCMethodNotFound, resp.Error.Code)
			}
			want := fmt.Sprintf("Method not found: %s", method)
			if resp.Error.Message != want {
				t.Errorf("expected message %q, got %q", want, resp.Error.Message)
			}
			if resp.Result != nil {
				t.Error("error response must not carry a result")
			}
		})
	}
}

func TestHandleToolsCallUnknownTool(t *testing.T) {
	router := newTestRouter(t, nil)

	req := &Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`4`),
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"nonexistent_tool","arguments":{}}`),
	}
	resp := router.Handle(context.Background(), req)

	// Unknown tool is a successful response whose text names the problem.
	if resp.Error != nil {
		t.Fatalf("expected success response, got error %+v", resp.Error)
	}
	result, ok := resp.Result.(CallToolResult)
	if !ok {
		t.Fatalf("expected CallToolResult, got %T", resp.Result)
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Content))
	}
	if result.Content[0].Type != "text" {
		t.Errorf("expected text block, got %s", result.Content[0].Type)
	}
	if result.Content[0].Text != "Unknown tool: nonexistent_tool" {
		t.Errorf("unexpected text: %q", result.Content[0].Text)
	}
}

func TestHandleToolsCallProviderFailure(t *testing.T) {
	p := &stubProvider{
		readFn: func(string, int, int) (string, error) {
			return "", errors.New("upstream returned status 503")
		},
	}
	router := newTestRouter(t, p)

	req := &Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`5`),
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"read_documentation","arguments":{"url":"https://docs.aws.amazon.com/x"}}`),
	}
	resp := router.Handle(context.Background(), req)

	// Provider failures fold into a successful result too.
	if resp.Error != nil {
		t.Fatalf("expected success response, got error %+v", resp.Error)
	}
	result := resp.Result.(CallToolResult)
	text := result.Content[0].Text
	if !strings.HasPrefix(text, "Error executing read_documentation: ") {
		t.Errorf("unexpected text: %q", text)
	}
	if !strings.Contains(text, "upstream returned status 503") {
		t.Errorf("expected failure detail in %q", text)
	}
}

func TestHandleToolsCallMalformedParams(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		name   string
		params string
	}{
		{"params not an object", `"just a string"`},
		{"name wrong type", `{"name":12345}`},
		{"arguments wrong type", `{"name":"read_documentation","arguments":{"url":123}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &Request{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`6`),
				Method:  "tools/call",
				Params:  json.RawMessage(tc.params),
			}
			resp := router.Handle(context.Background(), req)

			if resp.Error == nil {
				t.Fatal("expected error response")
			}
			if resp.Error.Code != JSONRPCInternalError {
				t.Errorf("expected code %d, got %d", JSONRPCInternalError, resp.Error.Code)
			}
			if !strings.HasPrefix(resp.Error.Message, "Internal error: ") {
				t.Errorf("unexpected message: %q", resp.Error.Message)
			}
		})
	}
}

func TestHandleRecoversPanics(t *testing.T) {
	p := &stubProvider{
		readFn: func(string, int, int) (string, error) {
			panic("provider exploded")
		},
	}
	router := newTestRouter(t, p)

	req := &Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`7`),
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"read_documentation","arguments":{"url":"https://docs.aws.amazon.com/x"}}`),
	}
	resp := router.Handle(context.Background(), req)

	if resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Code != JSONRPCInternalError {
		t.Errorf("expected code %d, got %d", JSONRPCInternalError, resp.Error.Code)
	}
	if string(resp.ID) != `7` {
		t.Errorf("expected id echoed through panic recovery, got %s", string(resp.ID))
	}
}

func TestResponseSerializationShape(t *testing.T) {
	router := newTestRouter(t, nil)

	t.Run("success omits error key", func(t *testing.T) {
		req := &Request{JSONRPC: "2.0", ID: json.RawMessage(`"s1"`), Method: "initialize"}
		body, err := json.Marshal(router.Handle(context.Background(), req))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var decoded map[string]json.RawMessage
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := decoded["error"]; ok {
			t.Error("success response must not carry error")
		}
		if _, ok := decoded["result"]; !ok {
			t.Error("success response must carry result")
		}
		if string(decoded["id"]) != `"s1"` {
			t.Errorf("expected id \"s1\", got %s", string(decoded["id"]))
		}
	})

	t.Run("error omits result key", func(t *testing.T) {
		req := &Request{JSONRPC: "2.0", ID: json.RawMessage(`"e1"`), Method: "nope"}
		body, err := json.Marshal(router.Handle(context.Background(), req))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var decoded map[string]json.RawMessage
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := decoded["result"]; ok {
			t.Error("error response must not carry result")
		}
		if _, ok := decoded["error"]; !ok {
			t.Error("error response must carry error")
		}
	})
}
