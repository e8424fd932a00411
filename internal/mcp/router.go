// ABOUTME: JSON-RPC method router dispatching initialize, tools/list, and tools/call.
// ABOUTME: Single copy of the method-handling logic shared by every transport adapter.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/2389/docs-gateway/internal/provider"
	"github.com/2389/docs-gateway/internal/tools"
)

// ProtocolVersion is the MCP protocol revision advertised in initialize responses.
const ProtocolVersion = "2024-11-05"

// Server identity announced in initialize responses.
const (
	ServerName    = "AWS Documentation MCP Server"
	ServerVersion = "1.0.0"
)

// Router dispatches parsed JSON-RPC requests to the protocol method handlers.
// It is stateless across requests; the registry it reads is immutable.
type Router struct {
	registry *tools.Registry
	logger   *slog.Logger
}

// RouterConfig holds configuration for the Router.
type RouterConfig struct {
	Registry *tools.Registry
	Logger   *slog.Logger
}

// NewRouter creates a Router over the given tool registry.
func NewRouter(cfg RouterConfig) (*Router, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{registry: cfg.Registry, logger: logger}, nil
}

// Handle routes a request by its method field and always returns a
// well-formed response echoing the inbound ID. It never panics past its
// boundary: unexpected failures surface as -32603.
func (rt *Router) Handle(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("panic in method router", "method", req.Method, "panic", r)
			resp = NewError(req.ID, JSONRPCInternalError, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	rt.logger.Debug("MCP request", "method", req.Method)

	switch req.Method {
	case "initialize":
		return rt.handleInitialize(req)
	case "tools/list":
		return rt.handleToolsList(req)
	case "tools/call":
		return rt.handleToolsCall(ctx, req)
	default:
		return NewError(req.ID, JSONRPCMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// handleInitialize returns the fixed capability announcement. Never fails.
func (rt *Router) handleInitialize(req *Request) *Response {
	return NewResult(req.ID, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":   map[string]any{},
			"logging": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": ServerVersion,
		},
	})
}

// handleToolsList returns all tool descriptors in their fixed registry order.
func (rt *Router) handleToolsList(req *Request) *Response {
	return NewResult(req.ID, map[string]any{
		"tools": rt.registry.Descriptors(),
	})
}

// handleToolsCall looks up the named tool and executes it. Tool-level
// failures (unknown name, provider error) are folded into a successful
// result whose text states the failure, so clients that only render
// content blocks still see it. Only malformed params surface as a
// JSON-RPC error.
func (rt *Router) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, JSONRPCInternalError, fmt.Sprintf("Internal error: invalid params: %v", err))
		}
	}

	requestID := uuid.New().String()
	sink := provider.NewLogSink(rt.logger.With("tool", params.Name, "request_id", requestID))

	rt.logger.Debug("tools/call", "tool_name", params.Name, "request_id", requestID)

	tool, ok := rt.registry.Lookup(params.Name)
	if !ok {
		return NewResult(req.ID, TextResult(fmt.Sprintf("Unknown tool: %s", params.Name)))
	}

	text, err := tool.Call(ctx, sink, params.Arguments)
	if err != nil {
		if errors.Is(err, tools.ErrInvalidArguments) {
			return NewError(req.ID, JSONRPCInternalError, fmt.Sprintf("Internal error: %v", err))
		}
		rt.logger.Warn("tool execution failed", "tool_name", params.Name, "request_id", requestID, "error", err)
		return NewResult(req.ID, TextResult(fmt.Sprintf("Error executing %s: %v", params.Name, err)))
	}

	return NewResult(req.ID, TextResult(text))
}
