// ABOUTME: Event dispatch for the Lambda entrypoint: sniffs the inbound event shape.
// ABOUTME: Routes to the API Gateway, Function URL, or direct-invocation adapter.

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-lambda-go/events"

	"github.com/2389/docs-gateway/internal/mcp"
	"github.com/2389/docs-gateway/internal/provider"
)

// Dispatcher owns the three transport adapters. It holds no per-request
// state; every inbound event is an independent transaction.
type Dispatcher struct {
	router   *mcp.Router
	provider provider.Provider
	logger   *slog.Logger
}

// DispatcherConfig holds configuration for the Dispatcher.
type DispatcherConfig struct {
	Router   *mcp.Router
	Provider provider.Provider
	Logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given router and provider.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{router: cfg.Router, provider: cfg.Provider, logger: logger}, nil
}

// eventProbe is used to sniff which transport an inbound event belongs to.
type eventProbe struct {
	HTTPMethod     string `json:"httpMethod"`
	RequestContext struct {
		HTTP *struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
	Method  *string `json:"method"`
	JSONRPC *string `json:"jsonrpc"`
}

// Dispatch decodes a raw Lambda payload, routes it to the matching
// adapter, and returns that adapter's response value. It is the last line
// of defense: a panic anywhere below surfaces as a 500 envelope, never as
// an unanswered request.
func (d *Dispatcher) Dispatch(ctx context.Context, raw json.RawMessage) (result any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("unhandled panic in dispatch", "panic", r)
			result = events.APIGatewayProxyResponse{
				StatusCode: 500,
				Headers:    corsJSONHeaders(),
				Body: mustJSON(map[string]any{
					"error": fmt.Sprint(r),
					"type":  fmt.Sprintf("%T", r),
				}),
			}
		}
	}()

	var probe eventProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return unknownEventResponse(raw)
	}

	switch {
	case probe.HTTPMethod != "":
		var event events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return unknownEventResponse(raw)
		}
		return d.HandleAPIGateway(ctx, event)

	case probe.RequestContext.HTTP != nil:
		var event events.LambdaFunctionURLRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return unknownEventResponse(raw)
		}
		return d.HandleFunctionURL(ctx, event)

	case probe.Method != nil || probe.JSONRPC != nil:
		var req mcp.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return unknownEventResponse(raw)
		}
		return d.HandleDirect(ctx, &req)

	default:
		return unknownEventResponse(raw)
	}
}

// HandleDirect serves a direct invocation: the event is the JSON-RPC
// request and the router's response is the raw return value.
func (d *Dispatcher) HandleDirect(ctx context.Context, req *mcp.Request) *mcp.Response {
	d.logger.Debug("direct MCP invocation", "method", req.Method)
	return d.router.Handle(ctx, req)
}

// unknownEventResponse rejects an event that matches none of the three
// transport shapes, listing the keys it carried to aid debugging.
func unknownEventResponse(raw json.RawMessage) events.APIGatewayProxyResponse {
	var asMap map[string]json.RawMessage
	keys := []string{}
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for k := range asMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: 400,
		Headers:    corsJSONHeaders(),
		Body: mustJSON(map[string]any{
			"error":      "Unknown event type",
			"event_keys": keys,
		}),
	}
}

// corsJSONHeaders returns the standard JSON response headers with the
// wildcard CORS origin every endpoint carries.
func corsJSONHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// mustJSON encodes v, falling back to an empty object on failure. Inputs
// are maps and structs of plain values, so failure is not reachable in
// practice.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
