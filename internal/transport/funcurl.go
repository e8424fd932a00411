// ABOUTME: Event-stream adapter for Lambda-Function-URL-style events.
// ABOUTME: Wraps every JSON-RPC response as a single text/event-stream frame.

package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/2389/docs-gateway/internal/mcp"
)

// sseHeaders returns the headers every event-stream response carries.
// X-Accel-Buffering disables proxy buffering so frames are not held back.
func sseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"X-Accel-Buffering":           "no",
		"Access-Control-Allow-Origin": "*",
	}
}

// sseFrame encodes v as one event-stream data frame.
func sseFrame(v any) string {
	return fmt.Sprintf("data: %s\n\n", mustJSON(v))
}

// HandleFunctionURL serves a Function-URL-style event. The "stream" here
// is framing only: each invocation produces exactly one frame and holds no
// connection open.
func (d *Dispatcher) HandleFunctionURL(ctx context.Context, event events.LambdaFunctionURLRequest) events.LambdaFunctionURLResponse {
	method := event.RequestContext.HTTP.Method
	path := event.RequestContext.HTTP.Path
	if path == "" {
		path = event.RawPath
	}

	d.logger.Info("function URL request", "method", method, "path", path)

	if method == "OPTIONS" {
		return events.LambdaFunctionURLResponse{
			StatusCode: 200,
			Headers: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
				"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
			},
			Body: "",
		}
	}

	switch {
	case path == "/" || path == "":
		return events.LambdaFunctionURLResponse{
			StatusCode: 302,
			Headers: map[string]string{
				"Location":                    "/sse",
				"Access-Control-Allow-Origin": "*",
			},
			Body: "",
		}

	case strings.HasPrefix(path, "/sse"):
		if method != "POST" {
			// GET returns static transport metadata, not a router response.
			info := map[string]any{
				"transport":   "sse",
				"protocol":    "MCP",
				"version":     mcp.ProtocolVersion,
				"description": "MCP server endpoint using SSE transport",
			}
			return events.LambdaFunctionURLResponse{
				StatusCode: 200,
				Headers:    sseHeaders(),
				Body:       sseFrame(info),
			}
		}

		req, err := decodeFunctionURLBody(event)
		if err != nil {
			d.logger.Warn("rejecting request body", "error", err)
			return functionURLError(400, "Invalid request body", nil)
		}

		resp := d.router.Handle(ctx, req)

		// Success and error responses alike ship as a 200 SSE frame; the
		// JSON-RPC error object inside the frame is the real signal.
		return events.LambdaFunctionURLResponse{
			StatusCode: 200,
			Headers:    sseHeaders(),
			Body:       sseFrame(resp),
		}

	default:
		return functionURLError(404, fmt.Sprintf("Path not found: %s", path), map[string]any{
			"available_paths": []string{"/", "/sse"},
		})
	}
}

// decodeFunctionURLBody unwraps the event body, decoding base64 when the
// event says so, and parses it as a JSON-RPC request. Both decode and
// parse failures reject the request before any JSON-RPC handling.
func decodeFunctionURLBody(event events.LambdaFunctionURLRequest) (*mcp.Request, error) {
	body := event.Body
	if body == "" {
		return nil, fmt.Errorf("empty request body")
	}
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 body: %w", err)
		}
		body = string(decoded)
	}
	return parseJSONRPCBody(body)
}

// parseJSONRPCBody parses a request body as a JSON-RPC request object.
func parseJSONRPCBody(body string) (*mcp.Request, error) {
	var req mcp.Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return nil, fmt.Errorf("parsing request body: %w", err)
	}
	return &req, nil
}

// functionURLError builds a JSON error response for the event-stream
// adapter's transport-level failures.
func functionURLError(status int, message string, extra map[string]any) events.LambdaFunctionURLResponse {
	body := map[string]any{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    corsJSONHeaders(),
		Body:       mustJSON(body),
	}
}
