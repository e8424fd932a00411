// ABOUTME: Synchronous HTTP adapter for API-Gateway-style events.
// ABOUTME: Routes by path to service info, direct fetch, and the JSON-RPC endpoints.

package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/2389/docs-gateway/internal/mcp"
)

// availablePaths lists the paths this adapter serves, echoed in 404 bodies.
var availablePaths = []string{"/", "/fetch", "/mcp/", "/sse/"}

// HandleAPIGateway serves an API-Gateway-style HTTP event. CORS preflight
// succeeds unconditionally; everything else routes by path prefix.
func (d *Dispatcher) HandleAPIGateway(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	path := event.Path
	method := event.HTTPMethod

	d.logger.Info("API gateway request", "method", method, "path", path)

	if method == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: 200,
			Headers: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Headers": "*",
				"Access-Control-Allow-Methods": "*",
			},
			Body: "",
		}
	}

	switch {
	case path == "/" || path == "":
		return d.handleServiceInfo()
	case strings.HasPrefix(path, "/fetch"):
		return d.handleFetch(ctx, event.QueryStringParameters)
	case strings.HasPrefix(path, "/mcp"):
		return d.handleJSONRPC(ctx, event, "streamable-http")
	case strings.HasPrefix(path, "/sse"):
		return d.handleJSONRPC(ctx, event, "sse")
	default:
		return events.APIGatewayProxyResponse{
			StatusCode: 404,
			Headers:    corsJSONHeaders(),
			Body: mustJSON(map[string]any{
				"error":           fmt.Sprintf("Path not found: %s", path),
				"available_paths": availablePaths,
			}),
		}
	}
}

// handleServiceInfo serves the root endpoint's service description.
func (d *Dispatcher) handleServiceInfo() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers:    corsJSONHeaders(),
		Body: mustJSON(map[string]any{
			"name":        mcp.ServerName,
			"version":     mcp.ServerVersion,
			"description": "MCP server for AWS documentation access",
			"endpoints": map[string]string{
				"/":      "Service information",
				"/fetch": "Direct documentation fetch (GET ?url=<aws_docs_url>)",
				"/mcp/":  "MCP Streamable HTTP transport",
				"/sse/":  "MCP SSE transport",
			},
			"tools": []string{"read_documentation", "search_documentation", "recommend"},
			"example_usage": map[string]string{
				"fetch":      "/fetch?url=https://docs.aws.amazon.com/lambda/latest/dg/welcome.html",
				"mcp_client": "Use /mcp/ endpoint for MCP clients with Streamable HTTP",
			},
		}),
	}
}

// handleJSONRPC serves the /mcp and /sse endpoints on the synchronous
// adapter. A GET with no body returns static transport metadata instead of
// invoking the router; that asymmetry is intentional and relied on for
// capability discovery.
func (d *Dispatcher) handleJSONRPC(ctx context.Context, event events.APIGatewayProxyRequest, transportType string) events.APIGatewayProxyResponse {
	if event.Body == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: 200,
			Headers:    corsJSONHeaders(),
			Body: mustJSON(map[string]any{
				"transport":   transportType,
				"protocol":    "MCP",
				"version":     mcp.ProtocolVersion,
				"description": fmt.Sprintf("MCP server endpoint using %s transport", transportType),
				"usage":       "Send JSON-RPC 2.0 requests to this endpoint",
			}),
		}
	}

	req, err := parseJSONRPCBody(event.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 400,
			Headers:    corsJSONHeaders(),
			Body: mustJSON(map[string]any{
				"error":   "Invalid JSON in request body",
				"details": err.Error(),
			}),
		}
	}

	resp := d.router.Handle(ctx, req)

	return events.APIGatewayProxyResponse{
		StatusCode: statusForResponse(resp),
		Headers:    corsJSONHeaders(),
		Body:       mustJSON(resp),
	}
}

// statusForResponse maps a JSON-RPC outcome to this adapter's HTTP status
// convention: 200 for results, 400 for protocol errors, 500 for internal
// errors. The JSON-RPC error object stays the authoritative signal.
func statusForResponse(resp *mcp.Response) int {
	if resp.Error == nil {
		return 200
	}
	if resp.Error.Code == mcp.JSONRPCInternalError {
		return 500
	}
	return 400
}
