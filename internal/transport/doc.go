// Package transport adapts inbound events to the MCP method router.
//
// # Adapters
//
// Three event shapes are supported, sniffed from the raw payload:
//
//   - API Gateway proxy events (httpMethod present): synchronous JSON
//     responses with per-path routing (/, /mcp, /sse, /fetch)
//   - Function URL events (requestContext.http present): every JSON-RPC
//     response ships as one text/event-stream data frame with status 200
//   - Direct invocations (method/jsonrpc present): the event is the
//     JSON-RPC request and the router's response is returned as-is
//
// Transport-level failures (undecodable bodies, unknown paths, unknown
// event shapes) are rejected before any JSON-RPC handling with a plain
// JSON error body, never a JSON-RPC error object.
package transport
