// Package mcp implements the Model Context Protocol method router.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This
// package provides the JSON-RPC 2.0 method layer that exposes the
// documentation tools to MCP clients (like Claude Desktop, other LLMs, or
// custom applications).
//
// # Protocol
//
// The router handles three methods:
//
//   - initialize: Protocol handshake, returns capabilities and server info
//   - tools/list: Tool discovery, returns tool schemas in JSON Schema format
//   - tools/call: Tool execution, returns results as MCP content blocks
//
// Any other method produces a -32601 "Method not found" error.
//
// # Error Handling
//
// The router distinguishes two failure planes. Protocol failures (unknown
// method, malformed params) produce a JSON-RPC error object with the
// standard codes. Tool failures (unknown tool name, provider errors) produce
// a SUCCESSFUL response whose text content describes the problem, because
// MCP clients surface tool output to the model and a hard protocol error
// would hide the failure from it.
//
// # Transport Independence
//
// The router knows nothing about HTTP, event streams, or Lambda events.
// Transports decode their framing into a Request, call Handle, and wrap the
// Response however their framing requires. See internal/transport.
package mcp
