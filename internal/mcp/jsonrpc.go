// ABOUTME: JSON-RPC 2.0 request/response envelope types shared by all transports.
// ABOUTME: Provides response builders so every code path yields a well-formed envelope.

package mcp

import "encoding/json"

// Standard JSON-RPC error codes used by the dispatcher.
const (
	JSONRPCParseError     = -32700
	JSONRPCMethodNotFound = -32601
	JSONRPCInternalError  = -32603
)

// Request represents a JSON-RPC 2.0 request. Method and Params are
// caller-controlled and untrusted. A missing ID denotes a notification;
// the dispatcher does not special-case notifications and echoes the ID
// (null included) verbatim.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response. Exactly one of Result or
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result for tools/call. This dispatcher always
// produces exactly one text content block.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// Content represents a content block in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextResult wraps a string as a single-block tools/call result.
func TextResult(text string) CallToolResult {
	return CallToolResult{Content: []Content{{Type: "text", Text: text}}}
}

// NewResult builds a successful response echoing the given request ID.
func NewResult(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

// NewError builds an error response echoing the given request ID.
func NewError(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message}}
}
