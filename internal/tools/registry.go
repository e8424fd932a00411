// ABOUTME: Static registry binding the three documentation tools to the capability provider.
// ABOUTME: Holds the verbatim input schemas clients depend on and applies argument defaults.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389/docs-gateway/internal/provider"
)

// Default argument values applied when a caller omits them.
const (
	DefaultMaxLength   = 5000
	DefaultStartIndex  = 0
	DefaultSearchLimit = 10
)

// ErrInvalidArguments indicates the tool arguments could not be decoded.
// The router maps it to a JSON-RPC internal error rather than folding it
// into the result text.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// Descriptor is the schema-bearing metadata for one tool, serialized as-is
// into tools/list responses.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Handler executes a tool against raw JSON arguments and returns the
// formatted text block for the result.
type Handler func(ctx context.Context, sink provider.ErrorSink, args json.RawMessage) (string, error)

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor Descriptor
	handler    Handler
}

// Call decodes the arguments and invokes the handler.
func (t *Tool) Call(ctx context.Context, sink provider.ErrorSink, args json.RawMessage) (string, error) {
	return t.handler(ctx, sink, args)
}

// Registry is the immutable mapping from tool name to tool. It is built
// once at startup and safely shared by concurrent requests.
type Registry struct {
	order []string
	tools map[string]*Tool
}

// NewRegistry builds the registry over the given capability provider.
// The descriptor order is fixed: read_documentation, search_documentation,
// recommend.
func NewRegistry(p provider.Provider) *Registry {
	r := &Registry{tools: make(map[string]*Tool)}

	r.register(Tool{
		Descriptor: Descriptor{
			Name:        "read_documentation",
			Description: "Fetch and convert an AWS documentation page to markdown format",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"URL of the AWS documentation page to read"},"max_length":{"type":"integer","description":"Maximum number of characters to return","default":5000},"start_index":{"type":"integer","description":"Starting character index for pagination","default":0}},"required":["url"]}`),
		},
		handler: readDocumentationHandler(p),
	})

	r.register(Tool{
		Descriptor: Descriptor{
			Name:        "search_documentation",
			Description: "Search AWS documentation using the official AWS Documentation Search API",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"search_phrase":{"type":"string","description":"Search phrase to use"},"limit":{"type":"integer","description":"Maximum number of results to return","default":10}},"required":["search_phrase"]}`),
		},
		handler: searchDocumentationHandler(p),
	})

	r.register(Tool{
		Descriptor: Descriptor{
			Name:        "recommend",
			Description: "Get recommendations for AWS documentation and best practices for a specific topic",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"URL of the AWS documentation page to get recommendations for"}},"required":["url"]}`),
		},
		handler: recommendHandler(p),
	})

	return r
}

func (r *Registry) register(t Tool) {
	tool := t
	r.order = append(r.order, tool.Descriptor.Name)
	r.tools[tool.Descriptor.Name] = &tool
}

// Descriptors returns all tool descriptors in their fixed registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor)
	}
	return out
}

// Lookup finds a tool by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// readDocumentationHandler proxies read_documentation to the provider.
func readDocumentationHandler(p provider.Provider) Handler {
	return func(ctx context.Context, sink provider.ErrorSink, args json.RawMessage) (string, error) {
		var in struct {
			URL        string `json:"url"`
			MaxLength  *int   `json:"max_length"`
			StartIndex *int   `json:"start_index"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}

		maxLength := DefaultMaxLength
		if in.MaxLength != nil {
			maxLength = *in.MaxLength
		}
		startIndex := DefaultStartIndex
		if in.StartIndex != nil {
			startIndex = *in.StartIndex
		}

		return p.ReadDocumentation(ctx, sink, in.URL, maxLength, startIndex)
	}
}

// searchDocumentationHandler proxies search_documentation to the provider
// and renders the result records.
func searchDocumentationHandler(p provider.Provider) Handler {
	return func(ctx context.Context, sink provider.ErrorSink, args json.RawMessage) (string, error) {
		var in struct {
			SearchPhrase string `json:"search_phrase"`
			Limit        *int   `json:"limit"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}

		limit := DefaultSearchLimit
		if in.Limit != nil {
			limit = *in.Limit
		}

		results, err := p.SearchDocumentation(ctx, sink, in.SearchPhrase, limit)
		if err != nil {
			return "", err
		}
		return FormatSearchResults(in.SearchPhrase, results), nil
	}
}

// recommendHandler proxies recommend to the provider and renders the
// result records.
func recommendHandler(p provider.Provider) Handler {
	return func(ctx context.Context, sink provider.ErrorSink, args json.RawMessage) (string, error) {
		var in struct {
			URL string `json:"url"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return "", err
		}

		results, err := p.Recommend(ctx, sink, in.URL)
		if err != nil {
			return "", err
		}
		return FormatRecommendations(in.URL, results), nil
	}
}

// decodeArgs unmarshals raw arguments into the handler's input struct.
// A missing or null arguments object decodes to zero values so defaults
// apply; a type mismatch is an ErrInvalidArguments.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
