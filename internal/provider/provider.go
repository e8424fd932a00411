// ABOUTME: Capability provider contract for documentation fetch, search, and recommendations.
// ABOUTME: Defines the per-request error sink and the result record types.

package provider

import (
	"context"
	"log/slog"
)

// SearchResult is a single documentation search hit. Context carries the
// excerpt surrounding the match and may be empty.
type SearchResult struct {
	RankOrder int
	Title     string
	URL       string
	Context   string
}

// Recommendation is a single related-page suggestion. Description may be empty.
type Recommendation struct {
	Title       string
	URL         string
	Description string
}

// ErrorSink receives diagnostic messages from capability operations. It is
// injected once per request and never affects control flow.
type ErrorSink interface {
	Error(msg string)
}

// Provider exposes the three documentation capabilities consumed by the
// dispatcher. Implementations perform network I/O and may block until the
// context is done.
type Provider interface {
	// ReadDocumentation fetches a documentation page, converts it to
	// markdown, and returns the [startIndex, startIndex+maxLength) window.
	ReadDocumentation(ctx context.Context, sink ErrorSink, url string, maxLength, startIndex int) (string, error)

	// SearchDocumentation runs a search and returns up to limit results in
	// relevance order.
	SearchDocumentation(ctx context.Context, sink ErrorSink, phrase string, limit int) ([]SearchResult, error)

	// Recommend returns related-page suggestions for a documentation URL.
	Recommend(ctx context.Context, sink ErrorSink, url string) ([]Recommendation, error)
}

// logSink is an ErrorSink backed by a structured logger.
type logSink struct {
	logger *slog.Logger
}

// NewLogSink returns an ErrorSink that records messages on the given logger.
func NewLogSink(logger *slog.Logger) ErrorSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSink{logger: logger}
}

func (s *logSink) Error(msg string) {
	s.logger.Error(msg)
}
