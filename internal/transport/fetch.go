// ABOUTME: Direct documentation fetch endpoint bypassing JSON-RPC entirely.
// ABOUTME: GET /fetch?url=... returns the converted page, optionally rendered as HTML.

package transport

import (
	"bytes"
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/2389/docs-gateway/internal/provider"
	"github.com/2389/docs-gateway/internal/tools"
)

// handleFetch serves GET /fetch. The url query parameter is required; the
// provider is called with the standard read defaults.
func (d *Dispatcher) handleFetch(ctx context.Context, query map[string]string) events.APIGatewayProxyResponse {
	url := query["url"]
	if url == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: 400,
			Headers:    corsJSONHeaders(),
			Body: mustJSON(map[string]any{
				"error": "URL parameter is required",
				"usage": "/fetch?url=https://docs.aws.amazon.com/...",
			}),
		}
	}

	requestID := fetchRequestID(ctx)
	sink := provider.NewLogSink(d.logger.With("endpoint", "fetch", "request_id", requestID))

	content, err := d.provider.ReadDocumentation(ctx, sink, url, tools.DefaultMaxLength, tools.DefaultStartIndex)
	if err != nil {
		d.logger.Error("fetch endpoint error", "url", url, "error", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Headers:    corsJSONHeaders(),
			Body: mustJSON(map[string]any{
				"error": err.Error(),
				"url":   url,
			}),
		}
	}

	if query["format"] == "html" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(content), &buf); err == nil {
			return events.APIGatewayProxyResponse{
				StatusCode: 200,
				Headers: map[string]string{
					"Content-Type":                "text/html; charset=utf-8",
					"Access-Control-Allow-Origin": "*",
				},
				Body: buf.String(),
			}
		}
		d.logger.Warn("markdown render failed, returning raw content", "url", url)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers:    corsJSONHeaders(),
		Body: mustJSON(map[string]any{
			"url":       url,
			"content":   content,
			"timestamp": requestID,
		}),
	}
}

// fetchRequestID returns the Lambda request ID when running under the
// runtime, and a generated ID otherwise (serve mode).
func fetchRequestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}
