// ABOUTME: Lambda entrypoint for the documentation MCP server.
// ABOUTME: Wires the provider and dispatcher, then hands raw events to the transport sniffer.

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/2389/docs-gateway/internal/mcp"
	"github.com/2389/docs-gateway/internal/provider"
	"github.com/2389/docs-gateway/internal/store"
	"github.com/2389/docs-gateway/internal/tools"
	"github.com/2389/docs-gateway/internal/transport"
	"github.com/2389/docs-gateway/internal/ttlcache"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	dispatcher, cleanup, err := buildDispatcher(logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	lambda.Start(func(ctx context.Context, event json.RawMessage) (any, error) {
		return dispatcher.Dispatch(ctx, event), nil
	})
}

// buildDispatcher wires the full component stack from environment variables.
// The returned cleanup closes the caches; under Lambda it runs only when the
// execution environment is reclaimed, which is fine.
func buildDispatcher(logger *slog.Logger) (*transport.Dispatcher, func(), error) {
	ttl := envDuration("DOCS_CACHE_TTL", time.Hour)

	var pages *store.PageCache
	if path := os.Getenv("DOCS_CACHE_PATH"); path != "" {
		var err error
		pages, err = store.NewPageCache(path, ttl)
		if err != nil {
			// A broken cache should not take the function down.
			logger.Warn("page cache disabled", "path", path, "error", err)
			pages = nil
		}
	}

	memo := ttlcache.New(ttl, envInt("DOCS_MEMO_ENTRIES", 1024))

	docs := provider.NewAWSDocs(provider.AWSDocsConfig{
		SearchURL:          os.Getenv("DOCS_SEARCH_URL"),
		RecommendationsURL: os.Getenv("DOCS_RECOMMENDATIONS_URL"),
		UserAgent:          os.Getenv("DOCS_USER_AGENT"),
		Timeout:            envDuration("DOCS_HTTP_TIMEOUT", 30*time.Second),
		Pages:              pages,
		Memo:               memo,
		Logger:             logger.With("component", "provider"),
	})

	router, err := mcp.NewRouter(mcp.RouterConfig{
		Registry: tools.NewRegistry(docs),
		Logger:   logger.With("component", "router"),
	})
	if err != nil {
		return nil, nil, err
	}

	dispatcher, err := transport.NewDispatcher(transport.DispatcherConfig{
		Router:   router,
		Provider: docs,
		Logger:   logger.With("component", "transport"),
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		memo.Close()
		if pages != nil {
			pages.Close()
		}
	}
	return dispatcher, cleanup, nil
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
