// ABOUTME: Entry point for the docs-gateway documentation MCP server.
// ABOUTME: Hosts the JSON-RPC dispatcher endpoints on a standalone HTTP listener.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/docs-gateway/internal/config"
	"github.com/2389/docs-gateway/internal/gateway"
	"github.com/2389/docs-gateway/internal/mcp"
	"github.com/2389/docs-gateway/internal/provider"
	"github.com/2389/docs-gateway/internal/store"
	"github.com/2389/docs-gateway/internal/tools"
	"github.com/2389/docs-gateway/internal/transport"
	"github.com/2389/docs-gateway/internal/ttlcache"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// getConfigPath returns the path to the gateway config file.
// Priority: DOCS_GATEWAY_CONFIG env var > XDG_CONFIG_HOME/docs-gateway/gateway.yaml > ~/.config/docs-gateway/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("DOCS_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "docs-gateway", "gateway.yaml")
}

// getDataPath returns the path to the docs-gateway data directory.
// Priority: XDG_DATA_HOME/docs-gateway > ~/.local/share/docs-gateway
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "docs-gateway")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: docs-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the documentation MCP server")
		fmt.Println("  health    Check server health")
		fmt.Println("  version   Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file if present, falling back to defaults.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		return config.Default(), "(defaults)", nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

func runServe(ctx context.Context) error {
	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("  ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("  ▶ ")
	fmt.Printf("HTTP:   %s\n", cfg.Server.HTTPAddr)
	fmt.Println()

	logger.Info("starting docs-gateway",
		"version", version,
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	cachePath := cfg.Documentation.Cache.Path
	if cachePath == "" {
		cachePath = filepath.Join(getDataPath(), "pages.db")
	}
	pages, err := store.NewPageCache(cachePath, cfg.Documentation.Cache.TTL)
	if err != nil {
		return fmt.Errorf("opening page cache: %w", err)
	}
	defer pages.Close()

	memo := ttlcache.New(cfg.Documentation.Cache.TTL, cfg.Documentation.Cache.MemoEntries)
	defer memo.Close()

	docs := provider.NewAWSDocs(provider.AWSDocsConfig{
		SearchURL:          cfg.Documentation.SearchURL,
		RecommendationsURL: cfg.Documentation.RecommendationsURL,
		UserAgent:          cfg.Documentation.UserAgent,
		Timeout:            cfg.Documentation.Timeout,
		Pages:              pages,
		Memo:               memo,
		Logger:             logger.With("component", "provider"),
	})

	registry := tools.NewRegistry(docs)

	router, err := mcp.NewRouter(mcp.RouterConfig{
		Registry: registry,
		Logger:   logger.With("component", "router"),
	})
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}

	dispatcher, err := transport.NewDispatcher(transport.DispatcherConfig{
		Router:   router,
		Provider: docs,
		Logger:   logger.With("component", "transport"),
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	srv, err := gateway.NewServer(gateway.Config{
		Addr:       cfg.Server.HTTPAddr,
		Dispatcher: dispatcher,
		Logger:     logger.With("component", "gateway"),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.ListenAndServe(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := strings.TrimPrefix(cfg.Server.HTTPAddr, "http://")
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	url := fmt.Sprintf("http://%s/", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
