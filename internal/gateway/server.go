// ABOUTME: Standalone HTTP server hosting the documentation endpoints on a plain listener.
// ABOUTME: Translates net/http requests into transport events so the method logic exists once.

package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/2389/docs-gateway/internal/transport"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Server exposes the dispatcher's endpoints (/, /fetch, /mcp, /sse) over a
// plain HTTP listener. Each request is translated into the matching
// Lambda-shaped event and funneled through the same transport adapters the
// Lambda entrypoint uses, so there is a single copy of the method-handling
// logic.
type Server struct {
	dispatcher *transport.Dispatcher
	logger     *slog.Logger
	httpServer *http.Server
}

// Config holds configuration for the gateway server.
type Config struct {
	Addr       string
	Dispatcher *transport.Dispatcher
	Logger     *slog.Logger
}

// NewServer creates a gateway server listening on cfg.Addr.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if cfg.Addr == "" {
		return nil, errors.New("listen address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "gateway")
	}

	s := &Server{dispatcher: cfg.Dispatcher, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handle translates one HTTP request into a transport event and writes the
// adapter's response back.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	logger := s.logger.With("request_id", requestID)

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	logger.Debug("gateway request", "method", r.Method, "path", r.URL.Path)

	// The SSE endpoint uses the event-stream adapter's framing; everything
	// else goes through the synchronous adapter.
	if r.Method != http.MethodOptions && strings.HasPrefix(r.URL.Path, "/sse") {
		event := events.LambdaFunctionURLRequest{
			RawPath: r.URL.Path,
			Body:    string(body),
		}
		event.RequestContext.HTTP.Method = r.Method
		event.RequestContext.HTTP.Path = r.URL.Path
		event.RequestContext.RequestID = requestID

		resp := s.dispatcher.HandleFunctionURL(r.Context(), event)
		writeResponse(w, resp.StatusCode, resp.Headers, resp.Body)
		return
	}

	query := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	event := events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		QueryStringParameters: query,
		Body:                  string(body),
	}

	resp := s.dispatcher.HandleAPIGateway(r.Context(), event)
	writeResponse(w, resp.StatusCode, resp.Headers, resp.Body)
}

// writeResponse copies an adapter response onto the HTTP response writer.
func writeResponse(w http.ResponseWriter, status int, headers map[string]string, body string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
