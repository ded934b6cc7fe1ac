package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var listenTCP = net.Listen

const (
	defaultHTTPAddr = "localhost:8081"

	// defaultShutdownTimeout bounds graceful HTTP shutdown.
	defaultShutdownTimeout = 10 * time.Second

	readHeaderTimeout = 5 * time.Second
)

// HTTPTransport serves an MCP server over streamable HTTP on /mcp, with a
// health check on /mcp/health.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	server       *Server
	httpServer   *http.Server
}

// NewHTTPTransport returns a transport for server. An empty addr binds to
// localhost only.
func NewHTTPTransport(addr string, server *Server, allowedHosts []string) *HTTPTransport {
	if addr == "" {
		addr = defaultHTTPAddr
	}
	return &HTTPTransport{
		addr:         addr,
		allowedHosts: parseAllowedHosts(allowedHosts),
		server:       server,
	}
}

// Handler returns the HTTP routes of the transport.
func (t *HTTPTransport) Handler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.server.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if err := t.validateLocalRequest(r); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		streamable.ServeHTTP(w, r)
	})
	mux.HandleFunc("/mcp/health", t.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if t.server == nil || t.server.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}

	t.httpServer = &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	t.server.logger.InfoContext(ctx, "starting MCP HTTP server", "addr", listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.server.logger.Info("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
