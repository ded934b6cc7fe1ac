package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/louisbranch/obtuse.units/internal/platform/logging"
	"github.com/louisbranch/obtuse.units/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "obtuse.units MCP"
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for HTTP transport.
	HTTPAddr string
	// AllowedHosts extends the loopback hosts accepted in Host and Origin
	// headers.
	AllowedHosts []string
	Service      domain.Obtuser
	Logger       *slog.Logger
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	logger    *slog.Logger
}

// New builds an MCP server exposing svc as tools and resources.
func New(svc domain.Obtuser, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("obtuse service is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: "Use obtusify for numeric SI quantities and obtusify_text for free text. " +
			"Pass a seed to get a reproducible answer.",
	})
	registerTools(mcpServer, svc)
	registerResources(mcpServer, svc)

	return &Server{mcpServer: mcpServer, logger: logger}, nil
}

func registerTools(server *mcp.Server, svc domain.Obtuser) {
	mcp.AddTool(server, domain.ObtusifyTool(), domain.ObtusifyHandler(svc))
	mcp.AddTool(server, domain.ObtusifyTextTool(), domain.ObtusifyTextHandler(svc))
	mcp.AddTool(server, domain.ReplayTool(), domain.ReplayHandler(svc))
	mcp.AddTool(server, domain.HistoryListTool(), domain.HistoryListHandler(svc))
}

func registerResources(server *mcp.Server, svc domain.Obtuser) {
	server.AddResource(domain.CatalogResource(), domain.CatalogResourceHandler(svc))
}

// Run is the service entrypoint for MCP and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := New(cfg.Service, cfg.Logger)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportHTTP {
		return NewHTTPTransport(cfg.HTTPAddr, server, cfg.AllowedHosts).Start(ctx)
	}
	return server.Serve(ctx)
}

// Serve runs the MCP server on stdio until it stops or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	s.logger.InfoContext(ctx, "serving MCP", "transport", fmt.Sprintf("%T", transport))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
