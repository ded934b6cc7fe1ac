// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/obtuse.units/internal/platform/cmd"
	"github.com/louisbranch/obtuse.units/internal/platform/logging"
	mcpservice "github.com/louisbranch/obtuse.units/internal/services/mcp/service"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/app"
)

// Config holds MCP command configuration.
type Config struct {
	app.Settings

	HTTPAddr     string   `env:"MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	Transport    string   `env:"MCP_TRANSPORT"     envDefault:"stdio"`
	AllowedHosts []string `env:"MCP_ALLOWED_HOSTS" envSeparator:","`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite history path")
	fs.StringVar(&cfg.CatalogScript, "catalog", cfg.CatalogScript, "Lua catalog script")
	fs.Func("allowed-hosts", "comma-separated hosts accepted besides loopback", func(raw string) error {
		cfg.AllowedHosts = strings.Split(raw, ",")
		return nil
	})
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		// Stdout carries the stdio transport, so logs stay on stderr.
		logger, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: logging.Format(cfg.LogFormat),
			Writer: os.Stderr,
		})
		if err != nil {
			return err
		}
		svc, closeFn, err := app.Open(cfg.Settings, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeFn(); err != nil {
				logger.Warn("close history store", "error", err)
			}
		}()

		return mcpservice.Run(ctx, mcpservice.Config{
			Transport:    mcpservice.TransportKind(strings.ToLower(strings.TrimSpace(cfg.Transport))),
			HTTPAddr:     cfg.HTTPAddr,
			AllowedHosts: cfg.AllowedHosts,
			Service:      svc,
			Logger:       logger,
		})
	})
}
