// Package server wires the gateway together: it loads and merges the OpenAPI
// documents, builds the capability catalog, applies the parameter redaction,
// and runs the MCP protocol server over streamable HTTP or stdio.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/quortexio/unimcp/pkg/apispec"
	"github.com/quortexio/unimcp/pkg/auth"
	"github.com/quortexio/unimcp/pkg/config"
	"github.com/quortexio/unimcp/pkg/logger"
	"github.com/quortexio/unimcp/pkg/routes"
	"github.com/quortexio/unimcp/pkg/runtime"
	"github.com/quortexio/unimcp/pkg/transform"
)

// Unified info applied to the merged document, discarding source values.
const (
	unifiedTitle       = "Quortex Unified API (MCP)"
	unifiedDescription = "Unified MCP server for Quortex.io services"
)

const (
	// defaultReadHeaderTimeout prevents slowloris attacks by limiting time to read request headers.
	defaultReadHeaderTimeout = 10 * time.Second

	// defaultReadTimeout is the maximum duration for reading the entire request, including body.
	defaultReadTimeout = 30 * time.Second

	// defaultWriteTimeout is the maximum duration before timing out writes of the response.
	defaultWriteTimeout = 30 * time.Second

	// defaultIdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	defaultIdleTimeout = 120 * time.Second

	// defaultShutdownTimeout is the maximum time to wait for graceful shutdown.
	defaultShutdownTimeout = 10 * time.Second
)

// Server is the unified API MCP gateway. Construct it with New; there is no
// package-level instance.
type Server struct {
	cfg       config.Config
	mcpServer *mcpserver.MCPServer
	merged    apispec.Document

	httpServer *http.Server
}

// New builds a gateway from the given configuration. Spec loading, merging,
// validation, and capability construction all happen here, once, before any
// request traffic exists; every error is fatal and no server is returned.
func New(ctx context.Context, cfg config.Config, version string) (*Server, error) {
	cfg.EnsureDefaults()
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	docs, err := apispec.LoadDir(cfg.SpecDir)
	if err != nil {
		return nil, err
	}

	merged := apispec.MergeAll(docs)
	apispec.SetUnifiedInfo(merged, unifiedTitle, unifiedDescription)

	client := &http.Client{}
	strategy := auth.NewStrategy(cfg, client)

	builder := runtime.NewBuilder(cfg.API.BaseURL, routes.DefaultRules(), strategy, client)
	catalog, err := builder.Build(ctx, merged)
	if err != nil {
		return nil, err
	}

	if cfg.DefaultOrg != "" {
		catalog.Tools = transform.NewOrgRedactor(cfg.DefaultOrg).Apply(catalog.Tools)
	}

	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithLogging(),
	)
	mcpServer.AddTools(catalog.Tools...)
	for _, res := range catalog.Resources {
		mcpServer.AddResource(res.Resource, res.Handler)
	}
	for _, tmpl := range catalog.ResourceTemplates {
		mcpServer.AddResourceTemplate(tmpl.ResourceTemplate, tmpl.Handler)
	}

	return &Server{
		cfg:       cfg,
		mcpServer: mcpServer,
		merged:    merged,
	}, nil
}

// MergedDocument returns the merged OpenAPI document the server was built
// from. It is produced once at construction and must be treated as immutable.
func (s *Server) MergedDocument() apispec.Document {
	return s.merged
}

// Serve runs the gateway over streamable HTTP until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	streamable := mcpserver.NewStreamableHTTPServer(
		s.mcpServer,
		mcpserver.WithEndpointPath(s.cfg.Server.EndpointPath),
	)

	var mcpHandler http.Handler = streamable
	if s.cfg.Server.AuthToken != "" {
		mcpHandler = auth.StaticTokenMiddleware(s.cfg.Server.AuthToken)(mcpHandler)
		logger.Info("Static token verification enabled for the MCP endpoint")
	} else {
		logger.Warn("No server token configured; MCP endpoint accepts unauthenticated access")
	}

	mux := chi.NewRouter()
	mux.Get("/health", s.handleHealth)
	mux.Handle(s.cfg.Server.EndpointPath, mcpHandler)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	logger.Infof("Starting %s at http://%s%s", s.cfg.Name, listener.Addr(), s.cfg.Server.EndpointPath)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// ServeStdio runs the gateway over stdio for local MCP clients.
func (s *Server) ServeStdio(ctx context.Context) error {
	logger.Infof("Starting %s on stdio", s.cfg.Name)
	return mcpserver.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
