package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"kirbymcp/internal/config"
	"kirbymcp/internal/kirby"
	"kirbymcp/internal/logging"
	"kirbymcp/internal/policy"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "kirby-mcp"

// Version is reported to MCP clients; the CLI overrides it at build time.
var Version = "dev"

const instructions = `Tools for a Kirby CMS project. Start with kirby_cli_commands to see what the
project's kirby CLI offers. Commands that change the project (make:*, clear:*)
need allowWrite=true on kirby_run_cli_command. Run kirby_install_commands once
before using kirby_render_page.`

// PolicyProvider returns the CLI policy to apply to the next tool call. A
// provider may return a usable policy together with an error when a reload
// failed.
type PolicyProvider interface {
	Policy() (*policy.Policy, error)
}

// Server represents an MCP server instance using mcp-go
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	policies  PolicyProvider
	runner    *kirby.Runner
	catalog   *catalogCache
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server for cfg.ProjectRoot with every tool registered.
func NewServer(cfg *config.Config, logger *logging.AppLogger) (*Server, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}

	source, err := cfg.PolicySource()
	if err != nil {
		return nil, fmt.Errorf("failed to load CLI policy: %w", err)
	}

	runner := kirby.NewRunner(logger)
	runner.Timeout = cfg.Timeout()

	return newServer(cfg, logger, source, runner), nil
}

func newServer(cfg *config.Config, logger *logging.AppLogger, policies PolicyProvider, runner *kirby.Runner) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		policies: policies,
		runner:   runner,
		catalog:  newCatalogCache(),
	}

	s.mcpServer = server.NewMCPServer(ServerName, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
		server.WithToolHandlerMiddleware(s.logToolCalls),
	)
	s.registerTools()

	return s
}

// Start serves MCP over the process's stdin and stdout until ctx is done or
// stdin is closed.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve runs the stdio transport on the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Starting MCP server",
		"projectRoot", s.config.ProjectRoot,
		"version", Version,
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(s.logger.StandardLog())

	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	s.logger.Info("MCP server stopped")
	return nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// bridge builds a Bridge with the current policy.
func (s *Server) bridge() (*kirby.Bridge, error) {
	p, err := s.policies.Policy()
	if p == nil {
		if err == nil {
			err = fmt.Errorf("no CLI policy available")
		}
		return nil, err
	}
	if err != nil {
		s.logger.Warn("Using previous CLI policy", "error", err)
	}
	return kirby.NewBridge(s.config.ProjectRoot, p, s.runner, s.logger), nil
}

func (s *Server) logToolCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.LogToolCall(req.Params.Name, req.GetArguments())
		result, err := next(ctx, req)
		if err != nil {
			s.logger.Error("Tool call failed", "tool", req.Params.Name, "error", err)
		} else if result != nil && result.IsError {
			s.logger.Debug("Tool returned an error result", "tool", req.Params.Name)
		}
		return result, err
	}
}
