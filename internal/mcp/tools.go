package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kirbymcp/internal/config"
	"kirbymcp/internal/install"
	"kirbymcp/internal/kirby"
	"kirbymcp/internal/policy"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sourcegraph/conc"
)

// Tool names exposed to MCP clients.
const (
	ToolCLICommands     = "kirby_cli_commands"
	ToolRunCLICommand   = "kirby_run_cli_command"
	ToolInfo            = "kirby_info"
	ToolRenderPage      = "kirby_render_page"
	ToolInstallCommands = "kirby_install_commands"
)

// MaxTimeoutSeconds caps the per-call timeout an assistant may request.
const MaxTimeoutSeconds = 600

const renderCommand = "mcp:render"

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolCLICommands,
		mcp.WithDescription("List the commands offered by the project's kirby CLI, grouped by section."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), s.handleCLICommands)

	s.mcpServer.AddTool(mcp.NewTool(ToolRunCLICommand,
		mcp.WithDescription("Run one kirby CLI command in the project. Commands are checked against the "+
			"project's allow/deny policy; commands that modify the project require allowWrite=true."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Command name as listed by kirby_cli_commands, e.g. \"make:blueprint\""),
		),
		mcp.WithArray("arguments",
			mcp.Description("Arguments passed verbatim after the command"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("allowWrite",
			mcp.Description("Permit commands that change project files or caches"),
			mcp.DefaultBool(false),
		),
		mcp.WithNumber("timeoutSeconds",
			mcp.Description(fmt.Sprintf("Wall-clock limit for the command (1-%d, default from config)", MaxTimeoutSeconds)),
			mcp.Min(0),
			mcp.Max(MaxTimeoutSeconds),
		),
		mcp.WithDestructiveHintAnnotation(true),
	), s.handleRunCLICommand)

	s.mcpServer.AddTool(mcp.NewTool(ToolInfo,
		mcp.WithDescription("Report the kirby CLI version and the project's roots."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), s.handleInfo)

	s.mcpServer.AddTool(mcp.NewTool(ToolRenderPage,
		mcp.WithDescription("Render a page with the installed mcp:render helper and return the output."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Page id, e.g. \"home\" or \"notes/across-the-ocean\""),
		),
		mcp.WithString("contentType",
			mcp.Description("Content representation to render (default html)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), s.handleRenderPage)

	s.mcpServer.AddTool(mcp.NewTool(ToolInstallCommands,
		mcp.WithDescription("Install the kirby-mcp helper commands into site/commands of the project."),
		mcp.WithBoolean("force",
			mcp.Description("Overwrite helper files that already exist"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("dryRun",
			mcp.Description("Only report which files would be written"),
			mcp.DefaultBool(false),
		),
		mcp.WithDestructiveHintAnnotation(false),
	), s.handleInstallCommands)
}

type catalogResult struct {
	Binary     string              `json:"binary"`
	CLIVersion string              `json:"cliVersion,omitempty"`
	Sections   map[string][]string `json:"sections"`
	Commands   []string            `json:"commands"`
	Cached     bool                `json:"cached"`
}

func (s *Server) handleCLICommands(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.bridge()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("CLI policy unavailable", err), nil
	}

	decision := b.Policy.Evaluate(kirby.CatalogCommand, false)
	if !decision.Allowed {
		return mcp.NewToolResultError(denialMessage(decision)), nil
	}

	binary, err := s.runner.Binary(s.config.ProjectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if help, ok := s.catalog.get(binary); ok {
		return structuredResult(newCatalogResult(binary, help, true)), nil
	}

	outcome, err := b.Execute(ctx, kirby.Request{Command: kirby.CatalogCommand})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !outcome.Result.OK() {
		return mcp.NewToolResultError(failureMessage(kirby.CatalogCommand, *outcome.Result)), nil
	}

	var help kirby.ParsedHelp
	if found, err := kirby.DecodeJSON(outcome.Result.Stdout, &help); !found || err != nil {
		help = kirby.ParseHelp(outcome.Result.Stdout)
	}
	if help.Sections == nil {
		help.Sections = map[string][]string{}
	}
	if help.Commands == nil {
		help.Commands = []string{}
	}

	s.catalog.put(binary, help)
	return structuredResult(newCatalogResult(binary, help, false)), nil
}

func newCatalogResult(binary string, help kirby.ParsedHelp, cached bool) catalogResult {
	return catalogResult{
		Binary:     binary,
		CLIVersion: help.CLIVersion,
		Sections:   help.Sections,
		Commands:   help.Commands,
		Cached:     cached,
	}
}

type runResult struct {
	Command      string            `json:"command"`
	Arguments    []string          `json:"arguments"`
	ExitCode     int               `json:"exitCode"`
	Stdout       string            `json:"stdout"`
	Stderr       string            `json:"stderr"`
	TimedOut     bool              `json:"timedOut"`
	Payload      any               `json:"payload,omitempty"`
	PayloadError string            `json:"payloadError,omitempty"`
	Help         *kirby.ParsedHelp `json:"help,omitempty"`
}

func (s *Server) handleRunCLICommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return mcp.NewToolResultError("command must not be empty"), nil
	}

	args, err := stringArguments(req, "arguments")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	timeout, err := requestTimeout(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := s.bridge()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("CLI policy unavailable", err), nil
	}

	outcome, err := b.Execute(ctx, kirby.Request{
		Command:    command,
		Args:       args,
		AllowWrite: req.GetBool("allowWrite", false),
		Timeout:    timeout,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !outcome.Ran() {
		return mcp.NewToolResultError(denialMessage(outcome.Decision)), nil
	}

	result := runResult{
		Command:   command,
		Arguments: args,
		ExitCode:  outcome.Result.ExitCode,
		Stdout:    outcome.Result.Stdout,
		Stderr:    outcome.Result.Stderr,
		TimedOut:  outcome.Result.TimedOut,
		Payload:   outcome.Payload,
		Help:      outcome.Help,
	}
	if outcome.PayloadErr != nil {
		result.PayloadError = outcome.PayloadErr.Error()
	}

	toolResult := structuredResult(result)
	toolResult.IsError = !outcome.Result.OK()
	return toolResult, nil
}

type infoResult struct {
	ProjectRoot string   `json:"projectRoot"`
	Binary      string   `json:"binary"`
	Version     infoPart `json:"version"`
	Roots       infoPart `json:"roots"`
}

type infoPart struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output,omitempty"`
	Payload  any    `json:"payload,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	binary, err := s.runner.Binary(s.config.ProjectRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := s.bridge()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("CLI policy unavailable", err), nil
	}

	result := infoResult{ProjectRoot: s.config.ProjectRoot, Binary: binary}

	var wg conc.WaitGroup
	wg.Go(func() {
		result.Version = runInfoPart(ctx, b, "version")
	})
	wg.Go(func() {
		// The helper prints structured roots; plain `roots` is the fallback
		// for projects without installed helpers.
		roots := runInfoPart(ctx, b, "mcp:roots")
		if roots.Payload == nil {
			roots = runInfoPart(ctx, b, "roots")
		}
		result.Roots = roots
	})
	wg.Wait()

	return structuredResult(result), nil
}

func runInfoPart(ctx context.Context, b *kirby.Bridge, command string) infoPart {
	part := infoPart{Command: command}

	outcome, err := b.Execute(ctx, kirby.Request{Command: command})
	if err != nil {
		part.Error = err.Error()
		return part
	}
	if !outcome.Ran() {
		part.Error = denialMessage(outcome.Decision)
		return part
	}

	part.ExitCode = outcome.Result.ExitCode
	part.Output = strings.TrimSpace(outcome.Result.Stdout)
	part.Payload = outcome.Payload
	if !outcome.Result.OK() {
		part.Error = failureMessage(command, *outcome.Result)
	}
	return part
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id = strings.Trim(strings.TrimSpace(id), "/")
	if id == "" {
		return mcp.NewToolResultError("id must not be empty"), nil
	}

	args := []string{id}
	if contentType := strings.TrimSpace(req.GetString("contentType", "")); contentType != "" && contentType != "html" {
		args = append(args, "--template", contentType)
	}

	b, err := s.bridge()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("CLI policy unavailable", err), nil
	}

	outcome, err := b.Execute(ctx, kirby.Request{Command: renderCommand, Args: args})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !outcome.Ran() {
		return mcp.NewToolResultError(denialMessage(outcome.Decision)), nil
	}
	if !outcome.Result.OK() {
		return mcp.NewToolResultError(failureMessage(renderCommand, *outcome.Result)), nil
	}
	if outcome.PayloadErr != nil {
		return mcp.NewToolResultErrorFromErr("mcp:render printed an unreadable payload", outcome.PayloadErr), nil
	}
	if outcome.Payload == nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"mcp:render printed no payload; run %s to install the helper commands", ToolInstallCommands)), nil
	}

	page, _ := outcome.Payload.(map[string]any)
	if ok, isBool := page["ok"].(bool); isBool && !ok {
		toolResult := structuredResult(outcome.Payload)
		toolResult.IsError = true
		return toolResult, nil
	}

	if html, isString := page["html"].(string); isString {
		return mcp.NewToolResultStructured(outcome.Payload, html), nil
	}
	return structuredResult(outcome.Payload), nil
}

func (s *Server) handleInstallCommands(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := install.Install(s.config.ProjectRoot, install.Options{
		Force:  req.GetBool("force", false),
		DryRun: req.GetBool("dryRun", false),
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to install helper commands", err), nil
	}

	if !report.DryRun && len(report.Installed) > 0 {
		s.catalog.reset()
	}
	return structuredResult(report), nil
}

// denialMessage explains a policy rejection in terms the assistant can act on.
func denialMessage(d policy.Decision) string {
	switch {
	case strings.TrimSpace(d.Command) == "" || d.Denied():
		return d.Reason()
	case d.RequiresAllowWrite():
		return d.Reason() + "; call again with allowWrite=true"
	default:
		return fmt.Sprintf("%s; add it to cli.allow or cli.allowWrite in %s/%s",
			d.Reason(), config.ProjectConfigDir, config.ProjectConfigFile)
	}
}

func failureMessage(command string, r kirby.Result) string {
	if r.TimedOut {
		return fmt.Sprintf("kirby %s timed out", command)
	}
	detail := strings.TrimSpace(r.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(r.Stdout)
	}
	if detail == "" {
		return fmt.Sprintf("kirby %s exited with code %d", command, r.ExitCode)
	}
	return fmt.Sprintf("kirby %s exited with code %d: %s", command, r.ExitCode, detail)
}

func stringArguments(req mcp.CallToolRequest, key string) ([]string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return []string{}, nil
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, i)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}

// requestTimeout returns zero when the caller did not ask for a timeout, which
// makes the runner fall back to the configured one.
func requestTimeout(req mcp.CallToolRequest) (time.Duration, error) {
	seconds := req.GetFloat("timeoutSeconds", 0)
	switch {
	case seconds < 0:
		return 0, errors.New("timeoutSeconds must not be negative")
	case seconds > MaxTimeoutSeconds:
		return 0, fmt.Errorf("timeoutSeconds must be at most %d", MaxTimeoutSeconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func structuredResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err)
	}
	return mcp.NewToolResultStructured(v, string(data))
}
