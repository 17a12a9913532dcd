package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/coveralls-go/internal/client"
	"github.com/sha1n/coveralls-go/internal/config"
	"github.com/sha1n/coveralls-go/internal/domain"
	"github.com/sha1n/coveralls-go/internal/report"
)

// ParseArgument defines parse_coverage parameters.
type ParseArgument struct {
	Report   string `json:"report" jsonschema:"Raw LCOV or Clover XML coverage report"`
	BasePath string `json:"base_path,omitempty" jsonschema:"Directory source file paths are resolved against"`
}

// UploadArgument defines upload_coverage parameters.
type UploadArgument struct {
	Report    string `json:"report" jsonschema:"Raw LCOV or Clover XML coverage report"`
	BasePath  string `json:"base_path,omitempty" jsonschema:"Directory source file paths are resolved against"`
	RepoToken string `json:"repo_token,omitempty" jsonschema:"Repository token, overrides the environment and config file"`
	DryRun    bool   `json:"dry_run,omitempty" jsonschema:"Build the job without submitting it"`
}

// ParseHandler handles the parse_coverage MCP tool.
type ParseHandler struct {
	opts client.Options
}

// NewParseHandler creates a new parse handler.
func NewParseHandler(opts client.Options) *ParseHandler {
	return &ParseHandler{opts: opts}
}

// Handle parses the report and returns a coverage summary and the job payload.
func (h *ParseHandler) Handle(ctx context.Context, _ *mcp.CallToolRequest, args ParseArgument) (*mcp.CallToolResult, any, error) {
	parser := h.opts.Parser
	if args.BasePath != "" {
		parser.BasePath = args.BasePath
	}

	job, format, err := report.Parse(ctx, args.Report, parser)
	if err != nil {
		return errorResult("Failed to parse report: %s", err), nil, nil
	}

	payload, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return errorResult("Failed to serialize job: %s", err), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Format: %s\n", format)
	writeSummary(&sb, report.Summarize(job))
	sb.WriteString("\nPayload:\n")
	sb.Write(payload)

	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *ParseHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "parse_coverage",
		Description: "Parse an LCOV or Clover coverage report and summarize line coverage without submitting it",
	}
}

// RegisterParseTool registers the parse tool with an MCP server.
func RegisterParseTool(server *mcp.Server, opts client.Options) {
	handler := NewParseHandler(opts)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

// UploadHandler handles the upload_coverage MCP tool.
type UploadHandler struct {
	opts client.Options
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(opts client.Options) *UploadHandler {
	return &UploadHandler{opts: opts}
}

// Handle parses the report and submits it to the coverage service.
func (h *UploadHandler) Handle(ctx context.Context, _ *mcp.CallToolRequest, args UploadArgument) (*mcp.CallToolResult, any, error) {
	opts := h.opts
	if args.BasePath != "" {
		opts.Parser.BasePath = args.BasePath
	}
	if args.DryRun {
		opts.DryRun = true
	}
	if args.RepoToken != "" {
		overrides := config.New()
		if opts.Overrides != nil {
			overrides = opts.Overrides.Clone()
		}
		opts.Overrides = overrides.Set("repo_token", args.RepoToken)
	}

	c := client.New(opts)
	job, err := c.Upload(ctx, args.Report)
	if err != nil {
		return errorResult("Upload failed: %s", err), nil, nil
	}

	var sb strings.Builder
	if opts.DryRun {
		fmt.Fprintf(&sb, "Dry run: job for %s was not submitted\n", c.SubmitURL())
	} else {
		fmt.Fprintf(&sb, "Submitted job to %s\n", c.SubmitURL())
	}
	writeJobIdentity(&sb, job)
	writeSummary(&sb, report.Summarize(job))

	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *UploadHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "upload_coverage",
		Description: "Parse an LCOV or Clover coverage report and submit it to the coverage service",
	}
}

// RegisterUploadTool registers the upload tool with an MCP server.
func RegisterUploadTool(server *mcp.Server, opts client.Options) {
	handler := NewUploadHandler(opts)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func writeJobIdentity(sb *strings.Builder, job *domain.Job) {
	if job.ServiceName != "" {
		fmt.Fprintf(sb, "Service: %s", job.ServiceName)
		if job.ServiceNumber != "" {
			fmt.Fprintf(sb, " #%s", job.ServiceNumber)
		}
		sb.WriteString("\n")
	}
	if branch := job.Branch(); branch != "" {
		fmt.Fprintf(sb, "Branch: %s\n", branch)
	}
}

func writeSummary(sb *strings.Builder, s report.Summary) {
	fmt.Fprintf(sb, "Files: %d\n", len(s.Files))
	for _, f := range s.Files {
		fmt.Fprintf(sb, "  %s: %d/%d lines (%.2f%%)\n", f.Name, f.Covered, f.Relevant, f.Percent)
	}
	fmt.Fprintf(sb, "Total: %d/%d lines (%.2f%%)\n", s.Covered, s.Relevant, s.Percent)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(format string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, err)},
		},
		IsError: true,
	}
}
