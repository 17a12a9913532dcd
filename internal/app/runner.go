package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/coveralls-go/internal/client"
	"github.com/sha1n/coveralls-go/internal/config"
	mcputil "github.com/sha1n/coveralls-go/internal/mcp"
	"github.com/sha1n/coveralls-go/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// StdinPath selects standard input as the report source.
const StdinPath = "-"

// RunParams contains dependencies for the run functions
type RunParams struct {
	LoadSettings     func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings    func(*config.Settings) error
	NewClientOptions func(*config.Settings, string) (client.Options, error)
	// FS is used to read the report and source files.
	FS                afero.Fs
	Stdin             io.Reader
	Stdout            io.Writer
	Stderr            io.Writer
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:     config.LoadSettingsWithFlags,
		ValidSettings:    config.ValidateSettings,
		NewClientOptions: client.OptionsFromSettings,
		FS:               afero.NewOsFs(),
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
	}
}

// RunWithDeps uploads the report at reportPath, or standard input when the
// path is empty or StdinPath.
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, reportPath, version string) error {
	settings, opts, err := prepare(params, flags, version)
	if err != nil {
		return err
	}

	input, err := readReport(params, reportPath)
	if err != nil {
		return err
	}

	job, err := client.New(opts).Upload(ctx, input)
	if err != nil {
		return err
	}

	summary := report.Summarize(job)
	verb := "Submitted"
	if settings.DryRun {
		verb = "Prepared (dry run)"
	}
	_, _ = fmt.Fprintf(params.Stdout, "%s coverage for %d files: %d/%d lines (%.2f%%)\n",
		verb, len(summary.Files), summary.Covered, summary.Relevant, summary.Percent)
	return nil
}

// RunMCPWithDeps serves the coverage tools over stdio.
func RunMCPWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	_, opts, err := prepare(params, flags, version)
	if err != nil {
		return err
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:    "coveralls-mcp",
		Version: version,
		Client:  opts,
	})

	// Use custom transport if provided (for testing), otherwise use stdio
	transport := params.CustomIOTransport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	slog.Info("Starting MCP server", "transport", "stdio")
	return server.Run(ctx, transport)
}

func prepare(params RunParams, flags *pflag.FlagSet, version string) (*config.Settings, client.Options, error) {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, client.Options{}, fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings for values that cannot work
	if err := params.ValidSettings(settings); err != nil {
		return nil, client.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr, stdout carries results and MCP traffic
	stderr := params.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	level := slog.LevelInfo
	if settings.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	slog.Debug("Starting coveralls", "version", version)
	if settings.Verbose {
		config.Log(settings)
	}

	opts, err := params.NewClientOptions(settings, "coveralls-go/"+version)
	if err != nil {
		return nil, client.Options{}, err
	}
	if params.FS != nil {
		opts.Parser.FS = params.FS
	}
	return settings, opts, nil
}

func readReport(params RunParams, path string) (string, error) {
	if path == "" || path == StdinPath {
		if params.Stdin == nil {
			return "", fmt.Errorf("no report file given and no standard input available")
		}
		data, err := io.ReadAll(params.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read report from stdin: %w", err)
		}
		return string(data), nil
	}

	fs := params.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}
	return string(data), nil
}
