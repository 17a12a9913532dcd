package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sha1n/coveralls-go/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "coveralls"
)

const longDescription = `Uploads an LCOV or Clover coverage report to Coveralls.
The report is read from report-file, or from standard input when it is omitted or "-".`

func main() {
	// A missing .env file is not an error
	_ = godotenv.Load()
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:          programName + " [report-file]",
		Short:        "Coverage report uploader",
		Long:         longDescription,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath := ""
			if len(args) == 1 {
				reportPath = args[0]
			}
			return runWithFlags(cmd.Context(), cmd.Flags(), reportPath, version)
		},
	}

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the coverage tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunMCPWithDeps(cmd.Context(), app.DefaultRunParams(), cmd.Flags(), version)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}} (` + build + `)
`)

	app.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(mcpCmd)
	rootCmd.SetArgs(args)

	return rootCmd.ExecuteContext(context.Background())
}

func runWithFlags(ctx context.Context, flags *pflag.FlagSet, reportPath, version string) error {
	return app.RunWithDeps(ctx, app.DefaultRunParams(), flags, reportPath, version)
}
