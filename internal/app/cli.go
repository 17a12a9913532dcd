package app

import "github.com/spf13/pflag"

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("endpoint", "e", "", "Coverage service endpoint (default https://coveralls.io)")
	flags.StringP("repo-token", "t", "", "Repository token, overrides COVERALLS_REPO_TOKEN and the config file")
	flags.StringP("config-file", "c", "", "Path of the YAML job configuration (default .coveralls.yml)")
	flags.StringP("repo-dir", "d", "", "Git repository to read commit and branch metadata from")
	flags.StringP("base-path", "b", "", "Directory source file names are made relative to")
	flags.Duration("timeout", 0, "HTTP submission timeout (default 30s)")
	flags.BoolP("dry-run", "n", false, "Build the job without submitting it")
	flags.Bool("include-source", false, "Embed source file contents in the payload")
	flags.StringSliceP("exclude", "x", nil, "Glob patterns of source files to leave out (comma-separated)")
	flags.IntP("parallelism", "j", 0, "Number of source files read concurrently (default 4)")
	flags.StringP("save-payload", "o", "", "Write the JSON payload to this path")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
}
