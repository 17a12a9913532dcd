package client

import (
	"fmt"

	"github.com/sha1n/coveralls-go/internal/config"
	"github.com/sha1n/coveralls-go/internal/git"
	"github.com/sha1n/coveralls-go/internal/report"
)

// OptionsFromSettings builds production client options: an HTTP transport
// bounded by the settings timeout and git metadata read from RepoDir.
// A repo token given in the settings overrides the resolved configuration.
func OptionsFromSettings(s *config.Settings, userAgent string) (Options, error) {
	filter, err := report.NewFilter(s.Exclude)
	if err != nil {
		return Options{}, fmt.Errorf("invalid exclude patterns: %w", err)
	}

	overrides := config.New()
	if s.RepoToken != "" {
		overrides.Set("repo_token", s.RepoToken)
	}

	return Options{
		Endpoint:   s.Endpoint,
		Transport:  NewHTTPTransport(s.Timeout, userAgent),
		Git:        git.NewClient(),
		RepoDir:    s.RepoDir,
		ConfigFile: s.ConfigFile,
		Overrides:  overrides,
		Parser: report.Options{
			BasePath:      s.BasePath,
			IncludeSource: s.IncludeSource,
			Filter:        filter,
			Parallelism:   s.Parallelism,
		},
		DryRun:      s.DryRun,
		SavePayload: s.SavePayload,
	}, nil
}
