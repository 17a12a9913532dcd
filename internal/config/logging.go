package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: endpoint", "value", s.Endpoint)
	if s.RepoToken != "" {
		logger.InfoContext(ctx, "Config: repo_token", "value", "****")
	}
	logger.InfoContext(ctx, "Config: config_file", "value", s.ConfigFile)
	logger.InfoContext(ctx, "Config: repo_dir", "value", s.RepoDir)
	logger.InfoContext(ctx, "Config: base_path", "value", s.BasePath)
	if len(s.Exclude) > 0 {
		logger.InfoContext(ctx, "Config: exclude", "value", s.Exclude)
	}
	if s.DryRun {
		logger.InfoContext(ctx, "Config: dry_run", "value", true)
	}
	if s.SavePayload != "" {
		logger.InfoContext(ctx, "Config: save_payload", "value", s.SavePayload)
	}
}

// SettingsLogValue returns a slog.Value for Settings with masked data
func SettingsLogValue(s Settings) slog.Value {
	token := ""
	if s.RepoToken != "" {
		token = "****"
	}
	return slog.GroupValue(
		slog.String("endpoint", s.Endpoint),
		slog.String("repo_token", token),
		slog.String("config_file", s.ConfigFile),
		slog.Duration("timeout", s.Timeout),
		slog.Bool("dry_run", s.DryRun),
		slog.Int("parallelism", s.Parallelism),
	)
}

// ConfigLogValue returns a slog.Value for a job Config with the repo token masked
func ConfigLogValue(c *Config) slog.Value {
	attrs := make([]slog.Attr, 0, c.Len())
	for k, v := range c.All() {
		switch {
		case v == nil:
			attrs = append(attrs, slog.Any(k, nil))
		case k == "repo_token" || k == "repo_secret_token":
			attrs = append(attrs, slog.String(k, "****"))
		default:
			attrs = append(attrs, slog.String(k, *v))
		}
	}
	return slog.GroupValue(attrs...)
}
