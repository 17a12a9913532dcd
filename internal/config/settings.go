package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultEndpoint is the coverage service used when COVERALLS_ENDPOINT is unset.
const DefaultEndpoint = "https://coveralls.io"

// Settings holds the CLI settings. Job configuration (tokens, CI metadata)
// is resolved separately into a Config.
type Settings struct {
	Endpoint      string        `mapstructure:"endpoint"`
	RepoToken     string        `mapstructure:"repo_token"`
	ConfigFile    string        `mapstructure:"config_file"`
	RepoDir       string        `mapstructure:"repo_dir"`
	BasePath      string        `mapstructure:"base_path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DryRun        bool          `mapstructure:"dry_run"`
	IncludeSource bool          `mapstructure:"include_source"`
	Exclude       []string      `mapstructure:"exclude"`
	Parallelism   int           `mapstructure:"parallelism"`
	SavePayload   string        `mapstructure:"save_payload"`
	Verbose       bool          `mapstructure:"verbose"`
}

// LoadSettings loads settings from environment variables and defaults.
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("config_file", DefaultConfigFile)
	v.SetDefault("repo_dir", ".")
	v.SetDefault("base_path", ".")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("dry_run", false)
	v.SetDefault("include_source", false)
	v.SetDefault("parallelism", 4)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("COVERALLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("endpoint", "COVERALLS_ENDPOINT")
	_ = v.BindEnv("config_file", "COVERALLS_CONFIG_FILE")
	_ = v.BindEnv("repo_dir", "COVERALLS_REPO_DIR")
	_ = v.BindEnv("base_path", "COVERALLS_BASE_PATH")
	_ = v.BindEnv("timeout", "COVERALLS_TIMEOUT")
	_ = v.BindEnv("dry_run", "COVERALLS_DRY_RUN")
	_ = v.BindEnv("include_source", "COVERALLS_INCLUDE_SOURCE")
	_ = v.BindEnv("exclude", "COVERALLS_EXCLUDE")
	_ = v.BindEnv("parallelism", "COVERALLS_PARALLELISM")
	_ = v.BindEnv("save_payload", "COVERALLS_SAVE_PAYLOAD")
	_ = v.BindEnv("verbose", "COVERALLS_VERBOSE")

	if flags != nil {
		_ = v.BindPFlag("endpoint", flags.Lookup("endpoint"))
		_ = v.BindPFlag("repo_token", flags.Lookup("repo-token"))
		_ = v.BindPFlag("config_file", flags.Lookup("config-file"))
		_ = v.BindPFlag("repo_dir", flags.Lookup("repo-dir"))
		_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
		_ = v.BindPFlag("timeout", flags.Lookup("timeout"))
		_ = v.BindPFlag("dry_run", flags.Lookup("dry-run"))
		_ = v.BindPFlag("include_source", flags.Lookup("include-source"))
		_ = v.BindPFlag("exclude", flags.Lookup("exclude"))
		_ = v.BindPFlag("parallelism", flags.Lookup("parallelism"))
		_ = v.BindPFlag("save_payload", flags.Lookup("save-payload"))
		_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Comma-separated globs from the environment arrive as a single element
	excludeEnv := os.Getenv("COVERALLS_EXCLUDE")
	if excludeEnv != "" {
		if len(settings.Exclude) == 0 || (len(settings.Exclude) == 1 && strings.Contains(settings.Exclude[0], ",")) {
			settings.Exclude = strings.Split(excludeEnv, ",")
		}
	}
	for i := range settings.Exclude {
		settings.Exclude[i] = strings.TrimSpace(settings.Exclude[i])
	}
	settings.Exclude = filterEmptyStrings(settings.Exclude)

	settings.Endpoint = strings.TrimRight(settings.Endpoint, "/")
	settings.RepoDir = expandHomeDir(settings.RepoDir)
	settings.BasePath = expandHomeDir(settings.BasePath)

	return &settings, nil
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks settings for values that cannot work.
func ValidateSettings(s *Settings) error {
	u, err := url.Parse(s.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("endpoint must be an absolute http(s) URL, got: " + s.Endpoint)
	}

	if s.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if s.Parallelism <= 0 {
		return errors.New("parallelism must be positive")
	}

	for _, pattern := range s.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.New("invalid exclude pattern: " + pattern)
		}
	}

	return nil
}
