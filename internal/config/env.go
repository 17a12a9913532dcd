package config

import (
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// Env is a snapshot of environment variables.
type Env map[string]string

// Environ snapshots the process environment.
func Environ() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Get returns the value of name. Empty values are treated as absent.
func (e Env) Get(name string) (string, bool) {
	v, ok := e[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Has reports whether name is set to a non-empty value.
func (e Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// envBinding maps an environment variable onto a configuration key.
type envBinding struct {
	env string
	key string
}

var (
	genericCIBindings = []envBinding{
		{"CI_NAME", "service_name"},
		{"CI_BRANCH", "service_branch"},
		{"CI_BUILD_NUMBER", "service_number"},
		{"CI_BUILD_URL", "service_build_url"},
		{"CI_COMMIT", "commit_sha"},
		{"CI_JOB_ID", "service_job_id"},
	}

	coverallsBindings = []envBinding{
		{"COVERALLS_GIT_COMMIT", "commit_sha"},
		{"COVERALLS_PARALLEL", "parallel"},
		{"COVERALLS_RUN_AT", "run_at"},
		{"COVERALLS_GIT_BRANCH", "service_branch"},
		{"COVERALLS_SERVICE_JOB_ID", "service_job_id"},
		{"COVERALLS_SERVICE_NAME", "service_name"},
		{"COVERALLS_SERVICE_NUMBER", "service_number"},
		{"COVERALLS_FLAG_NAME", "flag_name"},
	}

	// repoTokenVars are checked in order; the first set variable wins.
	repoTokenVars = []string{"COVERALLS_REPO_TOKEN", "COVERALLS_TOKEN"}

	gitBindings = []envBinding{
		{"GIT_AUTHOR_NAME", "git_author_name"},
		{"GIT_AUTHOR_EMAIL", "git_author_email"},
		{"GIT_COMMITTER_NAME", "git_committer_name"},
		{"GIT_COMMITTER_EMAIL", "git_committer_email"},
		{"GIT_BRANCH", "git_branch"},
		{"GIT_ID", "git_id"},
		{"GIT_MESSAGE", "git_message"},
	}

	trailingDigits = regexp.MustCompile(`(\d+)$`)
)

// FromEnvironment builds the job configuration from env: generic CI
// variables, coveralls variables, raw git identity variables and finally the
// mapping of the detected CI provider. Absent variables are omitted.
func FromEnvironment(env Env) *Config {
	c := New()

	bind(c, env, genericCIBindings)
	if pr, ok := env.Get("CI_PULL_REQUEST"); ok {
		if m := trailingDigits.FindStringSubmatch(pr); m != nil {
			c.Set("service_pull_request", m[1])
		}
	}

	for _, name := range repoTokenVars {
		if token, ok := env.Get(name); ok {
			c.Set("repo_token", token)
			break
		}
	}
	bind(c, env, coverallsBindings)
	bind(c, env, gitBindings)

	if p, ok := DetectProvider(env, c); ok {
		slog.Debug("Detected CI provider", "provider", p)
		applyProvider(c, p, env)
	}

	return c
}

func bind(c *Config, env Env, bindings []envBinding) {
	for _, b := range bindings {
		if v, ok := env.Get(b.env); ok {
			c.Set(b.key, v)
		}
	}
}
