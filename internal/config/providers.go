package config

import "strings"

// Provider identifies a CI system.
type Provider string

// Supported CI providers
const (
	ProviderTravis    Provider = "travis"
	ProviderCircleCI  Provider = "circleci"
	ProviderJenkins   Provider = "jenkins"
	ProviderAppVeyor  Provider = "appveyor"
	ProviderGitLab    Provider = "gitlab"
	ProviderGitHub    Provider = "github"
	ProviderBuildkite Provider = "buildkite"
	ProviderSemaphore Provider = "semaphore"
	ProviderDrone     Provider = "drone"
	ProviderWercker   Provider = "wercker"
	ProviderCodefresh Provider = "codefresh"
	ProviderAzure     Provider = "azure"
	ProviderSurf      Provider = "surf"
	ProviderCodeship  Provider = "codeship"
)

// Mapper turns an environment snapshot into the provider's configuration.
type Mapper func(env Env) *Config

type providerEntry struct {
	provider Provider
	// marker is the variable whose presence identifies the provider.
	marker string
	mapper Mapper
	// canonicalName is the service name the mapper sets. When non-empty, a
	// service name configured before detection that differs from it is kept.
	canonicalName string
}

// detectionOrder lists marker-detected providers by priority.
var detectionOrder = []providerEntry{
	{provider: ProviderTravis, marker: "TRAVIS", mapper: travisConfig, canonicalName: "travis-ci"},
	{provider: ProviderCircleCI, marker: "CIRCLECI", mapper: circleConfig},
	{provider: ProviderJenkins, marker: "JENKINS_URL", mapper: jenkinsConfig},
	{provider: ProviderAppVeyor, marker: "APPVEYOR", mapper: appveyorConfig},
	{provider: ProviderGitLab, marker: "GITLAB_CI", mapper: gitlabConfig},
	{provider: ProviderGitHub, marker: "GITHUB_ACTIONS", mapper: githubConfig},
	{provider: ProviderBuildkite, marker: "BUILDKITE", mapper: buildkiteConfig},
	{provider: ProviderSemaphore, marker: "SEMAPHORE", mapper: semaphoreConfig},
	{provider: ProviderDrone, marker: "DRONE", mapper: droneConfig},
	{provider: ProviderWercker, marker: "WERCKER", mapper: werckerConfig},
	{provider: ProviderCodefresh, marker: "CF_BRANCH", mapper: codefreshConfig},
	{provider: ProviderAzure, marker: "TF_BUILD", mapper: azureConfig},
	{provider: ProviderSurf, marker: "SURF_SHA1", mapper: surfConfig},
}

// codeshipEntry is detected by service name rather than a marker variable.
var codeshipEntry = providerEntry{provider: ProviderCodeship, mapper: codeshipConfig}

var registry = func() map[Provider]providerEntry {
	m := make(map[Provider]providerEntry, len(detectionOrder)+1)
	for _, e := range detectionOrder {
		m[e.provider] = e
	}
	m[codeshipEntry.provider] = codeshipEntry
	return m
}()

// DetectProvider returns the CI provider for env. Marker variables are
// checked in priority order; codeship is recognized from the service name
// already present in local only when no marker matches.
func DetectProvider(env Env, local *Config) (Provider, bool) {
	for _, e := range detectionOrder {
		if env.Has(e.marker) {
			return e.provider, true
		}
	}
	if local != nil && local.GetOr("service_name", "") == string(ProviderCodeship) {
		return ProviderCodeship, true
	}
	return "", false
}

// ProviderConfiguration runs the mapper registered for p.
func ProviderConfiguration(p Provider, env Env) (*Config, bool) {
	e, ok := registry[p]
	if !ok {
		return nil, false
	}
	return e.mapper(env), true
}

// Providers returns all registered providers in detection order.
func Providers() []Provider {
	out := make([]Provider, 0, len(detectionOrder)+1)
	for _, e := range detectionOrder {
		out = append(out, e.provider)
	}
	return append(out, codeshipEntry.provider)
}

func applyProvider(c *Config, p Provider, env Env) {
	e := registry[p]
	localName, hasLocal := c.Get("service_name")
	c.Merge(e.mapper(env))
	if e.canonicalName != "" && hasLocal && localName != e.canonicalName {
		c.Set("service_name", localName)
	}
}

// mapping builds a Config from env, skipping absent variables.
func mapping(env Env, bindings ...envBinding) *Config {
	c := New()
	bind(c, env, bindings)
	return c
}

func travisConfig(env Env) *Config {
	c := New().Set("service_name", "travis-ci")
	bind(c, env, []envBinding{
		{"TRAVIS_JOB_ID", "service_job_id"},
		{"TRAVIS_BUILD_NUMBER", "service_number"},
		{"TRAVIS_BRANCH", "service_branch"},
		{"TRAVIS_COMMIT", "commit_sha"},
	})
	if pr, ok := env.Get("TRAVIS_PULL_REQUEST"); ok && pr != "false" {
		c.Set("service_pull_request", pr)
	}
	return c
}

func circleConfig(env Env) *Config {
	c := New().Set("service_name", "circleci")
	bind(c, env, []envBinding{
		{"CIRCLE_BUILD_NUM", "service_job_id"},
		{"CIRCLE_WORKFLOW_ID", "service_number"},
		{"CIRCLE_BRANCH", "service_branch"},
		{"CIRCLE_SHA1", "commit_sha"},
	})
	if pr, ok := env.Get("CI_PULL_REQUEST"); ok {
		if _, num, found := strings.Cut(pr, "/pull/"); found && num != "" {
			c.Set("service_pull_request", num)
		}
	}
	return c
}

func jenkinsConfig(env Env) *Config {
	c := New().Set("service_name", "jenkins")
	bind(c, env, []envBinding{
		{"BUILD_ID", "service_job_id"},
		{"BUILD_NUMBER", "service_number"},
		{"GIT_COMMIT", "commit_sha"},
		{"CHANGE_ID", "service_pull_request"},
		{"ghprbPullId", "service_pull_request"},
	})
	if branch, ok := env.Get("GIT_BRANCH"); ok {
		c.Set("service_branch", branch)
	} else if branch, ok := env.Get("BRANCH_NAME"); ok {
		c.Set("service_branch", branch)
	}
	return c
}

func appveyorConfig(env Env) *Config {
	return New().Set("service_name", "appveyor").Merge(mapping(env,
		envBinding{"APPVEYOR_BUILD_ID", "service_job_id"},
		envBinding{"APPVEYOR_BUILD_NUMBER", "service_number"},
		envBinding{"APPVEYOR_REPO_BRANCH", "service_branch"},
		envBinding{"APPVEYOR_REPO_COMMIT", "commit_sha"},
		envBinding{"APPVEYOR_PULL_REQUEST_NUMBER", "service_pull_request"},
	))
}

func gitlabConfig(env Env) *Config {
	return New().Set("service_name", "gitlab-ci").Merge(mapping(env,
		envBinding{"CI_JOB_ID", "service_job_id"},
		envBinding{"CI_PIPELINE_IID", "service_number"},
		envBinding{"CI_COMMIT_REF_NAME", "service_branch"},
		envBinding{"CI_COMMIT_SHA", "commit_sha"},
		envBinding{"CI_MERGE_REQUEST_IID", "service_pull_request"},
	))
}

func githubConfig(env Env) *Config {
	c := New().Set("service_name", "github")
	bind(c, env, []envBinding{
		{"GITHUB_RUN_ID", "service_job_id"},
		{"GITHUB_RUN_NUMBER", "service_number"},
		{"GITHUB_SHA", "commit_sha"},
	})

	ref, _ := env.Get("GITHUB_REF")
	switch {
	case strings.HasPrefix(ref, "refs/pull/"):
		num, _, _ := strings.Cut(strings.TrimPrefix(ref, "refs/pull/"), "/")
		if num != "" {
			c.Set("service_pull_request", num)
		}
		if head, ok := env.Get("GITHUB_HEAD_REF"); ok {
			c.Set("service_branch", head)
		}
	case strings.HasPrefix(ref, "refs/heads/"):
		c.Set("service_branch", strings.TrimPrefix(ref, "refs/heads/"))
	}
	return c
}

func buildkiteConfig(env Env) *Config {
	c := New().Set("service_name", "buildkite")
	bind(c, env, []envBinding{
		{"BUILDKITE_BUILD_ID", "service_job_id"},
		{"BUILDKITE_BUILD_NUMBER", "service_number"},
		{"BUILDKITE_BRANCH", "service_branch"},
		{"BUILDKITE_COMMIT", "commit_sha"},
		{"BUILDKITE_BUILD_CREATOR", "git_committer_name"},
		{"BUILDKITE_BUILD_CREATOR_EMAIL", "git_committer_email"},
		{"BUILDKITE_MESSAGE", "git_message"},
	})
	if pr, ok := env.Get("BUILDKITE_PULL_REQUEST"); ok && pr != "false" {
		c.Set("service_pull_request", pr)
	}
	return c
}

func semaphoreConfig(env Env) *Config {
	return New().Set("service_name", "semaphore").Merge(mapping(env,
		envBinding{"SEMAPHORE_BUILD_NUMBER", "service_job_id"},
		envBinding{"PULL_REQUEST_NUMBER", "service_pull_request"},
		envBinding{"BRANCH_NAME", "service_branch"},
		envBinding{"REVISION", "commit_sha"},
	))
}

func droneConfig(env Env) *Config {
	return New().Set("service_name", "drone").Merge(mapping(env,
		envBinding{"DRONE_BUILD_NUMBER", "service_job_id"},
		envBinding{"DRONE_PULL_REQUEST", "service_pull_request"},
		envBinding{"DRONE_BRANCH", "service_branch"},
		envBinding{"DRONE_COMMIT", "commit_sha"},
		envBinding{"DRONE_COMMIT_AUTHOR", "git_committer_name"},
		envBinding{"DRONE_COMMIT_AUTHOR_EMAIL", "git_committer_email"},
		envBinding{"DRONE_COMMIT_MESSAGE", "git_message"},
	))
}

func werckerConfig(env Env) *Config {
	return New().Set("service_name", "wercker").Merge(mapping(env,
		envBinding{"WERCKER_BUILD_ID", "service_job_id"},
		envBinding{"WERCKER_GIT_BRANCH", "service_branch"},
		envBinding{"WERCKER_GIT_COMMIT", "commit_sha"},
	))
}

func codefreshConfig(env Env) *Config {
	return New().Set("service_name", "Codefresh").Merge(mapping(env,
		envBinding{"CF_BUILD_ID", "service_job_id"},
		envBinding{"CF_PULL_REQUEST_ID", "service_pull_request"},
		envBinding{"CF_BRANCH", "service_branch"},
		envBinding{"CF_REVISION", "commit_sha"},
		envBinding{"CF_COMMIT_AUTHOR", "git_committer_name"},
		envBinding{"CF_COMMIT_MESSAGE", "git_message"},
	))
}

func azureConfig(env Env) *Config {
	return New().Set("service_name", "Azure Pipelines").Merge(mapping(env,
		envBinding{"BUILD_BUILDID", "service_job_id"},
		envBinding{"BUILD_BUILDNUMBER", "service_number"},
		envBinding{"SYSTEM_PULLREQUEST_PULLREQUESTNUMBER", "service_pull_request"},
		envBinding{"BUILD_SOURCEBRANCHNAME", "service_branch"},
		envBinding{"BUILD_SOURCEVERSION", "commit_sha"},
	))
}

func surfConfig(env Env) *Config {
	return New().Set("service_name", "surf").Merge(mapping(env,
		envBinding{"SURF_SHA1", "commit_sha"},
		envBinding{"SURF_REF", "service_branch"},
	))
}

func codeshipConfig(env Env) *Config {
	return New().Set("service_name", "codeship").Merge(mapping(env,
		envBinding{"CI_BUILD_NUMBER", "service_job_id"},
		envBinding{"CI_BRANCH", "service_branch"},
		envBinding{"CI_COMMIT_ID", "commit_sha"},
		envBinding{"CI_COMMITTER_NAME", "git_committer_name"},
		envBinding{"CI_COMMITTER_EMAIL", "git_committer_email"},
		envBinding{"CI_COMMIT_MESSAGE", "git_message"},
	))
}
