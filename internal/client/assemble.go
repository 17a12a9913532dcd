package client

import (
	"log/slog"
	"time"

	"github.com/sha1n/coveralls-go/internal/config"
	"github.com/sha1n/coveralls-go/internal/domain"
	"github.com/sha1n/coveralls-go/internal/git"
)

var runAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 -0700",
}

// UpdateJob applies configuration to job. repo_token takes precedence over
// repo_secret_token. When the configuration carries service_branch or any
// git_* key, job.Git is replaced by metadata built from the configuration
// alone and any previously attached git data, remotes included, is dropped.
func UpdateJob(job *domain.Job, cfg *config.Config) {
	if v, ok := cfg.Get("repo_token"); ok {
		job.RepoToken = v
	} else if v, ok := cfg.Get("repo_secret_token"); ok {
		job.RepoToken = v
	}

	if v, ok := cfg.Get("parallel"); ok {
		job.Parallel = v == "true"
	}

	if v, ok := cfg.Get("run_at"); ok {
		if t, err := parseRunAt(v); err != nil {
			slog.Warn("Ignoring invalid run_at", "value", v, "error", err)
		} else {
			job.RunAt = t
		}
	}

	assign(cfg, "service_job_id", &job.ServiceJobID)
	assign(cfg, "service_name", &job.ServiceName)
	assign(cfg, "service_number", &job.ServiceNumber)
	assign(cfg, "service_pull_request", &job.ServicePullRequest)
	assign(cfg, "flag_name", &job.FlagName)

	if !cfg.Has("service_branch") && !cfg.HasPrefix("git_") {
		job.CommitSHA = cfg.GetOr("commit_sha", "")
		return
	}

	commit := &domain.GitCommit{
		ID:             cfg.GetOr("commit_sha", cfg.GetOr("git_id", "")),
		AuthorEmail:    cfg.GetOr("git_author_email", ""),
		AuthorName:     cfg.GetOr("git_author_name", ""),
		CommitterEmail: cfg.GetOr("git_committer_email", ""),
		CommitterName:  cfg.GetOr("git_committer_name", ""),
		Message:        cfg.GetOr("git_message", ""),
	}
	job.Git = &domain.GitData{
		Commit:  commit,
		Branch:  cfg.GetOr("service_branch", cfg.GetOr("git_branch", "")),
		Remotes: []domain.GitRemote{},
	}
}

// EnrichWithGit replaces job.Git with live repository data. A detached HEAD
// does not override a branch the job already carries.
func EnrichWithGit(job *domain.Job, live *domain.GitData) {
	if live == nil {
		return
	}
	if live.Branch == git.DetachedHead && job.Branch() != "" {
		live.Branch = job.Branch()
	}
	job.Git = live
}

func assign(cfg *config.Config, key string, dst *string) {
	if v, ok := cfg.Get(key); ok {
		*dst = v
	}
}

func parseRunAt(value string) (time.Time, error) {
	var err error
	for _, layout := range runAtLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
