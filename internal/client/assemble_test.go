package client

import (
	"testing"
	"time"

	"github.com/sha1n/coveralls-go/internal/config"
	"github.com/sha1n/coveralls-go/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func TestUpdateJob_RepoTokenPrecedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
		want string
	}{
		{"repo_token wins", map[string]string{"repo_token": "primary", "repo_secret_token": "secret"}, "primary"},
		{"secret fallback", map[string]string{"repo_secret_token": "secret"}, "secret"},
		{"neither", map[string]string{}, "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := domain.NewJob(nil)
			job.RepoToken = "unchanged"
			UpdateJob(job, config.FromMap(tt.cfg))
			if job.RepoToken != tt.want {
				t.Errorf("RepoToken = %q, want %q", job.RepoToken, tt.want)
			}
		})
	}
}

func TestUpdateJob_ServiceFields(t *testing.T) {
	job := domain.NewJob(nil)
	UpdateJob(job, config.FromMap(map[string]string{
		"service_name":         "github",
		"service_job_id":       "99",
		"service_number":       "12",
		"service_pull_request": "7",
		"flag_name":            "unit",
		"parallel":             "true",
		"commit_sha":           "abc123",
	}))

	if job.ServiceName != "github" || job.ServiceJobID != "99" || job.ServiceNumber != "12" {
		t.Errorf("service fields = %q %q %q", job.ServiceName, job.ServiceJobID, job.ServiceNumber)
	}
	if job.ServicePullRequest != "7" {
		t.Errorf("ServicePullRequest = %q, want 7", job.ServicePullRequest)
	}
	if job.FlagName != "unit" {
		t.Errorf("FlagName = %q, want unit", job.FlagName)
	}
	if !job.Parallel {
		t.Error("Parallel should be true")
	}
	if job.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %q, want abc123", job.CommitSHA)
	}
	if job.Git != nil {
		t.Error("Git should stay nil without git keys")
	}
}

func TestUpdateJob_Parallel(t *testing.T) {
	for _, v := range []string{"false", "TRUE", "1", "yes"} {
		job := domain.NewJob(nil)
		job.Parallel = true
		UpdateJob(job, config.FromMap(map[string]string{"parallel": v}))
		if job.Parallel {
			t.Errorf("parallel=%q should set Parallel to false", v)
		}
	}
}

func TestUpdateJob_RunAt(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-03-01T10:20:30Z", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01T10:20:30.5Z", time.Date(2024, 3, 1, 10, 20, 30, 500_000_000, time.UTC)},
		{"2024-03-01 10:20:30 +0000", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			job := domain.NewJob(nil)
			UpdateJob(job, config.FromMap(map[string]string{"run_at": tt.value}))
			if !job.RunAt.Equal(tt.want) {
				t.Errorf("RunAt = %v, want %v", job.RunAt, tt.want)
			}
		})
	}
}

func TestUpdateJob_GitKeysReplaceGitData(t *testing.T) {
	job := domain.NewJob(nil)
	job.Git = &domain.GitData{
		Branch:  "old",
		Remotes: []domain.GitRemote{{Name: "origin", URL: strPtr("ssh://git@example.com/a.git")}},
	}

	UpdateJob(job, config.FromMap(map[string]string{
		"service_branch":      "feature",
		"commit_sha":          "c0ffee",
		"git_author_name":     "Ada",
		"git_author_email":    "ada@example.com",
		"git_committer_name":  "Bot",
		"git_committer_email": "bot@example.com",
		"git_message":         "msg",
	}))

	if job.Git == nil || job.Git.Commit == nil {
		t.Fatal("Expected git data with commit")
	}
	want := domain.GitCommit{
		ID:             "c0ffee",
		AuthorName:     "Ada",
		AuthorEmail:    "ada@example.com",
		CommitterName:  "Bot",
		CommitterEmail: "bot@example.com",
		Message:        "msg",
	}
	if *job.Git.Commit != want {
		t.Errorf("Commit = %+v, want %+v", *job.Git.Commit, want)
	}
	if job.Git.Branch != "feature" {
		t.Errorf("Branch = %q, want feature", job.Git.Branch)
	}
	if len(job.Git.Remotes) != 0 {
		t.Errorf("Remotes should be discarded, got %d", len(job.Git.Remotes))
	}
	if job.CommitSHA != "" {
		t.Errorf("CommitSHA = %q, want empty when git keys are present", job.CommitSHA)
	}
}

func TestUpdateJob_GitFallbacks(t *testing.T) {
	job := domain.NewJob(nil)
	UpdateJob(job, config.FromMap(map[string]string{
		"git_id":     "deadbeef",
		"git_branch": "main",
	}))

	if job.Git == nil {
		t.Fatal("Expected git data")
	}
	if job.Git.Commit.ID != "deadbeef" {
		t.Errorf("Commit.ID = %q, want deadbeef", job.Git.Commit.ID)
	}
	if job.Git.Branch != "main" {
		t.Errorf("Branch = %q, want main", job.Git.Branch)
	}
	if job.Git.Commit.AuthorName != "" {
		t.Errorf("AuthorName = %q, want empty", job.Git.Commit.AuthorName)
	}
}

func TestUpdateJob_UndefinedValuesIgnored(t *testing.T) {
	cfg := config.New()
	cfg.SetOptional("service_name", nil)
	cfg.SetOptional("repo_token", nil)
	cfg.Set("repo_secret_token", "secret")

	job := domain.NewJob(nil)
	job.ServiceName = "travis-ci"
	UpdateJob(job, cfg)

	if job.ServiceName != "travis-ci" {
		t.Errorf("ServiceName = %q, want travis-ci", job.ServiceName)
	}
	if job.RepoToken != "secret" {
		t.Errorf("RepoToken = %q, want secret", job.RepoToken)
	}
}

func TestEnrichWithGit(t *testing.T) {
	tests := []struct {
		name       string
		current    *domain.GitData
		liveBranch string
		want       string
	}{
		{"detached head keeps configured branch", &domain.GitData{Branch: "develop"}, "HEAD", "develop"},
		{"detached head without configured branch", nil, "HEAD", "HEAD"},
		{"detached head with empty configured branch", &domain.GitData{}, "HEAD", "HEAD"},
		{"live branch wins", &domain.GitData{Branch: "develop"}, "main", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := domain.NewJob(nil)
			job.Git = tt.current
			live := &domain.GitData{
				Commit:  &domain.GitCommit{ID: "live"},
				Branch:  tt.liveBranch,
				Remotes: []domain.GitRemote{{Name: "origin", URL: strPtr("https://example.com/r.git")}},
			}

			EnrichWithGit(job, live)

			if job.Git.Branch != tt.want {
				t.Errorf("Branch = %q, want %q", job.Git.Branch, tt.want)
			}
			if job.Git.Commit.ID != "live" || len(job.Git.Remotes) != 1 {
				t.Errorf("live data should replace job git data, got %+v", job.Git)
			}
		})
	}
}

func TestEnrichWithGit_Nil(t *testing.T) {
	job := domain.NewJob(nil)
	job.Git = &domain.GitData{Branch: "keep"}
	EnrichWithGit(job, nil)
	if job.Git.Branch != "keep" {
		t.Errorf("Branch = %q, want keep", job.Git.Branch)
	}
}
