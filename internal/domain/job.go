package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Job is the unit submitted to the coverage service for one test run.
// Parsers create it with SourceFiles populated; configuration and git
// metadata are merged in before submission.
type Job struct {
	RepoToken          string
	ServiceName        string
	ServiceJobID       string
	ServiceNumber      string
	ServicePullRequest string
	FlagName           string
	// CommitSHA overrides Git.Commit.ID on the service side.
	CommitSHA string
	Parallel  bool
	// RunAt is the zero time until it is set from configuration or defaulted
	// at submission.
	RunAt       time.Time
	Git         *GitData
	SourceFiles []SourceFile
}

// NewJob creates a job holding the given source files.
func NewJob(files []SourceFile) *Job {
	if files == nil {
		files = []SourceFile{}
	}
	return &Job{SourceFiles: files}
}

// Validate checks that the job identifies either a repository or a CI service.
func (j *Job) Validate() error {
	if j.RepoToken == "" && j.ServiceName == "" {
		return &ValidationError{Reason: ErrMissingCredentials}
	}
	return nil
}

// Branch returns the git branch of the job, or "" when no git data is attached.
func (j *Job) Branch() string {
	if j.Git == nil {
		return ""
	}
	return j.Git.Branch
}

type wireJob struct {
	RepoToken          string           `json:"repo_token,omitempty"`
	ServiceName        string           `json:"service_name,omitempty"`
	ServiceNumber      string           `json:"service_number,omitempty"`
	ServiceJobID       string           `json:"service_job_id,omitempty"`
	ServicePullRequest string           `json:"service_pull_request,omitempty"`
	SourceFiles        []wireSourceFile `json:"source_files"`
	Parallel           bool             `json:"parallel,omitempty"`
	Git                *wireGit         `json:"git,omitempty"`
	CommitSHA          string           `json:"commit_sha,omitempty"`
	RunAt              string           `json:"run_at,omitempty"`
	FlagName           string           `json:"flag_name,omitempty"`
}

type wireSourceFile struct {
	Name         string `json:"name"`
	SourceDigest string `json:"source_digest"`
	Coverage     []*int `json:"coverage"`
	Branches     []int  `json:"branches,omitempty"`
	Source       string `json:"source,omitempty"`
}

type wireGit struct {
	Head    *wireCommit  `json:"head,omitempty"`
	Branch  string       `json:"branch"`
	Remotes []wireRemote `json:"remotes"`
}

type wireCommit struct {
	ID             string `json:"id"`
	AuthorName     string `json:"author_name"`
	AuthorEmail    string `json:"author_email"`
	CommitterName  string `json:"committer_name"`
	CommitterEmail string `json:"committer_email"`
	Message        string `json:"message"`
}

type wireRemote struct {
	Name string  `json:"name"`
	URL  *string `json:"url"`
}

// MarshalJSON encodes the job as the coverage service's submission payload.
// Optional fields are omitted when they hold their zero value.
func (j Job) MarshalJSON() ([]byte, error) {
	w := wireJob{
		RepoToken:          j.RepoToken,
		ServiceName:        j.ServiceName,
		ServiceNumber:      j.ServiceNumber,
		ServiceJobID:       j.ServiceJobID,
		ServicePullRequest: j.ServicePullRequest,
		SourceFiles:        make([]wireSourceFile, 0, len(j.SourceFiles)),
		Parallel:           j.Parallel,
		CommitSHA:          j.CommitSHA,
		FlagName:           j.FlagName,
	}
	if !j.RunAt.IsZero() {
		w.RunAt = j.RunAt.Format(time.RFC3339Nano)
	}

	for _, f := range j.SourceFiles {
		wf := wireSourceFile{
			Name:         f.Name,
			SourceDigest: f.SourceDigest,
			Coverage:     f.Coverage,
			Source:       f.Source,
		}
		if wf.Coverage == nil {
			wf.Coverage = []*int{}
		}
		for _, b := range f.Branches {
			wf.Branches = append(wf.Branches, b.Line, b.Block, b.Branch, b.Taken)
		}
		w.SourceFiles = append(w.SourceFiles, wf)
	}

	if j.Git != nil {
		g := &wireGit{
			Branch:  j.Git.Branch,
			Remotes: make([]wireRemote, 0, len(j.Git.Remotes)),
		}
		if c := j.Git.Commit; c != nil {
			g.Head = &wireCommit{
				ID:             c.ID,
				AuthorName:     c.AuthorName,
				AuthorEmail:    c.AuthorEmail,
				CommitterName:  c.CommitterName,
				CommitterEmail: c.CommitterEmail,
				Message:        c.Message,
			}
		}
		for _, r := range j.Git.Remotes {
			g.Remotes = append(g.Remotes, wireRemote{Name: r.Name, URL: r.URL})
		}
		w.Git = g
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes a submission payload. Omitted optional fields decode
// to their zero value.
func (j *Job) UnmarshalJSON(data []byte) error {
	var w wireJob
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	job := Job{
		RepoToken:          w.RepoToken,
		ServiceName:        w.ServiceName,
		ServiceNumber:      w.ServiceNumber,
		ServiceJobID:       w.ServiceJobID,
		ServicePullRequest: w.ServicePullRequest,
		Parallel:           w.Parallel,
		CommitSHA:          w.CommitSHA,
		FlagName:           w.FlagName,
		SourceFiles:        make([]SourceFile, 0, len(w.SourceFiles)),
	}
	if w.RunAt != "" {
		t, err := time.Parse(time.RFC3339Nano, w.RunAt)
		if err != nil {
			return fmt.Errorf("invalid run_at: %w", err)
		}
		job.RunAt = t
	}

	for _, wf := range w.SourceFiles {
		if len(wf.Branches)%4 != 0 {
			return fmt.Errorf("source file %s: branches length %d is not a multiple of 4", wf.Name, len(wf.Branches))
		}
		f := SourceFile{
			Name:         wf.Name,
			SourceDigest: wf.SourceDigest,
			Coverage:     wf.Coverage,
			Source:       wf.Source,
		}
		if f.Coverage == nil {
			f.Coverage = []*int{}
		}
		for i := 0; i < len(wf.Branches); i += 4 {
			f.Branches = append(f.Branches, Branch{
				Line:   wf.Branches[i],
				Block:  wf.Branches[i+1],
				Branch: wf.Branches[i+2],
				Taken:  wf.Branches[i+3],
			})
		}
		job.SourceFiles = append(job.SourceFiles, f)
	}

	if w.Git != nil {
		g := &GitData{Branch: w.Git.Branch}
		if w.Git.Remotes != nil {
			g.Remotes = make([]GitRemote, 0, len(w.Git.Remotes))
		}
		if h := w.Git.Head; h != nil {
			g.Commit = &GitCommit{
				ID:             h.ID,
				AuthorName:     h.AuthorName,
				AuthorEmail:    h.AuthorEmail,
				CommitterName:  h.CommitterName,
				CommitterEmail: h.CommitterEmail,
				Message:        h.Message,
			}
		}
		for _, r := range w.Git.Remotes {
			g.AddRemote(GitRemote{Name: r.Name, URL: r.URL})
		}
		job.Git = g
	}

	*j = job
	return nil
}
