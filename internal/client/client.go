package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sha1n/coveralls-go/internal/config"
	"github.com/sha1n/coveralls-go/internal/domain"
	"github.com/sha1n/coveralls-go/internal/report"
	"github.com/spf13/afero"
)

// JobsPath is the submission path appended to the endpoint.
const JobsPath = "/api/v1/jobs"

// State is a step of an upload run.
type State int

// Upload states, in the order a successful run passes through them.
const (
	StateIdle State = iota
	StateFormatDetected
	StateParsed
	StateConfigResolved
	StateGitEnriched
	StateSubmitted
	StateFailed
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateFormatDetected: "format_detected",
	StateParsed:         "parsed",
	StateConfigResolved: "config_resolved",
	StateGitEnriched:    "git_enriched",
	StateSubmitted:      "submitted",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// GitReader provides live repository metadata.
type GitReader interface {
	FromRepository(ctx context.Context, dir string) (*domain.GitData, error)
}

// Transport delivers a serialized job to the coverage service.
type Transport interface {
	Submit(ctx context.Context, url string, payload []byte) error
}

// Options configures a Client.
type Options struct {
	Endpoint  string
	Transport Transport
	// Git is optional. Without it jobs are not enriched with repository data.
	Git     GitReader
	RepoDir string
	// Config is used as-is when set. Otherwise it is resolved from Env and
	// ConfigFile on every upload.
	Config *config.Config
	// Overrides are merged over the resolved configuration.
	Overrides  *config.Config
	Env        config.Env
	ConfigFile string
	Parser     report.Options
	Now        func() time.Time
	DryRun     bool
	// SavePayload, when set, is the path the serialized job is written to.
	SavePayload string
	// OnStateChange is called on every state transition.
	OnStateChange func(from, to State)
}

// Client parses coverage reports and submits them as jobs.
// A Client holds no per-upload state and may be used concurrently.
type Client struct {
	opts Options
}

// New creates a Client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = config.DefaultEndpoint
	}
	opts.Endpoint = strings.TrimSuffix(opts.Endpoint, "/")
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RepoDir == "" {
		opts.RepoDir = "."
	}
	if opts.Parser.FS == nil {
		opts.Parser.FS = afero.NewOsFs()
	}
	return &Client{opts: opts}
}

// SubmitURL returns the URL jobs are posted to.
func (c *Client) SubmitURL() string {
	return c.opts.Endpoint + JobsPath
}

// Upload parses a raw LCOV or Clover report, applies configuration and git
// metadata and submits the resulting job. The job is returned whenever
// parsing succeeded, even if submission failed.
func (c *Client) Upload(ctx context.Context, input string) (*domain.Job, error) {
	r := c.newRun()

	format, err := report.Detect(input)
	if err != nil {
		return nil, r.fail(err)
	}
	r.to(StateFormatDetected)

	job, err := report.ParseFormat(ctx, format, input, c.opts.Parser)
	if err != nil {
		return nil, r.fail(err)
	}
	r.to(StateParsed)

	c.Prepare(ctx, job)
	r.to(StateConfigResolved)

	c.enrich(ctx, job)
	r.to(StateGitEnriched)

	return job, c.submit(ctx, r, job)
}

// Prepare applies the resolved configuration to job and defaults its run time.
func (c *Client) Prepare(_ context.Context, job *domain.Job) {
	cfg := c.ResolveConfig()
	slog.Debug("Resolved job configuration", "config", config.ConfigLogValue(cfg))

	UpdateJob(job, cfg)
	if job.RunAt.IsZero() {
		job.RunAt = c.opts.Now()
	}
}

// ResolveConfig returns the configured Config, or resolves one from the
// environment and the configuration file. Overrides are applied last.
func (c *Client) ResolveConfig() *config.Config {
	cfg := c.opts.Config
	if cfg == nil {
		env := c.opts.Env
		if env == nil {
			env = config.Environ()
		}
		cfg = config.LoadDefaults(c.opts.Parser.FS, env, c.opts.ConfigFile)
	}
	if c.opts.Overrides == nil || c.opts.Overrides.Len() == 0 {
		return cfg
	}
	return cfg.Clone().Merge(c.opts.Overrides)
}

// UploadJob validates and submits an already assembled job.
func (c *Client) UploadJob(ctx context.Context, job *domain.Job) error {
	r := c.newRun()
	r.state = StateGitEnriched
	return c.submit(ctx, r, job)
}

func (c *Client) enrich(ctx context.Context, job *domain.Job) {
	if c.opts.Git == nil {
		return
	}
	live, err := c.opts.Git.FromRepository(ctx, c.opts.RepoDir)
	if err != nil {
		slog.Debug("Skipping git enrichment", "dir", c.opts.RepoDir, "error", err)
		return
	}
	EnrichWithGit(job, live)
}

func (c *Client) submit(ctx context.Context, r *run, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return r.fail(err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return r.fail(fmt.Errorf("failed to serialize job: %w", err))
	}

	if c.opts.SavePayload != "" {
		if err := SavePayload(c.opts.Parser.FS, c.opts.SavePayload, payload); err != nil {
			return r.fail(err)
		}
		slog.Info("Saved payload", "path", c.opts.SavePayload, "bytes", len(payload))
	}

	url := c.SubmitURL()
	if c.opts.DryRun {
		slog.Info("Dry run, skipping submission", "url", url, "source_files", len(job.SourceFiles), "bytes", len(payload))
		r.to(StateSubmitted)
		return nil
	}

	if c.opts.Transport == nil {
		return r.fail(&domain.TransportError{URL: url, Err: errors.New("no transport configured")})
	}

	if err := c.opts.Transport.Submit(ctx, url, payload); err != nil {
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{URL: url, Err: err}
		}
		return r.fail(err)
	}

	slog.Info("Submitted coverage", "url", url, "source_files", len(job.SourceFiles))
	r.to(StateSubmitted)
	return nil
}

type run struct {
	state    State
	onChange func(from, to State)
}

func (c *Client) newRun() *run {
	return &run{state: StateIdle, onChange: c.opts.OnStateChange}
}

func (r *run) to(next State) {
	slog.Debug("Upload state transition", "from", r.state, "to", next)
	if r.onChange != nil {
		r.onChange(r.state, next)
	}
	r.state = next
}

func (r *run) fail(err error) error {
	slog.Debug("Upload failed", "state", r.state, "error", err)
	r.to(StateFailed)
	return err
}
