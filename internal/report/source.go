package report

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"path/filepath"

	"github.com/sha1n/coveralls-go/internal/domain"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism is the number of source files read concurrently when
// Options.Parallelism is not set.
const DefaultParallelism = 4

// Options controls how declared source files are resolved and read.
type Options struct {
	// FS is the filesystem source files are read from. Defaults to the OS filesystem.
	FS afero.Fs
	// BasePath is the directory relative names are computed against.
	// Defaults to the current working directory.
	BasePath      string
	IncludeSource bool
	Filter        *Filter
	Parallelism   int
}

func (o Options) withDefaults() (Options, error) {
	if o.FS == nil {
		o.FS = afero.NewOsFs()
	}
	if o.BasePath == "" {
		o.BasePath = "."
	}
	if !filepath.IsAbs(o.BasePath) {
		abs, err := filepath.Abs(o.BasePath)
		if err != nil {
			return o, err
		}
		o.BasePath = abs
	}
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
	return o, nil
}

type lineHit struct {
	line  int
	count int
}

// record is the parser-independent coverage of one declared source file.
type record struct {
	path     string
	lines    []lineHit
	branches []domain.Branch
}

// resolve returns the output name and the read path of a declared source path.
func resolve(basePath, declared string) (name, readPath string) {
	if filepath.IsAbs(declared) {
		readPath = filepath.Clean(declared)
		rel, err := filepath.Rel(basePath, readPath)
		if err != nil {
			rel = readPath
		}
		return filepath.ToSlash(rel), readPath
	}
	cleaned := filepath.Clean(declared)
	return filepath.ToSlash(cleaned), filepath.Join(basePath, cleaned)
}

// countLines counts newline-terminated lines plus a trailing unterminated line.
func countLines(content []byte) int {
	n := bytes.Count(content, []byte{'\n'})
	if len(content) > 0 && content[len(content)-1] != '\n' {
		n++
	}
	return n
}

func digest(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// buildJob reads every record's source file and assembles a job, keeping
// the order in which records appear in the report.
func buildJob(ctx context.Context, format Format, records []record, opts Options) (*domain.Job, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	type pending struct {
		rec      record
		name     string
		readPath string
	}

	kept := make([]pending, 0, len(records))
	for _, rec := range records {
		name, readPath := resolve(opts.BasePath, rec.path)
		if opts.Filter.ShouldExclude(name) {
			slog.Debug("Excluding source file", "name", name)
			continue
		}
		kept = append(kept, pending{rec: rec, name: name, readPath: readPath})
	}

	files := make([]domain.SourceFile, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for i, p := range kept {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := afero.ReadFile(opts.FS, p.readPath)
			if err != nil {
				return &domain.IOError{Path: p.rec.path, Err: err}
			}
			files[i] = newSourceFile(format, p.name, content, p.rec, opts.IncludeSource)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Parsed coverage report", "format", format, "files", len(files), "excluded", len(records)-len(kept))
	return domain.NewJob(files), nil
}

func newSourceFile(format Format, name string, content []byte, rec record, includeSource bool) domain.SourceFile {
	sf := domain.NewSourceFile(name, digest(content), countLines(content))
	for _, h := range rec.lines {
		if !sf.SetHits(h.line, h.count) {
			slog.Debug("Ignoring out of range line", "format", format, "file", name, "line", h.line, "lines", len(sf.Coverage))
		}
	}
	for _, b := range rec.branches {
		sf.AddBranch(b)
	}
	if includeSource {
		sf.Source = string(content)
	}
	return sf
}
