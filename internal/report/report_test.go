package report

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return fs
}

// coverageValues flattens coverage for comparison, using -1 for untracked lines.
func coverageValues(cov []*int) []int {
	out := make([]int, len(cov))
	for i, c := range cov {
		if c == nil {
			out[i] = -1
			continue
		}
		out[i] = *c
	}
	return out
}
