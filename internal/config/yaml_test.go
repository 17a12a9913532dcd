package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sha1n/coveralls-go/internal/domain"
	"github.com/spf13/afero"
)

func TestFromYAML(t *testing.T) {
	c, err := FromYAML("repo_token: abc\nservice_name: travis-pro\n")
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}

	assertValue(t, c, "repo_token", "abc")
	assertValue(t, c, "service_name", "travis-pro")
	if keys := c.Keys(); keys[0] != "repo_token" || keys[1] != "service_name" {
		t.Errorf("Expected document key order, got %v", keys)
	}
}

func TestFromYAML_ScalarCoercion(t *testing.T) {
	c, err := FromYAML("parallel: true\nservice_number: 42\nratio: 1.5\nflag_name: ~\nquoted: \"007\"\n")
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}

	assertValue(t, c, "parallel", "true")
	assertValue(t, c, "service_number", "42")
	assertValue(t, c, "ratio", "1.5")
	assertValue(t, c, "quoted", "007")
	if !c.Has("flag_name") || c.Lookup("flag_name") != nil {
		t.Error("Expected null to become an undefined value")
	}
}

func TestFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t\n"},
		{"scalar document", "just a string"},
		{"sequence document", "- a\n- b\n"},
		{"nested mapping", "git:\n  branch: main\n"},
		{"nested sequence", "exclude:\n  - vendor\n"},
		{"invalid syntax", "key: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromYAML(tt.doc)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var fErr *domain.FormatError
			if !errors.As(err, &fErr) {
				t.Errorf("Expected FormatError, got %T: %v", err, err)
			}
		})
	}
}

func writeConfig(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadDefaults_MergesFileOverEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/work/.coveralls.yml", "repo_token: from-file\n")

	c := LoadDefaults(fs, Env{"COVERALLS_REPO_TOKEN": "from-env", "CI_BRANCH": "main"}, "/work/.coveralls.yml")

	assertValue(t, c, "repo_token", "from-file")
	assertValue(t, c, "service_branch", "main")
}

func TestLoadDefaults_MissingFile(t *testing.T) {
	c := LoadDefaults(afero.NewMemMapFs(), Env{"CI_NAME": "ci"}, "/work/missing.yml")
	assertValue(t, c, "service_name", "ci")
}

func TestLoadDefaults_InvalidFileFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/work/.coveralls.yml", "- not\n- a mapping\n")

	c := LoadDefaults(fs, Env{"COVERALLS_REPO_TOKEN": "env"}, "/work/.coveralls.yml")
	assertValue(t, c, "repo_token", "env")
	if c.Len() != 1 {
		t.Errorf("Expected environment-only config, got %v", c.Keys())
	}
}

func TestLoadDefaults_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("service_name: local\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Chdir(dir)

	c := LoadDefaults(afero.NewOsFs(), Env{}, "")
	assertValue(t, c, "service_name", "local")
}
