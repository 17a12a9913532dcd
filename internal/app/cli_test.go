package app

import (
	"slices"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestRegisterFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)

	// Verify all flags are registered
	expectedFlags := []string{
		"endpoint",
		"repo-token",
		"config-file",
		"repo-dir",
		"base-path",
		"timeout",
		"dry-run",
		"include-source",
		"exclude",
		"parallelism",
		"save-payload",
		"verbose",
	}

	for _, name := range expectedFlags {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected flag %q to be registered", name)
		}
	}
}

func TestRegisterFlags_Shorthand(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)

	shorthandFlags := map[string]string{
		"endpoint":     "e",
		"repo-token":   "t",
		"config-file":  "c",
		"repo-dir":     "d",
		"base-path":    "b",
		"dry-run":      "n",
		"exclude":      "x",
		"parallelism":  "j",
		"save-payload": "o",
		"verbose":      "v",
	}

	for name, shorthand := range shorthandFlags {
		flag := flags.Lookup(name)
		if flag == nil {
			t.Errorf("Flag %q not found", name)
			continue
		}
		if flag.Shorthand != shorthand {
			t.Errorf("Flag %q expected shorthand %q, got %q", name, shorthand, flag.Shorthand)
		}
	}
}

func TestRegisterFlags_SetValues(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)

	err := flags.Parse([]string{
		"--endpoint", "https://coverage.example.com",
		"-n",
		"--timeout", "5s",
		"-x", "vendor/**,**/*_test.go",
		"-j", "2",
	})
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	endpoint, _ := flags.GetString("endpoint")
	if endpoint != "https://coverage.example.com" {
		t.Errorf("Expected endpoint 'https://coverage.example.com', got '%s'", endpoint)
	}

	dryRun, _ := flags.GetBool("dry-run")
	if !dryRun {
		t.Error("Expected dry-run to be set")
	}

	timeout, _ := flags.GetDuration("timeout")
	if timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", timeout)
	}

	exclude, _ := flags.GetStringSlice("exclude")
	if !slices.Equal(exclude, []string{"vendor/**", "**/*_test.go"}) {
		t.Errorf("Expected two exclude patterns, got %v", exclude)
	}

	parallelism, _ := flags.GetInt("parallelism")
	if parallelism != 2 {
		t.Errorf("Expected parallelism 2, got %d", parallelism)
	}
}
