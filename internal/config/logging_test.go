package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLog(t *testing.T) {
	// Just verify it doesn't panic
	Log(&Settings{Endpoint: DefaultEndpoint})
}

func TestLogWithLogger_MasksRepoToken(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := &Settings{
		Endpoint:  DefaultEndpoint,
		RepoToken: "super-secret",
	}

	LogWithLogger(s, logger)

	output := buf.String()
	if strings.Contains(output, "super-secret") {
		t.Error("Expected repo token to be masked in log output")
	}
	if !strings.Contains(output, "****") {
		t.Error("Expected masked token placeholder in log output")
	}
	if !strings.Contains(output, "endpoint") {
		t.Error("Expected 'endpoint' in log output")
	}
}

func TestLogWithLogger_SkipsUnsetOptionalSettings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogWithLogger(&Settings{Endpoint: DefaultEndpoint}, logger)

	output := buf.String()
	for _, key := range []string{"repo_token", "exclude", "dry_run", "save_payload"} {
		if strings.Contains(output, key) {
			t.Errorf("Expected no %q in log output", key)
		}
	}
}

func TestSettingsLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	s := Settings{
		Endpoint:    DefaultEndpoint,
		RepoToken:   "secret",
		Timeout:     time.Second,
		Parallelism: 2,
	}
	logger.Info("settings", "settings", SettingsLogValue(s))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}
	group, ok := entry["settings"].(map[string]any)
	if !ok {
		t.Fatalf("Expected settings group, got %v", entry["settings"])
	}
	if group["repo_token"] != "****" {
		t.Errorf("Expected masked repo token, got %v", group["repo_token"])
	}
	if group["endpoint"] != DefaultEndpoint {
		t.Errorf("Expected endpoint, got %v", group["endpoint"])
	}
}

func TestConfigLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := New().Set("repo_token", "hidden").Set("service_name", "travis-ci").SetOptional("parallel", nil)
	logger.Info("config", "config", ConfigLogValue(c))

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Error("Expected repo token to be masked")
	}
	if !strings.Contains(output, "config.service_name=travis-ci") {
		t.Errorf("Expected service name in output, got %q", output)
	}
}
