package git

import (
	"context"
	"os/exec"
	"testing"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(),
		"GIT_CONFIG_GLOBAL=/dev/null",
		"GIT_CONFIG_NOSYSTEM=1",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func TestClient_FromRepository_RealGit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping real git test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "trunk")
	runGit(t, dir, "-c", "user.name=Ada", "-c", "user.email=ada@example.com",
		"commit", "-q", "--allow-empty", "-m", "initial commit")
	runGit(t, dir, "remote", "add", "origin", "git@github.com:acme/widget.git")

	data, err := NewClient().FromRepository(context.Background(), dir)
	if err != nil {
		t.Fatalf("FromRepository() error: %v", err)
	}

	if data.Branch != "trunk" {
		t.Errorf("Branch = %q, want trunk", data.Branch)
	}
	if len(data.Commit.ID) != 40 {
		t.Errorf("Commit.ID = %q, want a full sha", data.Commit.ID)
	}
	if data.Commit.AuthorName != "Ada" || data.Commit.AuthorEmail != "ada@example.com" {
		t.Errorf("author = %q <%s>", data.Commit.AuthorName, data.Commit.AuthorEmail)
	}
	if data.Commit.Message != "initial commit" {
		t.Errorf("Message = %q", data.Commit.Message)
	}
	if len(data.Remotes) != 1 || *data.Remotes[0].URL != "ssh://git@github.com/acme/widget.git" {
		t.Errorf("Remotes = %+v", data.Remotes)
	}
}

func TestClient_FromRepository_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	_, err := NewClient().FromRepository(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("Expected error outside a repository")
	}
}
