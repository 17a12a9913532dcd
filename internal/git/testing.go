package git

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// MockExecutor records commands and returns configured responses.
// This is exported for use by other packages' tests.
type MockExecutor struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []ExecutorCall
}

// MockResponse defines a mock response for a command prefix.
// Responses are reusable; the first matching prefix wins.
type MockResponse struct {
	Prefix string
	Output []byte
	Err    error
}

// ExecutorCall records a command invocation.
type ExecutorCall struct {
	Dir  string
	Name string
	Args []string
}

// NewMockExecutor creates a new mock executor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// NewRepositoryMock returns an executor that answers the commands of
// FromRepository with the given branch, log output and remote listing.
func NewRepositoryMock(branch, log, remotes string) *MockExecutor {
	m := NewMockExecutor()
	m.AddResponse("git rev-parse", []byte(branch+"\n"), nil)
	m.AddResponse("git log", []byte(log), nil)
	m.AddResponse("git remote", []byte(remotes), nil)
	return m
}

// AddResponse adds a mock response for commands matching the given prefix.
func (m *MockExecutor) AddResponse(prefix string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{Prefix: prefix, Output: output, Err: err})
}

// Run returns the configured response for the command.
func (m *MockExecutor) Run(_ context.Context, dir string, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ExecutorCall{Dir: dir, Name: name, Args: args})
	fullCmd := name + " " + strings.Join(args, " ")

	for _, r := range m.responses {
		if strings.HasPrefix(fullCmd, r.Prefix) {
			return r.Output, r.Err
		}
	}

	return nil, errors.New("no mock response configured for: " + fullCmd)
}

// Calls returns all recorded command calls.
func (m *MockExecutor) Calls() []ExecutorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutorCall(nil), m.calls...)
}

// MustGetLastCall returns the last recorded call, fails the test if no calls were made.
func (m *MockExecutor) MustGetLastCall(t *testing.T) ExecutorCall {
	t.Helper()
	calls := m.Calls()
	if len(calls) == 0 {
		t.Fatal("Expected at least one command call")
	}
	return calls[len(calls)-1]
}
