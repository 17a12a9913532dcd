package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyReport indicates the report was empty after trimming whitespace
	ErrEmptyReport = errors.New("coverage report is empty")
	// ErrUnsupportedFormat indicates the report is neither LCOV nor Clover
	ErrUnsupportedFormat = errors.New("unsupported coverage report format")
	// ErrMissingCredentials indicates a job has neither a repo token nor a service name
	ErrMissingCredentials = errors.New("repo_token or service_name is required")
)

// ValidationError reports a problem with caller input. It is never retried.
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation error: " + e.Reason.Error()
	}
	return fmt.Sprintf("validation error: %s: %s", e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// FormatError reports malformed report or configuration data.
type FormatError struct {
	// Source names the format being parsed, e.g. "clover", "lcov" or "yaml".
	Source string
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s format error: %s: %v", e.Source, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s format error: %s", e.Source, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IOError reports a declared source file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read source file %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnavailableError reports that git metadata cannot be obtained.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("git metadata unavailable: %s: %v", e.Reason, e.Err)
	}
	return "git metadata unavailable: " + e.Reason
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// TransportError reports a failed submission. Body holds the response body when
// the server answered with a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("submission to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
