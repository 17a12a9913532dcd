package report

import (
	"context"
	"strconv"
	"strings"

	"github.com/sha1n/coveralls-go/internal/domain"
)

// Format is a supported coverage report format.
type Format string

// Supported formats
const (
	FormatLCOV   Format = "lcov"
	FormatClover Format = "clover"
)

// Detect sniffs the report format from its leading bytes.
func Detect(input string) (Format, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &domain.ValidationError{Reason: domain.ErrEmptyReport}
	}

	switch {
	case strings.HasPrefix(trimmed, "<?xml"), strings.HasPrefix(trimmed, "<coverage"):
		return FormatClover, nil
	case strings.HasPrefix(trimmed, "TN:"), strings.HasPrefix(trimmed, "SF:"):
		return FormatLCOV, nil
	}

	prefix := trimmed
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	return "", &domain.ValidationError{Reason: domain.ErrUnsupportedFormat, Detail: "report starts with " + strconv.Quote(prefix)}
}

// Parse detects the format of input and parses it.
func Parse(ctx context.Context, input string, opts Options) (*domain.Job, Format, error) {
	format, err := Detect(input)
	if err != nil {
		return nil, "", err
	}

	job, err := ParseFormat(ctx, format, input, opts)
	if err != nil {
		return nil, format, err
	}
	return job, format, nil
}

// ParseFormat parses input as the given format.
func ParseFormat(ctx context.Context, format Format, input string, opts Options) (*domain.Job, error) {
	switch format {
	case FormatLCOV:
		return ParseLCOV(ctx, input, opts)
	case FormatClover:
		return ParseClover(ctx, input, opts)
	}
	return nil, &domain.ValidationError{Reason: domain.ErrUnsupportedFormat, Detail: string(format)}
}
