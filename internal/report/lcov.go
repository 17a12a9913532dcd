package report

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sha1n/coveralls-go/internal/domain"
)

const maxLCOVLine = 1024 * 1024

// ParseLCOV parses an LCOV tracefile into a job. Each SF record becomes one
// source file, read through opts.FS.
func ParseLCOV(ctx context.Context, input string, opts Options) (*domain.Job, error) {
	records, err := scanLCOV(input)
	if err != nil {
		return nil, err
	}
	return buildJob(ctx, FormatLCOV, records, opts)
}

func scanLCOV(input string) ([]record, error) {
	var (
		records []record
		current *record
		lineNo  int
	)

	flush := func() {
		if current != nil {
			records = append(records, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLCOVLine)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "end_of_record" {
			flush()
			continue
		}

		tag, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch tag {
		case "SF":
			flush()
			if value == "" {
				return nil, lcovError(lineNo, "empty source file path", nil)
			}
			current = &record{path: value}

		case "DA":
			if current == nil {
				return nil, lcovError(lineNo, "DA outside of a source file record", nil)
			}
			hit, err := parseDA(value)
			if err != nil {
				return nil, lcovError(lineNo, "invalid DA entry "+strconv.Quote(value), err)
			}
			current.lines = append(current.lines, hit)

		case "BRDA":
			if current == nil {
				return nil, lcovError(lineNo, "BRDA outside of a source file record", nil)
			}
			br, err := parseBRDA(value)
			if err != nil {
				return nil, lcovError(lineNo, "invalid BRDA entry "+strconv.Quote(value), err)
			}
			current.branches = append(current.branches, br)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.FormatError{Source: string(FormatLCOV), Msg: "failed to scan report", Err: err}
	}

	// a trailing record without end_of_record is still kept
	flush()
	return records, nil
}

// parseDA parses "<line>,<count>[,<checksum>]".
func parseDA(value string) (lineHit, error) {
	fields := strings.Split(value, ",")
	if len(fields) < 2 {
		return lineHit{}, fmt.Errorf("expected at least 2 fields, got %d", len(fields))
	}
	line, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return lineHit{}, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return lineHit{}, err
	}
	return lineHit{line: line, count: max(count, 0)}, nil
}

// parseBRDA parses "<line>,<block>,<branch>,<taken>" where taken may be "-".
func parseBRDA(value string) (domain.Branch, error) {
	fields := strings.Split(value, ",")
	if len(fields) != 4 {
		return domain.Branch{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	var nums [4]int
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if i == 3 && f == "-" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return domain.Branch{}, err
		}
		nums[i] = n
	}
	return domain.Branch{Line: nums[0], Block: nums[1], Branch: nums[2], Taken: max(nums[3], 0)}, nil
}

func lcovError(lineNo int, msg string, err error) error {
	return &domain.FormatError{Source: string(FormatLCOV), Msg: fmt.Sprintf("line %d: %s", lineNo, msg), Err: err}
}
