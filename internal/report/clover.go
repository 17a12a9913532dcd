package report

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/sha1n/coveralls-go/internal/domain"
)

type cloverFile struct {
	Name  string       `xml:"name,attr"`
	Lines []cloverLine `xml:"line"`
}

type cloverLine struct {
	Type  string `xml:"type,attr"`
	Num   string `xml:"num,attr"`
	Count string `xml:"count,attr"`
}

// ParseClover parses a Clover XML report into a job. Only the first project
// is read. Its file elements, whether nested in packages or not, become
// source files in document order.
func ParseClover(ctx context.Context, input string, opts Options) (*domain.Job, error) {
	files, err := decodeClover(input)
	if err != nil {
		return nil, err
	}

	records := make([]record, 0, len(files))
	for i, f := range files {
		if f.Name == "" {
			return nil, cloverError("file element "+strconv.Itoa(i+1)+" has no name attribute", nil)
		}
		rec := record{path: f.Name}
		for _, l := range f.Lines {
			if l.Type != "stmt" {
				continue
			}
			num, err := strconv.Atoi(strings.TrimSpace(l.Num))
			if err != nil {
				return nil, cloverError("invalid line number in "+f.Name, err)
			}
			count, err := strconv.Atoi(strings.TrimSpace(l.Count))
			if err != nil {
				return nil, cloverError("invalid line count in "+f.Name, err)
			}
			rec.lines = append(rec.lines, lineHit{line: max(num, 1), count: max(count, 0)})
		}
		records = append(records, rec)
	}

	return buildJob(ctx, FormatClover, records, opts)
}

func decodeClover(input string) ([]cloverFile, error) {
	dec := xml.NewDecoder(strings.NewReader(input))

	root, err := nextStart(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, cloverError("missing coverage element", nil)
		}
		return nil, cloverError("malformed document", err)
	}
	if root.Name.Local != "coverage" {
		return nil, cloverError("root element is "+strconv.Quote(root.Name.Local)+", expected coverage", nil)
	}

	var (
		files      []cloverFile
		inProject  bool
		seenProj   bool
		depth      int
		projectEnd int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, cloverError("unexpected end of document", nil)
		}
		if err != nil {
			return nil, cloverError("malformed document", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case !inProject && t.Name.Local == "project" && !seenProj:
				inProject, seenProj = true, true
				projectEnd = depth
			case !inProject:
				if err := dec.Skip(); err != nil {
					return nil, cloverError("malformed document", err)
				}
				depth--
			case t.Name.Local == "file":
				var f cloverFile
				if err := dec.DecodeElement(&f, &t); err != nil {
					return nil, cloverError("malformed file element", err)
				}
				files = append(files, f)
				depth--
			case t.Name.Local != "package":
				if err := dec.Skip(); err != nil {
					return nil, cloverError("malformed document", err)
				}
				depth--
			}

		case xml.EndElement:
			if depth == 0 {
				// closing the root element
				if !seenProj {
					return nil, cloverError("missing project element", nil)
				}
				return files, nil
			}
			if inProject && depth == projectEnd {
				inProject = false
			}
			depth--
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func cloverError(msg string, err error) error {
	return &domain.FormatError{Source: string(FormatClover), Msg: msg, Err: err}
}
