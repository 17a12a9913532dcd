package report

import "github.com/sha1n/coveralls-go/internal/domain"

// FileSummary is the line coverage of one source file.
type FileSummary struct {
	Name     string  `json:"name"`
	Relevant int     `json:"relevant"`
	Covered  int     `json:"covered"`
	Percent  float64 `json:"percent"`
}

// Summary is the line coverage of a job.
type Summary struct {
	Files    []FileSummary `json:"files"`
	Relevant int           `json:"relevant"`
	Covered  int           `json:"covered"`
	Percent  float64       `json:"percent"`
}

// Summarize computes per-file and total line coverage. A file without
// trackable lines counts as fully covered.
func Summarize(job *domain.Job) Summary {
	s := Summary{Files: make([]FileSummary, 0, len(job.SourceFiles))}
	for i := range job.SourceFiles {
		sf := &job.SourceFiles[i]
		relevant, covered := sf.Stats()
		s.Files = append(s.Files, FileSummary{
			Name:     sf.Name,
			Relevant: relevant,
			Covered:  covered,
			Percent:  percent(covered, relevant),
		})
		s.Relevant += relevant
		s.Covered += covered
	}
	s.Percent = percent(s.Covered, s.Relevant)
	return s
}

func percent(covered, relevant int) float64 {
	if relevant == 0 {
		return 100
	}
	return float64(covered) * 100 / float64(relevant)
}
