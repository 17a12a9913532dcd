package domain

// Branch is one branch-coverage entry of a source file.
type Branch struct {
	Line   int
	Block  int
	Branch int
	Taken  int
}

// SourceFile holds the coverage of a single file within a job.
type SourceFile struct {
	// Name is the path relative to the working directory, using forward slashes.
	Name string
	// SourceDigest is the hex MD5 of the file content.
	SourceDigest string
	// Coverage has one element per line of the file. A nil element marks a
	// line that is not trackable.
	Coverage []*int
	Branches []Branch
	// Source is the raw file content. Only set when source inclusion is requested.
	Source string
}

// NewSourceFile creates a SourceFile whose coverage is sized to lineCount with
// every line marked as not trackable.
func NewSourceFile(name, digest string, lineCount int) SourceFile {
	return SourceFile{
		Name:         name,
		SourceDigest: digest,
		Coverage:     make([]*int, lineCount),
	}
}

// SetHits records the execution count for a 1-based line number.
// Returns false if the line is outside the file.
func (f *SourceFile) SetHits(line, hits int) bool {
	if line < 1 || line > len(f.Coverage) {
		return false
	}
	f.Coverage[line-1] = Hits(hits)
	return true
}

// AddBranch appends a branch-coverage entry.
func (f *SourceFile) AddBranch(b Branch) {
	f.Branches = append(f.Branches, b)
}

// Hits returns a pointer to n, for use as a Coverage element.
func Hits(n int) *int {
	return &n
}

// Stats returns the number of trackable lines and the number of covered lines.
func (f *SourceFile) Stats() (relevant, covered int) {
	for _, c := range f.Coverage {
		if c == nil {
			continue
		}
		relevant++
		if *c > 0 {
			covered++
		}
	}
	return relevant, covered
}
