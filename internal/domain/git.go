package domain

// GitCommit describes the commit a job was built from.
type GitCommit struct {
	ID             string
	AuthorEmail    string
	AuthorName     string
	CommitterEmail string
	CommitterName  string
	Message        string
}

// GitRemote is a configured remote. URL is nil when git reported none.
type GitRemote struct {
	Name string
	URL  *string
}

// GitData is the git metadata attached to a job.
type GitData struct {
	Commit  *GitCommit
	Branch  string
	Remotes []GitRemote
}

// AddRemote appends a remote unless one with the same name is already present.
// Returns false when the remote was dropped as a duplicate.
func (g *GitData) AddRemote(r GitRemote) bool {
	for _, existing := range g.Remotes {
		if existing.Name == r.Name {
			return false
		}
	}
	g.Remotes = append(g.Remotes, r)
	return true
}
