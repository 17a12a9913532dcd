package git

import (
	"regexp"
	"strings"
)

// Matches: git@github.com:org/repo.git
var scpPattern = regexp.MustCompile(`^([^@/\s]+)@([^:/\s]+):(.+)$`)

// NormalizeRemoteURL rewrites SCP-style remotes (user@host:path) to
// ssh://user@host/path. Other URLs are returned trimmed but otherwise unchanged.
//
// Examples:
//   - git@github.com:org/repo.git -> ssh://git@github.com/org/repo.git
//   - https://github.com/org/repo.git -> https://github.com/org/repo.git
func NormalizeRemoteURL(url string) string {
	url = strings.TrimSpace(url)
	if strings.Contains(url, "://") {
		return url
	}

	matches := scpPattern.FindStringSubmatch(url)
	if matches == nil {
		return url
	}
	return "ssh://" + matches[1] + "@" + matches[2] + "/" + strings.TrimPrefix(matches[3], "/")
}
