package gitcli

import (
	"fmt"
	"strings"
)

// Remote is the hostname/owner/repo triple parsed from an origin URL.
type Remote struct {
	Host  string
	Owner string
	Repo  string
}

// ParseRemoteURL extracts host, owner, and repo from an SSH
// (git@host:owner/repo.git) or HTTP(S) (https://host/owner/repo.git)
// remote URL.
func ParseRemoteURL(url string) (Remote, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(url), ".git")

	for _, scheme := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(trimmed, scheme); ok {
			host, path, ok := strings.Cut(rest, "/")
			if !ok {
				return Remote{}, fmt.Errorf("cannot parse remote URL: %s", url)
			}
			owner, repo, ok := strings.Cut(path, "/")
			if !ok {
				return Remote{}, fmt.Errorf("cannot parse owner/repo from: %s", url)
			}
			return Remote{Host: host, Owner: owner, Repo: repo}, nil
		}
	}

	// SSH style: git@host:owner/repo
	if hostPart, path, ok := strings.Cut(trimmed, ":"); ok {
		host := hostPart
		if i := strings.LastIndexByte(hostPart, '@'); i >= 0 {
			host = hostPart[i+1:]
		}
		owner, repo, ok := strings.Cut(path, "/")
		if !ok {
			return Remote{}, fmt.Errorf("cannot parse owner/repo from: %s", url)
		}
		return Remote{Host: host, Owner: owner, Repo: repo}, nil
	}

	return Remote{}, fmt.Errorf("cannot parse remote URL: %s", url)
}
