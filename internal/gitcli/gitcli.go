// Package gitcli implements the source-control capability by shelling
// out to the git binary, so repository-configured credentials, hooks,
// and transports behave exactly as they do for the user.
package gitcli

import (
	"encoding/base64"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/ini.v1"

	"github.com/trunkrel/trunkrel/internal/commit"
	"github.com/trunkrel/trunkrel/internal/release"
)

// Repository runs git commands against one working tree.
type Repository struct {
	path     string
	gitDir   string
	authHost string
	token    string
}

// Open validates that path is inside a git repository.
func Open(path string) (*Repository, error) {
	r := &Repository{path: path}
	gitDir, err := r.git("rev-parse", "--git-dir")
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(path, gitDir)
	}
	r.gitDir = gitDir
	return r, nil
}

// WithHTTPAuth injects an Authorization header for git commands that
// talk to the given hostname, the same http.extraheader mechanism
// actions/checkout uses. Scoping to the hostname keeps the token away
// from other remotes.
func (r *Repository) WithHTTPAuth(hostname, token string) *Repository {
	r.authHost = hostname
	r.token = token
	return r
}

func (r *Repository) git(args ...string) (string, error) {
	base := []string{"-C", r.path}
	if r.authHost != "" {
		encoded := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + r.token))
		key := fmt.Sprintf("http.https://%s/.extraheader", r.authHost)
		// Clear any inherited extraheader first so we never send two
		// Authorization headers.
		base = append(base, "-c", key+"=", "-c", fmt.Sprintf("%s=AUTHORIZATION: basic %s", key, encoded))
	}
	cmd := exec.Command("git", append(base, args...)...)
	// Never block on an interactive credential prompt.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// OriginURL reads the origin remote URL from .git/config.
func (r *Repository) OriginURL() (string, error) {
	cfg, err := ini.Load(filepath.Join(r.gitDir, "config"))
	if err != nil {
		return "", fmt.Errorf("read git config: %w", err)
	}
	url := cfg.Section(`remote "origin"`).Key("url").String()
	if url == "" {
		return "", fmt.Errorf("no origin remote configured")
	}
	return url, nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repository) CurrentBranch() (string, error) {
	return r.git("rev-parse", "--abbrev-ref", "HEAD")
}

// LatestTag returns the highest semver tag matching prefix, or nil.
func (r *Repository) LatestTag(prefix string) (*release.TagInfo, error) {
	out, err := r.git("tag", "--list", prefix+"*", "--sort=-v:refname")
	if err != nil || out == "" {
		return nil, nil
	}
	for _, line := range strings.Split(out, "\n") {
		info, err := r.tagInfo(strings.TrimSpace(line), prefix)
		if err != nil {
			continue
		}
		return info, nil
	}
	return nil, nil
}

// AllTags lists every semver tag matching prefix, version-ascending.
func (r *Repository) AllTags(prefix string) ([]release.TagInfo, error) {
	out, err := r.git("tag", "--list", prefix+"*", "--sort=v:refname")
	if err != nil || out == "" {
		return nil, nil
	}
	var tags []release.TagInfo
	for _, line := range strings.Split(out, "\n") {
		info, err := r.tagInfo(strings.TrimSpace(line), prefix)
		if err != nil {
			continue
		}
		tags = append(tags, *info)
	}
	return tags, nil
}

func (r *Repository) tagInfo(name, prefix string) (*release.TagInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("empty tag name")
	}
	v, err := semver.NewVersion(strings.TrimPrefix(name, prefix))
	if err != nil {
		return nil, err
	}
	sha, err := r.git("rev-list", "-1", name)
	if err != nil {
		return nil, err
	}
	return &release.TagInfo{Name: name, Version: v, SHA: sha}, nil
}

// CommitsBetween lists commits in (from, to], newest first, with author
// names. Records are framed with ASCII unit/record separators so commit
// bodies can contain anything.
func (r *Repository) CommitsBetween(from, to string) ([]commit.Raw, error) {
	spec := to
	if from != "" {
		spec = from + ".." + to
	}
	out, err := r.git("log", "--format=%H%x1f%an%x1f%B%x1e", spec)
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

// parseLog splits `git log` output framed as sha \x1f author \x1f body
// \x1e per commit.
func parseLog(out string) []commit.Raw {
	var commits []commit.Raw
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		parts := strings.SplitN(record, "\x1f", 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, commit.Raw{
			SHA:     strings.TrimSpace(parts[0]),
			Author:  strings.TrimSpace(parts[1]),
			Message: strings.TrimSpace(parts[2]),
		})
	}
	return commits
}

func (r *Repository) CreateTag(name, message string) error {
	_, err := r.git("tag", "-a", name, "-m", message)
	return err
}

func (r *Repository) ForceCreateTag(name, message string) error {
	_, err := r.git("tag", "-fa", name, "-m", message)
	return err
}

func (r *Repository) PushTag(name string) error {
	_, err := r.git("push", "origin", name)
	return err
}

func (r *Repository) ForcePushTag(name string) error {
	_, err := r.git("push", "origin", name, "--force")
	return err
}

// StageAndCommit stages paths and commits them. A clean tree after
// staging is a no-op, not an error.
func (r *Repository) StageAndCommit(paths []string, message string) (bool, error) {
	args := append([]string{"add", "--"}, paths...)
	if _, err := r.git(args...); err != nil {
		return false, err
	}
	status, err := r.git("status", "--porcelain")
	if err != nil {
		return false, err
	}
	if status == "" {
		return false, nil
	}
	if _, err := r.git("commit", "-m", message); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) Push() error {
	_, err := r.git("push", "origin", "HEAD")
	return err
}

func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.git("rev-parse", "--verify", "refs/tags/"+name)
	return err == nil, nil
}

func (r *Repository) RemoteTagExists(name string) (bool, error) {
	out, err := r.git("ls-remote", "--tags", "origin", name)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (r *Repository) TagDate(name string) (string, error) {
	return r.git("log", "-1", "--format=%cd", "--date=short", name)
}

func (r *Repository) HeadSHA() (string, error) {
	return r.git("rev-parse", "HEAD")
}
