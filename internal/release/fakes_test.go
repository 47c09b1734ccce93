package release

import (
	"fmt"

	"github.com/trunkrel/trunkrel/internal/commit"
)

// fakeGit is an in-memory SourceControl. Tags and commits are seeded by
// the test; every mutation is recorded so assertions can count side
// effects.
type fakeGit struct {
	tags       []TagInfo
	commits    []commit.Raw // commits since the latest tag
	head       string
	localTags  map[string]bool
	remoteTags map[string]bool

	createdTags    []string
	forcedTags     []string
	pushedTags     []string
	forcePushed    []string
	commitMessages []string
	stagedPaths    [][]string
	pushes         int
	cleanTree      bool
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		head:       "headsha",
		localTags:  map[string]bool{},
		remoteTags: map[string]bool{},
	}
}

func (g *fakeGit) seedTag(name, version, sha string) {
	g.tags = append(g.tags, TagInfo{Name: name, Version: mustVersion(version), SHA: sha})
	g.localTags[name] = true
	g.remoteTags[name] = true
}

func (g *fakeGit) LatestTag(prefix string) (*TagInfo, error) {
	if len(g.tags) == 0 {
		return nil, nil
	}
	latest := g.tags[len(g.tags)-1]
	return &latest, nil
}

func (g *fakeGit) AllTags(prefix string) ([]TagInfo, error) {
	return g.tags, nil
}

func (g *fakeGit) CommitsBetween(from, to string) ([]commit.Raw, error) {
	return g.commits, nil
}

func (g *fakeGit) CreateTag(name, message string) error {
	if g.localTags[name] {
		return fmt.Errorf("tag %s already exists", name)
	}
	g.localTags[name] = true
	g.createdTags = append(g.createdTags, name)
	return nil
}

func (g *fakeGit) ForceCreateTag(name, message string) error {
	g.localTags[name] = true
	g.forcedTags = append(g.forcedTags, name)
	return nil
}

func (g *fakeGit) PushTag(name string) error {
	if g.remoteTags[name] {
		return fmt.Errorf("remote tag %s already exists", name)
	}
	g.remoteTags[name] = true
	g.pushedTags = append(g.pushedTags, name)
	return nil
}

func (g *fakeGit) ForcePushTag(name string) error {
	g.remoteTags[name] = true
	g.forcePushed = append(g.forcePushed, name)
	return nil
}

func (g *fakeGit) StageAndCommit(paths []string, message string) (bool, error) {
	if g.cleanTree {
		return false, nil
	}
	g.stagedPaths = append(g.stagedPaths, paths)
	g.commitMessages = append(g.commitMessages, message)
	return true, nil
}

func (g *fakeGit) Push() error {
	g.pushes++
	return nil
}

func (g *fakeGit) TagExists(name string) (bool, error) {
	return g.localTags[name], nil
}

func (g *fakeGit) RemoteTagExists(name string) (bool, error) {
	return g.remoteTags[name], nil
}

func (g *fakeGit) TagDate(name string) (string, error) {
	return "2026-01-01", nil
}

func (g *fakeGit) HeadSHA() (string, error) {
	return g.head, nil
}

// fakeHost records release-host mutations.
type fakeHost struct {
	releases map[string]string // tag -> body

	created  []string
	deleted  []string
	uploaded map[string][]string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		releases: map[string]string{},
		uploaded: map[string][]string{},
	}
}

func (h *fakeHost) CreateRelease(tag, title, body string, prerelease bool) (string, error) {
	h.releases[tag] = body
	h.created = append(h.created, tag)
	return "https://example.test/releases/" + tag, nil
}

func (h *fakeHost) ReleaseExists(tag string) (bool, error) {
	_, ok := h.releases[tag]
	return ok, nil
}

func (h *fakeHost) DeleteRelease(tag string) error {
	delete(h.releases, tag)
	h.deleted = append(h.deleted, tag)
	return nil
}

func (h *fakeHost) UploadAssets(tag string, files []string) error {
	h.uploaded[tag] = append(h.uploaded[tag], files...)
	return nil
}

func (h *fakeHost) CompareURL(base, head string) string {
	return fmt.Sprintf("https://example.test/compare/%s...%s", base, head)
}

func (h *fakeHost) RepoURL() string {
	return "https://example.test/acme/widget"
}

// fakeHooks records every hook invocation in order.
type fakeHooks struct {
	runs [][]string
	envs []map[string]string
	fail map[string]error // command -> error to return
}

func (h *fakeHooks) Run(commands []string, env map[string]string) error {
	h.runs = append(h.runs, commands)
	h.envs = append(h.envs, env)
	for _, cmd := range commands {
		if err, ok := h.fail[cmd]; ok {
			return err
		}
	}
	return nil
}
