package release

import (
	"github.com/Masterminds/semver/v3"

	"github.com/trunkrel/trunkrel/internal/commit"
)

// TagInfo identifies a release tag and the commit it points at.
type TagInfo struct {
	Name    string
	Version *semver.Version
	SHA     string
}

// SourceControl is the capability the orchestrator needs from a local
// repository. The shipped implementation shells out to git; tests use an
// in-memory fake.
type SourceControl interface {
	// LatestTag returns the newest semver tag matching prefix, or nil.
	LatestTag(prefix string) (*TagInfo, error)

	// AllTags returns every semver tag matching prefix, version-ascending.
	AllTags(prefix string) ([]TagInfo, error)

	// CommitsBetween lists commits in (from, to]. Empty from means all
	// commits reachable from to.
	CommitsBetween(from, to string) ([]commit.Raw, error)

	// CreateTag creates an annotated tag at HEAD.
	CreateTag(name, message string) error

	// ForceCreateTag creates or moves an annotated tag at HEAD.
	ForceCreateTag(name, message string) error

	// PushTag pushes one tag to origin.
	PushTag(name string) error

	// ForcePushTag pushes one tag to origin, overwriting it remotely.
	ForcePushTag(name string) error

	// StageAndCommit stages paths and commits. Returns false when the
	// tree was already clean.
	StageAndCommit(paths []string, message string) (bool, error)

	// Push pushes the current branch to origin.
	Push() error

	TagExists(name string) (bool, error)
	RemoteTagExists(name string) (bool, error)

	// TagDate returns the YYYY-MM-DD date of the commit a tag points to.
	TagDate(name string) (string, error)

	// HeadSHA returns the commit id of HEAD.
	HeadSHA() (string, error)
}

// ReleaseHost is the capability the orchestrator needs from a remote
// release host (GitHub or compatible).
type ReleaseHost interface {
	// CreateRelease publishes a release for an existing tag and returns
	// its URL.
	CreateRelease(tag, title, body string, prerelease bool) (string, error)

	ReleaseExists(tag string) (bool, error)
	DeleteRelease(tag string) error

	// UploadAssets attaches files to the release for tag.
	UploadAssets(tag string, files []string) error

	// CompareURL renders a comparison link between two refs.
	CompareURL(base, head string) string

	// RepoURL is the repository base URL used for changelog commit links.
	RepoURL() string
}

// HookRunner executes lifecycle shell commands with a release
// environment.
type HookRunner interface {
	Run(commands []string, env map[string]string) error
}
