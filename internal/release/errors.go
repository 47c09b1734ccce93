package release

import (
	"errors"
	"fmt"
)

// ErrNoCommits is the expected outcome when nothing new exists since the
// reference tag and the force conditions are unmet.
var ErrNoCommits = errors.New("no commits found since last release")

// ErrNoBump is the expected outcome when commits exist but none map to a
// releasable type.
var ErrNoBump = errors.New("no releasable commits found")

// Kind labels the fatal error categories of the pipeline.
type Kind string

const (
	KindConfig        Kind = "config"
	KindSourceControl Kind = "source-control"
	KindReleaseHost   Kind = "release-host"
	KindVersionBump   Kind = "version-bump"
	KindBuildCommand  Kind = "build-command"
	KindChangelog     Kind = "changelog"
)

// Error is a fatal pipeline failure. The orchestrator aborts at the
// failing step, performs no compensation, and surfaces this to the
// caller; recovery is re-invocation.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}
