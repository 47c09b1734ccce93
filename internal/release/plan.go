package release

import (
	"github.com/Masterminds/semver/v3"

	"github.com/trunkrel/trunkrel/internal/commit"
	"github.com/trunkrel/trunkrel/internal/version"
)

// Plan is the immutable result of planning a release. It is produced
// once per Plan() call and consumed read-only by Execute().
type Plan struct {
	CurrentVersion  *semver.Version       `json:"current_version,omitempty"`
	NextVersion     *semver.Version       `json:"next_version"`
	Bump            version.BumpLevel     `json:"bump"`
	Commits         []commit.Conventional `json:"commits"`
	TagName         string                `json:"tag_name"`
	FloatingTagName string                `json:"floating_tag_name,omitempty"`
}

// IsRepublish reports whether the plan re-releases the current tag
// without new commits (the forced re-release case).
func (p *Plan) IsRepublish() bool {
	return len(p.Commits) == 0 && p.CurrentVersion != nil && p.CurrentVersion.Equal(p.NextVersion)
}
