// Package version holds the semantic-version bump arithmetic.
package version

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// BumpLevel is the magnitude of a version increment. Levels are totally
// ordered: Major > Minor > Patch.
type BumpLevel int

const (
	BumpNone BumpLevel = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// String renders the level the way it appears in config files.
func (b BumpLevel) String() string {
	switch b {
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "none"
	}
}

// MarshalJSON renders the level as its config-file string.
func (b BumpLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// ParseBumpLevel converts a config string into a BumpLevel.
func ParseBumpLevel(s string) (BumpLevel, error) {
	switch s {
	case "patch":
		return BumpPatch, nil
	case "minor":
		return BumpMinor, nil
	case "major":
		return BumpMajor, nil
	}
	return BumpNone, fmt.Errorf("unknown bump level: %q", s)
}

// Zero is the base version used when no release tag exists yet.
func Zero() *semver.Version {
	v := semver.New(0, 0, 0, "", "")
	return v
}

// Apply returns the version that results from bumping v by level.
// Minor bumps reset patch; major bumps reset minor and patch.
func Apply(v *semver.Version, level BumpLevel) *semver.Version {
	switch level {
	case BumpMajor:
		next := v.IncMajor()
		return &next
	case BumpMinor:
		next := v.IncMinor()
		return &next
	default:
		next := v.IncPatch()
		return &next
	}
}
