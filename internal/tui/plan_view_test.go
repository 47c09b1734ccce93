package tui

import (
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/trunkrel/trunkrel/internal/commit"
	"github.com/trunkrel/trunkrel/internal/release"
	"github.com/trunkrel/trunkrel/internal/version"
)

func TestRenderPlan(t *testing.T) {
	plan := &release.Plan{
		CurrentVersion: semver.MustParse("1.2.3"),
		NextVersion:    semver.MustParse("1.3.0"),
		Bump:           version.BumpMinor,
		Commits:        []commit.Conventional{{SHA: "abc1234", Type: "feat", Description: "thing"}},
		TagName:        "v1.3.0",
	}
	out := RenderPlan(plan, "## 1.3.0 (2026-03-01)\n\n### Features\n\n- thing (abc1234)")

	for _, want := range []string{"1.2.3", "1.3.0", "v1.3.0", "minor", "### Features"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderPlan missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPlanFirstRelease(t *testing.T) {
	plan := &release.Plan{
		NextVersion: semver.MustParse("0.1.0"),
		Bump:        version.BumpMinor,
		TagName:     "v0.1.0",
	}
	out := RenderPlan(plan, "## 0.1.0 (2026-03-01)")
	if !strings.Contains(out, "none") {
		t.Fatalf("expected current version rendered as none:\n%s", out)
	}
}
