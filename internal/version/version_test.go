package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestApply(t *testing.T) {
	tests := []struct {
		base  string
		level BumpLevel
		want  string
	}{
		{"1.2.3", BumpPatch, "1.2.4"},
		{"1.2.3", BumpMinor, "1.3.0"},
		{"1.2.3", BumpMajor, "2.0.0"},
		{"0.0.0", BumpMinor, "0.1.0"},
		{"0.9.9", BumpMajor, "1.0.0"},
	}
	for _, tt := range tests {
		base := semver.MustParse(tt.base)
		got := Apply(base, tt.level)
		if got.String() != tt.want {
			t.Fatalf("Apply(%s, %v) = %s, want %s", tt.base, tt.level, got, tt.want)
		}
		// The input version is never mutated.
		if base.String() != tt.base {
			t.Fatalf("Apply mutated its input: %s", base)
		}
	}
}

func TestApplyStrictlyIncreases(t *testing.T) {
	base := semver.MustParse("3.4.5")
	for _, level := range []BumpLevel{BumpPatch, BumpMinor, BumpMajor} {
		next := Apply(base, level)
		if !next.GreaterThan(base) {
			t.Fatalf("Apply(%s, %v) = %s is not greater", base, level, next)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	if !(BumpNone < BumpPatch && BumpPatch < BumpMinor && BumpMinor < BumpMajor) {
		t.Fatal("bump levels are not totally ordered")
	}
}

func TestParseBumpLevel(t *testing.T) {
	for _, s := range []string{"patch", "minor", "major"} {
		level, err := ParseBumpLevel(s)
		if err != nil {
			t.Fatalf("ParseBumpLevel(%q) returned error: %v", s, err)
		}
		if level.String() != s {
			t.Fatalf("round trip mismatch: %q -> %v", s, level)
		}
	}
	if _, err := ParseBumpLevel("huge"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestZero(t *testing.T) {
	if got := Zero().String(); got != "0.0.0" {
		t.Fatalf("Zero = %s, want 0.0.0", got)
	}
	if got := Apply(Zero(), BumpMinor).String(); got != "0.1.0" {
		t.Fatalf("first minor release = %s, want 0.1.0", got)
	}
}
