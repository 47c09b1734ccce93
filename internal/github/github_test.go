package github

import (
	"errors"
	"testing"

	"github.com/trunkrel/trunkrel/internal/commit"
)

func TestAPIURLForGitHubCom(t *testing.T) {
	c := New("acme", "widget", "github.com", "tok")
	if got := c.apiURL(); got != "https://api.github.com" {
		t.Fatalf("apiURL = %q, want %q", got, "https://api.github.com")
	}
}

func TestAPIURLForEnterpriseHost(t *testing.T) {
	c := New("acme", "widget", "ghe.corp.example", "tok")
	if got := c.apiURL(); got != "https://ghe.corp.example/api/v3" {
		t.Fatalf("apiURL = %q, want %q", got, "https://ghe.corp.example/api/v3")
	}
}

func TestRepoAndCompareURLs(t *testing.T) {
	c := New("acme", "widget", "github.com", "tok")
	if got := c.RepoURL(); got != "https://github.com/acme/widget" {
		t.Fatalf("RepoURL = %q", got)
	}
	want := "https://github.com/acme/widget/compare/v1.0.0...v1.1.0"
	if got := c.CompareURL("v1.0.0", "v1.1.0"); got != want {
		t.Fatalf("CompareURL = %q, want %q", got, want)
	}
}

func TestResolveContributorsLooksUpEachAuthorOnce(t *testing.T) {
	c := New("acme", "widget", "github.com", "tok")
	calls := 0
	c.lookupLogin = func(sha string) (string, error) {
		calls++
		switch sha {
		case "aaa":
			return "ada-dev", nil
		default:
			return "", errors.New("not found")
		}
	}

	commits := []commit.Conventional{
		{SHA: "aaa", Author: "Ada"},
		{SHA: "bbb", Author: "Ghost"},
		{SHA: "ccc", Author: "Ghost"},
		{SHA: "ddd", Author: "Ghost"},
		{SHA: "eee", Author: "Ada"},
	}
	resolved := c.ResolveContributors(commits)

	if resolved["Ada"] != "@ada-dev" {
		t.Fatalf("resolved = %v, want Ada -> @ada-dev", resolved)
	}
	if _, ok := resolved["Ghost"]; ok {
		t.Fatalf("unresolvable author should be absent: %v", resolved)
	}
	// One lookup per distinct author, even when lookups fail.
	if calls != 2 {
		t.Fatalf("lookups = %d, want 2", calls)
	}
}
