// Package github implements the release-host capability against the
// GitHub REST API (github.com or GitHub Enterprise).
package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trunkrel/trunkrel/internal/commit"
)

const apiVersion = "2022-11-28"

// Client talks to one repository's release endpoints.
type Client struct {
	owner    string
	repo     string
	hostname string
	token    string
	http     *http.Client

	lookupLogin func(sha string) (string, error)
}

// New builds a client. hostname is "github.com" or a GHES host.
func New(owner, repo, hostname, token string) *Client {
	c := &Client{
		owner:    owner,
		repo:     repo,
		hostname: hostname,
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	c.lookupLogin = c.fetchLogin
	return c
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("https://%s/%s/%s", c.hostname, c.owner, c.repo)
}

func (c *Client) apiURL() string {
	if c.hostname == "github.com" {
		return "https://api.github.com"
	}
	return fmt.Sprintf("https://%s/api/v3", c.hostname)
}

func (c *Client) do(method, rawURL string, payload, out any) (int, error) {
	var body io.Reader
	contentType := ""
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(p)
		contentType = "application/octet-stream"
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequest(method, rawURL, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", "trunkrel")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("%s %s: %s: %s", method, rawURL, resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("parse response from %s: %w", rawURL, err)
		}
	}
	return resp.StatusCode, nil
}

type releaseResponse struct {
	ID        int64  `json:"id"`
	HTMLURL   string `json:"html_url"`
	UploadURL string `json:"upload_url"`
}

func (c *Client) releaseByTag(tag string) (*releaseResponse, int, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.apiURL(), c.owner, c.repo, tag)
	var rel releaseResponse
	status, err := c.do(http.MethodGet, u, nil, &rel)
	if err != nil {
		return nil, status, err
	}
	return &rel, status, nil
}

// CreateRelease publishes a release for tag and returns its URL.
func (c *Client) CreateRelease(tag, title, body string, prerelease bool) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/releases", c.apiURL(), c.owner, c.repo)
	payload := map[string]any{
		"tag_name":   tag,
		"name":       title,
		"body":       body,
		"prerelease": prerelease,
	}
	var rel releaseResponse
	if _, err := c.do(http.MethodPost, u, payload, &rel); err != nil {
		return "", err
	}
	return rel.HTMLURL, nil
}

// ReleaseExists checks for a release attached to tag.
func (c *Client) ReleaseExists(tag string) (bool, error) {
	_, status, err := c.releaseByTag(tag)
	if status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteRelease removes the release attached to tag.
func (c *Client) DeleteRelease(tag string) error {
	rel, _, err := c.releaseByTag(tag)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/repos/%s/%s/releases/%d", c.apiURL(), c.owner, c.repo, rel.ID)
	_, err = c.do(http.MethodDelete, u, nil, nil)
	return err
}

// UploadAssets attaches files to the release for tag.
func (c *Client) UploadAssets(tag string, files []string) error {
	rel, _, err := c.releaseByTag(tag)
	if err != nil {
		return err
	}
	// upload_url is a URI template like .../assets{?name,label}.
	uploadBase, _, _ := strings.Cut(rel.UploadURL, "{")

	for _, file := range files {
		name := filepath.Base(file)
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", file, err)
		}
		u := uploadBase + "?name=" + url.QueryEscape(name)
		if _, err := c.do(http.MethodPost, u, data, nil); err != nil {
			return fmt.Errorf("upload asset %s: %w", name, err)
		}
	}
	return nil
}

// CompareURL renders the comparison link between two refs.
func (c *Client) CompareURL(base, head string) string {
	return fmt.Sprintf("%s/compare/%s...%s", c.baseURL(), base, head)
}

// RepoURL is the repository's web URL, used for changelog commit links.
func (c *Client) RepoURL() string {
	return c.baseURL()
}

// ResolveContributors maps git author names to GitHub logins by looking
// up one commit per distinct author. Lookups are best effort: an author
// whose commit cannot be resolved keeps their raw name, and is not
// retried for their remaining commits.
func (c *Client) ResolveContributors(commits []commit.Conventional) map[string]string {
	resolved := map[string]string{}
	attempted := map[string]bool{}
	for _, cc := range commits {
		if cc.Author == "" || attempted[cc.Author] {
			continue
		}
		attempted[cc.Author] = true
		login, err := c.lookupLogin(cc.SHA)
		if err != nil || login == "" {
			continue
		}
		resolved[cc.Author] = "@" + login
	}
	return resolved
}

func (c *Client) fetchLogin(sha string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.apiURL(), c.owner, c.repo, sha)
	var out struct {
		Author struct {
			Login string `json:"login"`
		} `json:"author"`
	}
	if _, err := c.do(http.MethodGet, u, nil, &out); err != nil {
		return "", err
	}
	return out.Author.Login, nil
}
