// Package changelog renders release notes as Markdown.
//
// The formatter is deterministic and order-agnostic across entries:
// callers pass entries in the order they should appear (newest first for
// a regenerated file).
package changelog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trunkrel/trunkrel/internal/commit"
)

// Entry is one rendered release section.
type Entry struct {
	Version      string
	Date         string
	Commits      []commit.Conventional
	CompareURL   string
	RepoURL      string
	Contributors map[string]string // git author name -> resolved handle
}

// Formatter renders entries according to a rule table and the configured
// section labels.
type Formatter struct {
	classifier      *commit.Classifier
	breakingSection string
	miscSection     string
}

// NewFormatter builds a formatter around an already-validated classifier.
func NewFormatter(classifier *commit.Classifier, breakingSection, miscSection string) *Formatter {
	return &Formatter{
		classifier:      classifier,
		breakingSection: breakingSection,
		miscSection:     miscSection,
	}
}

// Format renders all entries and concatenates them in the given order.
func (f *Formatter) Format(entries []Entry) string {
	var b strings.Builder
	for _, entry := range entries {
		f.formatEntry(&b, entry)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) formatEntry(b *strings.Builder, entry Entry) {
	fmt.Fprintf(b, "## %s (%s)\n", entry.Version, entry.Date)

	// Breaking changes always come first and never reappear in a type
	// section below.
	var breaking []commit.Conventional
	for _, c := range entry.Commits {
		if c.Breaking {
			breaking = append(breaking, c)
		}
	}
	f.section(b, f.breakingSection, breaking, entry.RepoURL)

	// Type sections in the order their labels were first declared.
	var order []string
	seen := map[string]bool{}
	for _, rule := range f.classifier.Rules() {
		if rule.Section != "" && !seen[rule.Section] {
			seen[rule.Section] = true
			order = append(order, rule.Section)
		}
	}
	for _, label := range order {
		var commits []commit.Conventional
		for _, c := range entry.Commits {
			if !c.Breaking && f.classifier.Section(c.Type) == label {
				commits = append(commits, c)
			}
		}
		f.section(b, label, commits, entry.RepoURL)
	}

	// Known-but-unsectioned types land in the misc catch-all. Types
	// absent from the table are omitted entirely.
	var misc []commit.Conventional
	for _, c := range entry.Commits {
		if !c.Breaking && f.classifier.IsAllowed(c.Type) && f.classifier.Section(c.Type) == "" {
			misc = append(misc, c)
		}
	}
	f.section(b, f.miscSection, misc, entry.RepoURL)

	if names := contributorLines(entry); len(names) > 0 {
		b.WriteString("\n### Contributors\n\n")
		for _, name := range names {
			fmt.Fprintf(b, "- %s\n", name)
		}
	}

	if entry.CompareURL != "" {
		fmt.Fprintf(b, "\n[Full Changelog](%s)\n", entry.CompareURL)
	}
}

func (f *Formatter) section(b *strings.Builder, label string, commits []commit.Conventional, repoURL string) {
	if len(commits) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", label)
	for _, c := range commits {
		b.WriteString(commitLine(c, repoURL))
	}
}

func commitLine(c commit.Conventional, repoURL string) string {
	ref := c.ShortSHA()
	if repoURL != "" {
		ref = fmt.Sprintf("[%s](%s/commit/%s)", ref, repoURL, c.SHA)
	}
	if c.Scope != "" {
		return fmt.Sprintf("- **%s**: %s (%s)\n", c.Scope, c.Description, ref)
	}
	return fmt.Sprintf("- %s (%s)\n", c.Description, ref)
}

// contributorLines returns the deduplicated, sorted author list with
// resolved handles substituted where the contributor map knows one.
func contributorLines(entry Entry) []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range entry.Commits {
		if c.Author == "" || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		if handle, ok := entry.Contributors[c.Author]; ok && handle != "" {
			names = append(names, handle)
		} else {
			names = append(names, c.Author)
		}
	}
	sort.Strings(names)
	return names
}
