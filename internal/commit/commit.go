// Package commit parses raw git commit messages into conventional commits
// and classifies them against a configurable type rule table.
package commit

import (
	"github.com/trunkrel/trunkrel/internal/version"
)

// Raw is a commit as read from git history, before any parsing.
type Raw struct {
	SHA     string
	Message string
	Author  string
}

// Conventional is a commit whose header matched the conventional-commit
// grammar `type[(scope)][!]: description`.
type Conventional struct {
	SHA         string `json:"sha"`
	Type        string `json:"type"`
	Scope       string `json:"scope,omitempty"`
	Description string `json:"description"`
	Body        string `json:"body,omitempty"`
	Breaking    bool   `json:"breaking"`
	Author      string `json:"author,omitempty"`
}

// ShortSHA returns the abbreviated sha used in changelog lines.
func (c Conventional) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// TypeRule maps a commit type name to an optional bump level and an
// optional changelog section heading. An empty Section keeps the type in
// the table (so it lands in the misc catch-all) without a section of its
// own.
type TypeRule struct {
	Name    string `yaml:"name" json:"name"`
	Bump    string `yaml:"bump,omitempty" json:"bump,omitempty"`
	Section string `yaml:"section,omitempty" json:"section,omitempty"`
}

// DefaultRules returns the built-in rule table. Order matters: the first
// declaration of a section name fixes that section's position in the
// changelog.
func DefaultRules() []TypeRule {
	return []TypeRule{
		{Name: "feat", Bump: "minor", Section: "Features"},
		{Name: "fix", Bump: "patch", Section: "Bug Fixes"},
		{Name: "perf", Bump: "patch", Section: "Performance"},
		{Name: "docs", Section: "Documentation"},
		{Name: "refactor", Section: "Refactoring"},
		{Name: "revert", Section: "Reverts"},
		{Name: "chore"},
		{Name: "ci"},
		{Name: "test"},
		{Name: "build"},
		{Name: "style"},
	}
}

// Classifier answers bump and section questions for commit types.
// It is built once from the configured rule table.
type Classifier struct {
	rules []TypeRule
	bumps map[string]version.BumpLevel
	index map[string]int
}

// NewClassifier validates the rule table and builds the lookup maps.
// Duplicate rule names are a configuration error.
func NewClassifier(rules []TypeRule) (*Classifier, error) {
	c := &Classifier{
		rules: rules,
		bumps: make(map[string]version.BumpLevel, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		if _, dup := c.index[r.Name]; dup {
			return nil, &RuleError{Name: r.Name, Reason: "duplicate rule name"}
		}
		c.index[r.Name] = i
		if r.Bump == "" {
			continue
		}
		level, err := version.ParseBumpLevel(r.Bump)
		if err != nil {
			return nil, &RuleError{Name: r.Name, Reason: err.Error()}
		}
		c.bumps[r.Name] = level
	}
	return c, nil
}

// RuleError reports an invalid entry in the commit type table.
type RuleError struct {
	Name   string
	Reason string
}

func (e *RuleError) Error() string {
	return "commit type rule " + e.Name + ": " + e.Reason
}

// Rules returns the table in declaration order.
func (c *Classifier) Rules() []TypeRule {
	return c.rules
}

// BumpLevel returns the level a commit of the given type contributes.
// A breaking commit is always Major, whatever its type says.
func (c *Classifier) BumpLevel(typeName string, breaking bool) version.BumpLevel {
	if breaking {
		return version.BumpMajor
	}
	return c.bumps[typeName]
}

// Section returns the changelog section for a type, or "" if the type is
// unknown or deliberately unsectioned.
func (c *Classifier) Section(typeName string) string {
	if i, ok := c.index[typeName]; ok {
		return c.rules[i].Section
	}
	return ""
}

// IsAllowed reports whether the type appears in the table at all.
func (c *Classifier) IsAllowed(typeName string) bool {
	_, ok := c.index[typeName]
	return ok
}

// DetermineBump returns the highest bump level any commit contributes,
// or BumpNone when nothing warrants a release.
func (c *Classifier) DetermineBump(commits []Conventional) version.BumpLevel {
	max := version.BumpNone
	for _, cc := range commits {
		if level := c.BumpLevel(cc.Type, cc.Breaking); level > max {
			max = level
		}
	}
	return max
}
