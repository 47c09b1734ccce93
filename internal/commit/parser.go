package commit

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPattern is the built-in conventional-commit header grammar.
// Named groups: type, scope (optional), breaking (optional "!"),
// description.
const DefaultPattern = `^(?P<type>\w+)(?:\((?P<scope>[^)]+)\))?(?P<breaking>!)?:\s+(?P<description>.+)`

// Parser turns raw commits into conventional commits using a configured
// header pattern. The pattern governs parsing: a custom commit_pattern in
// the config replaces the default grammar entirely.
type Parser struct {
	re          *regexp.Regexp
	typeIdx     int
	scopeIdx    int
	breakingIdx int
	descIdx     int
}

// NewParser compiles the header pattern. The pattern must define the
// named groups type and description; scope and breaking are optional.
func NewParser(pattern string) (*Parser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("commit pattern: %w", err)
	}
	p := &Parser{re: re, typeIdx: -1, scopeIdx: -1, breakingIdx: -1, descIdx: -1}
	for i, name := range re.SubexpNames() {
		switch name {
		case "type":
			p.typeIdx = i
		case "scope":
			p.scopeIdx = i
		case "breaking":
			p.breakingIdx = i
		case "description":
			p.descIdx = i
		}
	}
	if p.typeIdx < 0 || p.descIdx < 0 {
		return nil, fmt.Errorf("commit pattern: missing required named groups type and description")
	}
	return p, nil
}

// Parse matches the first line of the message against the header grammar.
// The body is everything after the first blank line. A non-matching
// header returns ok=false; the caller decides whether that is a problem.
func (p *Parser) Parse(raw Raw) (Conventional, bool) {
	header := raw.Message
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	m := p.re.FindStringSubmatch(header)
	if m == nil {
		return Conventional{}, false
	}

	cc := Conventional{
		SHA:         raw.SHA,
		Type:        m[p.typeIdx],
		Description: m[p.descIdx],
		Author:      raw.Author,
	}
	if p.scopeIdx >= 0 {
		cc.Scope = m[p.scopeIdx]
	}
	if p.breakingIdx >= 0 {
		cc.Breaking = m[p.breakingIdx] != ""
	}
	if _, body, found := strings.Cut(raw.Message, "\n\n"); found {
		cc.Body = strings.TrimSpace(body)
	}
	return cc, true
}
