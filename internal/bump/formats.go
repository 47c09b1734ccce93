package bump

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shu-go/orderedmap"
)

var (
	tomlTableRe   = regexp.MustCompile(`^\s*\[(.+)\]\s*$`)
	tomlVersionRe = regexp.MustCompile(`^(\s*version\s*=\s*["'])([^"']*)(["'].*)$`)
	gradleRe      = regexp.MustCompile(`^(\s*version\s*=\s*["'])([^"']*)(["'].*)$`)
	pomVersionRe  = regexp.MustCompile(`<version>[^<]*</version>`)
	goVersionRe   = regexp.MustCompile(`((?:var|const)\s+Version\s*(?:string\s*)?=\s*")([^"]*)(")`)
)

// cargoToml rewrites [package].version, falling back to
// [workspace.package].version.
func cargoToml(contents, newVersion string) (string, error) {
	return tomlVersion(contents, newVersion, "package", "workspace.package")
}

// pyprojectToml rewrites [project].version, falling back to
// [tool.poetry].version.
func pyprojectToml(contents, newVersion string) (string, error) {
	return tomlVersion(contents, newVersion, "project", "tool.poetry")
}

// tomlVersion replaces the version line inside the first of the given
// tables that has one. Only that line changes; the rest of the document
// is carried through byte for byte.
func tomlVersion(contents, newVersion string, tables ...string) (string, error) {
	lines := strings.Split(contents, "\n")
	for _, table := range tables {
		current := ""
		for i, line := range lines {
			if m := tomlTableRe.FindStringSubmatch(line); m != nil {
				current = strings.TrimSpace(m[1])
				continue
			}
			if current != table {
				continue
			}
			if m := tomlVersionRe.FindStringSubmatch(line); m != nil {
				lines[i] = m[1] + newVersion + m[3]
				return strings.Join(lines, "\n"), nil
			}
		}
	}
	return "", ErrNoVersion
}

// packageJSON re-serializes the document with the version replaced.
// Top-level key order survives the round trip; output is pretty-printed
// and newline-terminated. Values decode into any, not json.RawMessage:
// the map's decoder reuses a scratch buffer per value, so raw slices
// would alias memory that later entries overwrite.
func packageJSON(contents, newVersion string) (string, error) {
	doc := orderedmap.New[string, any]()
	if err := json.Unmarshal([]byte(contents), doc); err != nil {
		return "", fmt.Errorf("parse package.json: %w", err)
	}
	doc.Set("version", newVersion)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize package.json: %w", err)
	}
	return string(out) + "\n", nil
}

// pomXML replaces the first <version> element after the <parent> block
// (or after <modelVersion> when there is no parent), so a parent's
// pinned version is never touched.
func pomXML(contents, newVersion string) (string, error) {
	start := 0
	if i := strings.Index(contents, "</parent>"); i >= 0 {
		start = i + len("</parent>")
	} else if i := strings.Index(contents, "</modelVersion>"); i >= 0 {
		start = i + len("</modelVersion>")
	}
	loc := pomVersionRe.FindStringIndex(contents[start:])
	if loc == nil {
		return "", ErrNoVersion
	}
	replacement := "<version>" + newVersion + "</version>"
	return contents[:start+loc[0]] + replacement + contents[start+loc[1]:], nil
}

// gradle replaces the first top-level version assignment. Anchoring the
// match to the start of a line keeps dependency coordinate strings (and
// plugin version clauses, which have no "=") out of reach.
func gradle(contents, newVersion string) (string, error) {
	lines := strings.Split(contents, "\n")
	for i, line := range lines {
		if m := gradleRe.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + newVersion + m[3]
			return strings.Join(lines, "\n"), nil
		}
	}
	return "", ErrNoVersion
}

// goSource rewrites the first `var`/`const Version = "..."` assignment.
func goSource(contents, newVersion string) (string, error) {
	m := goVersionRe.FindStringSubmatchIndex(contents)
	if m == nil {
		return "", ErrNoVersion
	}
	// m[4]:m[5] is the quoted version text (second capture group).
	return contents[:m[4]] + newVersion + contents[m[5]:], nil
}
