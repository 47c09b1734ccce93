package changelog

import "fmt"

// Heading is the top-level heading written when a changelog file is
// created from scratch.
const Heading = "# Changelog"

// Merge inserts a freshly rendered body into an existing changelog
// document. An empty document gets the top-level heading; otherwise the
// body goes immediately after the first blank line following the top
// heading, leaving everything else untouched.
func Merge(existing, body string) string {
	if existing == "" {
		return fmt.Sprintf("%s\n\n%s\n", Heading, body)
	}
	for i := 0; i+1 < len(existing); i++ {
		if existing[i] == '\n' && existing[i+1] == '\n' {
			header, rest := existing[:i], existing[i+2:]
			return fmt.Sprintf("%s\n\n%s\n\n%s", header, body, rest)
		}
	}
	return fmt.Sprintf("%s\n\n%s\n", existing, body)
}

// Regenerated builds a whole changelog document from scratch.
func Regenerated(body string) string {
	return fmt.Sprintf("%s\n\n%s\n", Heading, body)
}
