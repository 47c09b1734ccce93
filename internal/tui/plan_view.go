// internal/tui/plan_view.go
//
// Static rendering of a computed release plan. This is plain lipgloss
// output (no event loop): the plan is printed once, then the confirm
// prompt takes over.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/trunkrel/trunkrel/internal/release"
)

var planBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#444444")).
	Padding(0, 1)

// RenderPlan formats the plan summary and the changelog preview for
// terminal display.
func RenderPlan(plan *release.Plan, changelogBody string) string {
	current := "none"
	if plan.CurrentVersion != nil {
		current = plan.CurrentVersion.String()
	}

	lines := []string{
		accentStyle.Render("Release Plan"),
		fmt.Sprintf("Current version:  %s", current),
		fmt.Sprintf("Next version:     %s", plan.NextVersion.String()),
		fmt.Sprintf("Bump:             %s", plan.Bump),
		fmt.Sprintf("Tag:              %s", plan.TagName),
	}
	if plan.FloatingTagName != "" {
		lines = append(lines, fmt.Sprintf("Floating tag:     %s", plan.FloatingTagName))
	}
	lines = append(lines, fmt.Sprintf("Commits:          %d", len(plan.Commits)))
	if plan.IsRepublish() {
		lines = append(lines, dimStyle.Render("Re-release of the current version"))
	}
	summary := planBoxStyle.Render(strings.Join(lines, "\n"))

	preview := planBoxStyle.Render(
		accentStyle.Render("Changelog") + "\n" + strings.TrimRight(changelogBody, "\n"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, summary, preview)
}
