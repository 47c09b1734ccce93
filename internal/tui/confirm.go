// internal/tui/confirm.go

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is a one-shot y/n prompt.
type confirmModel struct {
	prompt   string
	answered bool
	accepted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.answered = true
			m.accepted = true
			return m, tea.Quit
		case "n", "N", "esc", "q", "ctrl+c":
			m.answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	return fmt.Sprintf("%s %s ", m.prompt, dimStyle.Render("[y/N]"))
}

// Confirm asks the user a yes/no question and reports their answer.
// Anything other than an explicit yes declines.
func Confirm(prompt string) (bool, error) {
	final, err := tea.NewProgram(confirmModel{prompt: prompt}).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.accepted, nil
}
