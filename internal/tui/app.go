// internal/tui/app.go
//
// Terminal UI for the interactive release flow. It uses bubbletea,
// which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6BCB77"))
)

// stepMsg announces that the release engine entered a new step.
type stepMsg string

// doneMsg announces that the release engine finished.
type doneMsg struct{ err error }

// progressModel shows a spinner plus the log of completed steps while
// the release runs in the background.
type progressModel struct {
	spinner   spinner.Model
	current   string
	completed []string
	err       error
	finished  bool
}

func newProgressModel() progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return progressModel{spinner: sp}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		if m.current != "" {
			m.completed = append(m.completed, m.current)
		}
		m.current = string(msg)
		return m, nil
	case doneMsg:
		if m.current != "" {
			m.completed = append(m.completed, m.current)
			m.current = ""
		}
		m.err = msg.err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, step := range m.completed {
		fmt.Fprintf(&b, "%s %s\n", okStyle.Render("✓"), step)
	}
	if m.current != "" {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.current)
	}
	if m.finished {
		if m.err != nil {
			fmt.Fprintf(&b, "%s %v\n", errStyle.Render("✗"), m.err)
		} else {
			fmt.Fprintf(&b, "%s\n", okStyle.Render("Release complete"))
		}
	}
	return b.String()
}

// RunWithProgress executes run under a spinner display. The notify
// callback it hands to run is safe to call from the worker goroutine;
// bubbletea's Send serializes messages into Update.
func RunWithProgress(run func(notify func(step string)) error) error {
	program := tea.NewProgram(newProgressModel())

	go func() {
		err := run(func(step string) {
			program.Send(stepMsg(step))
		})
		program.Send(doneMsg{err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(progressModel); ok {
		return m.err
	}
	return nil
}
