package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/relaybuild/relay/pkg/scaffold"
)

var errPromptCancelled = errors.New("cancelled")

type namePromptKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var namePromptKeys = namePromptKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "create"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

// namePromptModel asks for a project name and validates it as the user types.
type namePromptModel struct {
	input     textinput.Model
	err       error
	done      bool
	cancelled bool
}

func newNamePromptModel() namePromptModel {
	ti := textinput.New()
	ti.Placeholder = "my-app"
	ti.CharLimit = 64
	ti.Focus()
	return namePromptModel{input: ti}
}

func (m namePromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m namePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, namePromptKeys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, namePromptKeys.Enter):
			m.err = scaffold.ValidateName(m.value())
			if m.err == nil {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.err != nil {
		m.err = scaffold.ValidateName(m.value())
	}
	return m, cmd
}

func (m namePromptModel) value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m namePromptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Project name") + "\n\n")
	b.WriteString(m.input.View() + "\n\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(faintStyle.Render(fmt.Sprintf("%s • %s", namePromptKeys.Enter.Help().Desc, namePromptKeys.Quit.Help().Key+" to cancel")))
	return b.String()
}

// promptProjectName runs the interactive name prompt.
func promptProjectName() (string, error) {
	final, err := tea.NewProgram(newNamePromptModel()).Run()
	if err != nil {
		return "", fmt.Errorf("failed to run prompt: %w", err)
	}
	m := final.(namePromptModel)
	if m.cancelled || !m.done {
		return "", errPromptCancelled
	}
	return m.value(), nil
}
