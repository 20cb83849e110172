// Package credential provides the tab for storing and removing the OpenAI
// admin API key.
package credential

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/app"
)

// keyMap defines the key bindings specific to the credential tab.
type keyMap struct {
	Edit   key.Binding
	Submit key.Binding
	Delete key.Binding
	Reveal key.Binding
	Escape key.Binding
}

// defaultKeyMap returns the default key bindings for the credential tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("enter", "a", "e"),
			key.WithHelp("enter", "enter key"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete key"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "show/hide input"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the credential tab state.
type Model struct {
	state         *app.State
	commands      *app.Commands
	input         textinput.Model
	keys          keyMap
	width         int
	height        int
	editing       bool
	confirmDelete bool
}

// New creates a new credential model.
func New(state *app.State, cmds *app.Commands) *Model {
	input := textinput.New()
	input.Placeholder = "Paste admin API key (sk-admin-...)"
	input.CharLimit = 512
	input.Width = 50
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'

	return &Model{
		state:    state,
		commands: cmds,
		input:    input,
		keys:     defaultKeyMap(),
	}
}

// Init initializes the credential tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Capturing reports whether keys should be typed into the tab.
func (m *Model) Capturing() bool {
	return m.editing || m.confirmDelete
}

// Update handles messages for the credential tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.editing {
		return m.updateForm(msg)
	}
	if m.confirmDelete {
		return m.updateDeleteConfirm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Edit):
			return m, m.startEditing()

		case key.Matches(msg, m.keys.Delete):
			if m.state.HasCredential() {
				m.confirmDelete = true
			}
		}
	}

	return m, nil
}

func (m *Model) startEditing() tea.Cmd {
	m.editing = true
	m.input.SetValue("")
	m.input.EchoMode = textinput.EchoPassword
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

// updateForm handles the key entry form.
func (m *Model) updateForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.stopEditing()
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, m.commands.NotifyWarning("API key is empty")
			}
			m.stopEditing()
			return m, m.commands.SaveCredential(value)

		case key.Matches(msg, m.keys.Reveal):
			if m.input.EchoMode == textinput.EchoPassword {
				m.input.EchoMode = textinput.EchoNormal
			} else {
				m.input.EchoMode = textinput.EchoPassword
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.confirmDelete = false
			return m, m.commands.DeleteCredential()
		case "n", "N", "esc":
			m.confirmDelete = false
		}
	}
	return m, nil
}

// SetSize sets the available size for the credential tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = min(max(width-20, 20), 70)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Submit, m.keys.Reveal, m.keys.Escape}
	}
	return []key.Binding{m.keys.Edit, m.keys.Delete}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit, m.keys.Delete},
		{m.keys.Submit, m.keys.Reveal, m.keys.Escape},
	}
}
