package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// MenuItem is one entry of a quick-pick menu.
type MenuItem struct {
	Label string
	Hint  string
}

type menuKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Close  key.Binding
}

// Menu is a small modal list picked with arrows, enter or a digit.
type Menu struct {
	Title  string
	Items  []MenuItem
	keys   menuKeys
	cursor int
	open   bool
}

// NewMenu returns a closed menu.
func NewMenu(title string, items ...MenuItem) Menu {
	return Menu{
		Title: title,
		Items: items,
		keys: menuKeys{
			Up:     key.NewBinding(key.WithKeys("up", "k")),
			Down:   key.NewBinding(key.WithKeys("down", "j")),
			Select: key.NewBinding(key.WithKeys("enter", " ")),
			Close:  key.NewBinding(key.WithKeys("esc", "m", "q")),
		},
	}
}

// Open shows the menu with the cursor on the first item.
func (m *Menu) Open() {
	m.open = true
	m.cursor = 0
}

// Close hides the menu.
func (m *Menu) Close() {
	m.open = false
}

// IsOpen reports whether the menu is visible.
func (m *Menu) IsOpen() bool {
	return m.open
}

// Cursor returns the highlighted index.
func (m *Menu) Cursor() int {
	return m.cursor
}

// HandleKey moves the cursor or picks an item. It returns the picked index,
// or -1 when nothing was picked. Picking or cancelling closes the menu.
func (m *Menu) HandleKey(msg tea.KeyMsg) int {
	if !m.open || len(m.Items) == 0 {
		return -1
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor - 1 + len(m.Items)) % len(m.Items)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.Items)
	case key.Matches(msg, m.keys.Select):
		m.open = false
		return m.cursor
	case key.Matches(msg, m.keys.Close):
		m.open = false
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx < len(m.Items) {
				m.open = false
				return idx
			}
		}
	}
	return -1
}

// View renders the menu box. detail, when set, is shown under the title.
func (m *Menu) View(detail string) string {
	var lines []string
	lines = append(lines, styles.TitleStyle.Render(m.Title))

	if detail != "" {
		lines = append(lines, lipgloss.NewStyle().Width(50).Render(detail), "")
	}

	for i, item := range m.Items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == m.cursor {
			label = styles.SelectedListItemStyle.String() + styles.FocusedStyle.Render(label)
		} else {
			label = styles.ListItemStyle.Render(label)
		}
		if item.Hint != "" {
			label += "  " + styles.HelpStyle.Render(item.Hint)
		}
		lines = append(lines, label)
	}

	lines = append(lines, "", styles.HelpStyle.Render("enter select · esc close"))
	return styles.ModalContentStyle.Render(strings.Join(lines, "\n"))
}
