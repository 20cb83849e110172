package credential

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-cost-tui/internal/services/billing"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// View renders the credential tab.
func (m *Model) View() string {
	sections := []string{m.renderTitle(), m.renderStatus()}

	switch {
	case m.editing:
		sections = append(sections, m.renderForm())
	case m.confirmDelete:
		sections = append(sections, m.renderDeleteConfirm())
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("OpenAI API Key")
	subtitle := styles.HelpStyle.Render("Stored encrypted in the local database")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderStatus() string {
	cardWidth := max(m.width-6, 40)

	var status string
	switch {
	case m.state.IsCredentialLoading():
		status = styles.InfoTextStyle.Render("⟳ Saving...")
	case m.state.HasCredential():
		status = styles.SuccessTextStyle.Render("● Key stored")
	default:
		status = styles.WarningTextStyle.Render("○ No key stored")
	}

	hint := lipgloss.NewStyle().Width(cardWidth - 6).Render(styles.HelpStyle.Render(billing.PermissionHint))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render("Status"),
			status,
			"",
			hint,
		),
	)
}

func (m *Model) renderForm() string {
	cardWidth := min(max(m.width-10, 50), 80)

	rows := []string{
		styles.CardTitleStyle.Render("Enter API Key"),
		styles.FocusedStyle.Render("> Admin key:"),
		styles.FocusedBorderStyle.Width(cardWidth - 10).Render(m.input.View()),
		"",
		styles.HelpStyle.Render("Enter: save | Ctrl+V: show/hide | Esc: cancel"),
	}

	return styles.ModalContentStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete API Key?"),
		"",
		"The cost display will fail until a new key is stored.",
		"",
		styles.HelpKeyStyle.Render("(y)es")+"  "+styles.HelpDescStyle.Render("(n)o"),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(60).Render(content),
		m.width,
	)
}

func (m *Model) renderFooter() string {
	var shortcuts []string

	switch {
	case m.editing:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " save",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case m.confirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " set key",
			styles.HelpKeyStyle.Render("d") + " delete",
		}
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
