package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-cost-tui/internal/config"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
	"github.com/j-veylop/openai-cost-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func cardWidth(width int) int {
	return min(max(width-6, 50), 90)
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	cfg := m.state.GetConfig()
	if cfg == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		rows = append(rows, configRows(cfg)...)
		rows = append(rows, "", styles.HelpStyle.Render("Edits to the config file are applied automatically"))
	}

	return styles.CardStyle.Width(cardWidth(m.width)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func configRows(cfg *config.Config) []string {
	timeout := cfg.RequestTimeout.String()
	if cfg.RequestTimeout == 0 {
		timeout = "none"
	}
	interval := fmt.Sprintf("%d min", cfg.RefreshIntervalMinutes)
	if def := config.Default().RefreshIntervalMinutes; cfg.RefreshIntervalMinutes == def {
		interval += " (default)"
	}

	return []string{
		renderRow("Config File", cfg.File),
		renderRow("Database", cfg.DatabasePath()),
		renderRow("Master Key", cfg.MasterKeyPath()),
		renderRow("Log File", cfg.LogFile+" ("+cfg.LogLevel+")"),
		renderRow("API Base URL", cfg.BaseURL),
		renderRow("Refresh", interval),
		renderRow("Default Mode", cfg.Mode().String()),
		renderRow("Request Timeout", timeout),
		renderRow("Pagination", fmt.Sprintf("limit %d, follow %s, max %d pages",
			cfg.PageLimit, strconv.FormatBool(cfg.FollowPages), cfg.MaxPages)),
		renderRow("Desktop Alerts", strconv.FormatBool(cfg.DesktopNotifications)),
	}
}

// renderRow renders a key-value row.
func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.Name),
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	}

	key := styles.WarningTextStyle.Render("missing")
	if m.state.HasCredential() {
		key = styles.SuccessTextStyle.Render("stored")
	}
	rows = append(rows, "API key: "+key)

	return styles.CardStyle.Width(cardWidth(m.width)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
