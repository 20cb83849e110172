package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-cost-tui/internal/app"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
	"github.com/j-veylop/openai-cost-tui/internal/ui/components"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	sections := []string{
		m.renderTitle(),
		m.renderCostCard(),
		m.renderTrendCard(),
		m.renderFooter(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("OpenAI Cost")
	subtitle := styles.HelpStyle.Render("Organization spend from the billing API")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderCostCard() string {
	cardWidth := max(m.width-6, 40)
	st := m.state.GetCost()
	label := components.FormatStatus(st, m.state.MixedCurrencies(), components.RetryHintTUI)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(st.Mode.String()+" to date")),
	}

	switch st.Phase {
	case refresh.PhaseReady:
		rows = append(rows,
			styles.BigNumberStyle.Render(components.FormatDollars(m.displayedCost(st))),
			"",
			styles.HelpStyle.Render("  "+st.Window.String()),
		)
		if m.state.MixedCurrencies() {
			rows = append(rows, styles.WarningTextStyle.Render("  Multiple currencies summed without conversion"))
		}

	case refresh.PhaseFailed:
		rows = append(rows,
			label.Render(),
			"",
			styles.ErrorTextStyle.Render("  "+app.DescribeError(st.Err)),
			styles.HelpStyle.Render("  "+components.RetryHintTUI),
		)

	default:
		rows = append(rows, m.spinner.View()+" "+label.Render())
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTrendCard() string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("This month")),
	}

	report, _ := m.state.GetReport()
	if report == nil || len(report.Daily) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  Open Stats (2) for the daily breakdown"))
	} else {
		rows = append(rows,
			"  "+lipgloss.NewStyle().Foreground(styles.OpenAI).Render(components.RenderSparkline(dailyAmounts(report), cardWidth-8)),
			styles.HelpStyle.Render(fmt.Sprintf("  %d days · total %s", len(report.Daily), components.FormatDollars(report.Total))),
		)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFooter() string {
	var lines []string

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		lines = append(lines, fmt.Sprintf("Last updated: %s (%s ago)",
			updated.Format("15:04:05"), m.state.TimeSinceUpdate().Round(time.Second)))
	}
	if interval := m.state.GetInterval(); interval > 0 {
		lines = append(lines, fmt.Sprintf("Refreshing every %d min", int(interval.Minutes())))
	}

	if m.state.HasCredential() {
		lines = append(lines, styles.SuccessTextStyle.Render("● API key stored"))
	} else {
		lines = append(lines, styles.WarningTextStyle.Render("○ No API key. Press 3 to add one."))
	}

	lines = append(lines, "", styles.HelpStyle.Render("t today · M month · space toggle · r refresh · m menu"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func dailyAmounts(report *models.CostReport) []float64 {
	values := make([]float64, len(report.Daily))
	for i, d := range report.Daily {
		values[i] = d.Amount
	}
	return values
}
