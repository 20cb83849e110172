package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-cost-tui/internal/app"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/ui/components"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// View renders the stats tab.
func (m *Model) View() string {
	if m.state.IsReportLoading() {
		return m.renderLoading()
	}

	report, err := m.state.GetReport()
	if err != nil {
		return m.renderError(err)
	}
	if report == nil {
		return m.renderEmpty("Press r to load this month's breakdown.")
	}
	if len(report.Daily) == 0 {
		return m.renderEmpty("No cost recorded this month yet.")
	}

	sections := []string{
		m.renderHeader(report),
		m.renderDailyChart(report),
		m.renderRunningTotal(report),
		m.renderTotal(report),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading cost breakdown..."))
}

func (m *Model) renderError(err error) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), app.DescribeError(err)),
		"",
		styles.HelpStyle.Render("Press r to retry."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty(hint string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Stats"),
		"",
		styles.HelpStyle.Render(hint),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(report *models.CostReport) string {
	title := styles.TitleStyle.Render("Stats: " + report.Window.String())

	var subtitle string
	if !report.FetchedAt.IsZero() {
		subtitle = styles.HelpStyle.Render("Fetched " + report.FetchedAt.Format("Jan 2 15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderDailyChart(report *models.CostReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("▤")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Daily Cost")),
	}

	values := make([]float64, len(report.Daily))
	labels := make([]string, len(report.Daily))
	for i, d := range report.Daily {
		values[i] = d.Amount
		labels[i] = d.Date
	}

	for line := range strings.SplitSeq(components.RenderBarChart(values, labels, cardWidth-8), "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRunningTotal(report *models.CostReport) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Running Total")),
	}

	chartWidth := max(cardWidth-16, 30)
	chart := components.RenderLineChart(report.RunningTotals(), chartWidth, 8,
		fmt.Sprintf("Cumulative cost over %d days ($)", len(report.Daily)))

	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTotal(report *models.CostReport) string {
	lines := []string{
		styles.TableTotalStyle.Render("Total: " + components.FormatDollars(report.Total)),
	}

	if report.MixedCurrencies() {
		lines = append(lines, styles.WarningTextStyle.Render(
			"Mixed currencies ("+strings.Join(report.Currencies, ", ")+") summed without conversion"))
	}
	if report.Truncated {
		lines = append(lines, styles.WarningTextStyle.Render(
			"More pages were available; set follow_pages: true to fetch them"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
