// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// ChartPrimaryColor is used for bars.
var ChartPrimaryColor = lipgloss.Color("#7D56F4")

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// RenderBarChart draws one horizontal bar per value, labelled on the left
// and followed by the amount in dollars to four decimals.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, len(l))
	}

	valueStrs := make([]string, len(values))
	maxValueLen := 0
	for i, v := range values {
		valueStrs[i] = fmt.Sprintf("$%.4f", v)
		maxValueLen = max(maxValueLen, len(valueStrs[i]))
	}

	barWidth := max(width-maxLabelLen-maxValueLen-4, 10)
	barStyle := lipgloss.NewStyle().Foreground(ChartPrimaryColor)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		if v > 0 && barLen == 0 {
			barLen = 1
		}

		line := fmt.Sprintf("%*s │%s%s %s",
			maxLabelLen, label,
			barStyle.Render(strings.Repeat("█", barLen)),
			strings.Repeat(" ", barWidth-barLen),
			valueStrs[i])
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// sparkChars are the eight block heights used by sparklines.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	step := max(float64(len(values))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		idx := int((val / maxVal) * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[idx])
	}

	return result.String()
}
