package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/ui/components"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// PrintJSON writes data as indented JSON.
func PrintJSON(w io.Writer, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

// PrintReport writes the per-day breakdown as a table followed by the total.
func PrintReport(w io.Writer, report *models.CostReport) {
	fmt.Fprintf(w, "OpenAI cost · %s\n", report.Window)

	if len(report.Daily) == 0 {
		fmt.Fprintln(w, "No cost recorded in this window.")
	} else {
		fmt.Fprintln(w, reportTable(report))
	}

	fmt.Fprintf(w, "Total: %s\n", components.FormatDollars(report.Total))

	if report.MixedCurrencies() {
		fmt.Fprintf(w, "Warning: mixed currencies (%s) summed without conversion\n",
			strings.Join(report.Currencies, ", "))
	}
	if report.Truncated {
		fmt.Fprintln(w, "Warning: more pages were available; set follow_pages: true to fetch them")
	}
}

func reportTable(report *models.CostReport) *table.Table {
	numberStyle := styles.TableCellStyle.Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.ASCIIBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.TableHeaderStyle
			case col > 0:
				return numberStyle
			default:
				return styles.TableCellStyle
			}
		}).
		Headers("DATE", "COST", "RUNNING TOTAL")

	running := report.RunningTotals()
	for i, d := range report.Daily {
		t.Row(d.Date, fmt.Sprintf("$%.4f", d.Amount), fmt.Sprintf("$%.4f", running[i]))
	}

	return t
}
