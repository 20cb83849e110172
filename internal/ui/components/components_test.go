package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
)

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}
	if s.View() == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should include the label")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}

	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should return command for tick")
	}
	if _, cmd := s.Update(tea.KeyMsg{}); cmd != nil {
		t.Error("Update should ignore non-tick messages")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	if RenderSpinnerCentered(s, 20, 5) == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestFormatStatus(t *testing.T) {
	window := models.TimeWindow{Start: 1730419200, End: 1730505600}

	tests := []struct {
		name        string
		state       refresh.State
		mixed       bool
		wantText    string
		wantClass   string
		wantTooltip string
	}{
		{
			name:      "first load",
			state:     refresh.State{Phase: refresh.PhaseLoading, First: true},
			wantText:  "⟳ Loading Cost...",
			wantClass: "loading",
		},
		{
			name:      "uninitialized",
			state:     refresh.State{},
			wantText:  "⟳ Loading Cost...",
			wantClass: "loading",
		},
		{
			name:      "later load",
			state:     refresh.State{Phase: refresh.PhaseLoading},
			wantText:  "⟳ Checking...",
			wantClass: "loading",
		},
		{
			name:        "ready month",
			state:       refresh.State{Phase: refresh.PhaseReady, Mode: models.ModeMonth, Cost: 12.345, Window: window},
			wantText:    "✦ Month: $12.35",
			wantClass:   "ready",
			wantTooltip: "Month cost (OpenAI) · ",
		},
		{
			name:        "ready today mixed",
			state:       refresh.State{Phase: refresh.PhaseReady, Mode: models.ModeToday, Cost: 0.004, Window: window},
			mixed:       true,
			wantText:    "✦ Today: $0.00",
			wantClass:   "ready",
			wantTooltip: "(mixed currencies)",
		},
		{
			name:        "failed",
			state:       refresh.State{Phase: refresh.PhaseFailed, Err: errors.New("boom")},
			wantText:    "✖ Cost Info",
			wantClass:   "failed",
			wantTooltip: "Error fetching cost. " + RetryHintTUI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatStatus(tt.state, tt.mixed, RetryHintTUI)
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", got.Class, tt.wantClass)
			}
			if !strings.Contains(got.Tooltip, tt.wantTooltip) {
				t.Errorf("Tooltip = %q, want it to contain %q", got.Tooltip, tt.wantTooltip)
			}
			if got.Render() == "" {
				t.Error("Render returned empty")
			}
		})
	}
}

func TestFormatStatus_FailedCLIHint(t *testing.T) {
	got := FormatStatus(refresh.State{Phase: refresh.PhaseFailed}, false, RetryHintCLI)
	if !strings.HasSuffix(got.Tooltip, "Run 'oct status' to retry.") {
		t.Errorf("Tooltip = %q", got.Tooltip)
	}
}

func TestMenu_HandleKey(t *testing.T) {
	m := NewMenu("Cost", MenuItem{Label: "Show Today"}, MenuItem{Label: "Show Month"}, MenuItem{Label: "Refresh now"})

	if got := m.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}); got != -1 {
		t.Errorf("closed menu picked %d", got)
	}

	m.Open()
	if !m.IsOpen() || m.Cursor() != 0 {
		t.Fatal("Open should show the menu at the first item")
	}

	m.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 2 {
		t.Errorf("cursor after up = %d, want wrap to 2", m.Cursor())
	}
	m.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	m.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}); got != 1 {
		t.Errorf("picked %d, want 1", got)
	}
	if m.IsOpen() {
		t.Error("picking should close the menu")
	}

	m.Open()
	if got := m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}); got != 2 {
		t.Errorf("digit pick = %d, want 2", got)
	}

	m.Open()
	if got := m.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}); got != -1 || m.IsOpen() {
		t.Errorf("esc = %d open=%v, want -1 and closed", got, m.IsOpen())
	}
}

func TestMenu_View(t *testing.T) {
	m := NewMenu("Cost", MenuItem{Label: "Show Today"}, MenuItem{Label: "Refresh now", Hint: "r"})
	m.Open()
	view := m.View("key rejected")
	for _, want := range []string{"Cost", "Show Today", "Refresh now", "key rejected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Running total"); !strings.Contains(s, "Running total") {
		t.Error("RenderLineChart should include the caption")
	}
	if s := RenderLineChart(nil, 20, 5, ""); !strings.Contains(s, "No data") {
		t.Error("empty chart should say so")
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{1.5, 0.00012}, []string{"2024-11-01", "2024-11-02"}, 60)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "2024-11-01") || !strings.Contains(lines[0], "$1.5000") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "$0.0001") || !strings.Contains(lines[1], "█") {
		t.Errorf("small non-zero values still get a bar: %q", lines[1])
	}
	if RenderBarChart(nil, nil, 20) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{0, 1, 2, 3}, 10)
	if got := len([]rune(s)); got != 4 {
		t.Errorf("runes = %d, want 4", got)
	}
	if !strings.HasSuffix(s, "█") {
		t.Errorf("max value should be a full block: %q", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestFormatDollars(t *testing.T) {
	if got := FormatDollars(3.5); got != "$3.50" {
		t.Errorf("FormatDollars = %q", got)
	}
}
