package stats

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/app"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services/billing"
)

func newModel() (*Model, *app.State) {
	state := app.NewState()
	m := New(state, app.NewCommands())
	m.SetSize(100, 60)
	return m, state
}

func TestNew(t *testing.T) {
	m, _ := newModel()
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should not fetch before the tab is opened")
	}
}

func TestModel_LoadsOnEntry(t *testing.T) {
	m, state := newModel()

	_, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabStats})
	if cmd == nil {
		t.Fatal("entering the tab should load the report")
	}
	if got := cmd(); got != (app.LoadReportMsg{}) {
		t.Errorf("msg = %#v", got)
	}

	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabInfo}); cmd != nil {
		t.Error("switching elsewhere should not load")
	}

	state.SetLoading("report", true)
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabStats}); cmd != nil {
		t.Error("a load in flight should not be repeated")
	}
}

func TestModel_ReloadKey(t *testing.T) {
	m, _ := newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil || cmd() != (app.LoadReportMsg{}) {
		t.Error("r should reload the report")
	}
}

func TestModel_QuickTriggersLoadOnce(t *testing.T) {
	m, state := newModel()

	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabStats}); cmd == nil {
		t.Fatal("entering the tab should load the report")
	}
	if !state.IsReportLoading() {
		t.Error("the load should be marked in flight as soon as it is issued")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}); cmd != nil {
		t.Error("r right after entering should not fetch again")
	}

	state.SetReport(&models.CostReport{}, nil)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}); cmd == nil {
		t.Error("r after the load finished should fetch again")
	}
}

func TestModel_ReloadsWhenKeyAdded(t *testing.T) {
	m, _ := newModel()
	if _, cmd := m.Update(app.CredentialStatusMsg{Present: false}); cmd != nil {
		t.Error("deleting the key should not load")
	}
	if _, cmd := m.Update(app.CredentialStatusMsg{Present: true}); cmd == nil {
		t.Error("a new key should reload the report")
	}
}

func TestModel_View(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*app.State)
		want  []string
	}{
		{
			name:  "not loaded",
			setup: func(*app.State) {},
			want:  []string{"Press r to load"},
		},
		{
			name:  "loading",
			setup: func(s *app.State) { s.SetLoading("report", true) },
			want:  []string{"Loading cost breakdown"},
		},
		{
			name:  "error",
			setup: func(s *app.State) { s.SetReport(nil, billing.ErrMissingCredential) },
			want:  []string{"Error:", "No API key stored", "Press r to retry"},
		},
		{
			name:  "empty month",
			setup: func(s *app.State) { s.SetReport(&models.CostReport{}, nil) },
			want:  []string{"No cost recorded"},
		},
		{
			name: "report",
			setup: func(s *app.State) {
				s.SetReport(&models.CostReport{
					Window:     models.WindowFor(models.ModeMonth, time.Now()),
					Total:      1.5,
					Currencies: []string{"eur", "usd"},
					Daily: []models.DailyCost{
						{Date: "2024-11-01", Amount: 0.5},
						{Date: "2024-11-02", Amount: 1},
					},
					Truncated: true,
					FetchedAt: time.Now(),
				}, nil)
			},
			want: []string{
				"Daily Cost", "2024-11-01", "$0.5000", "$1.0000",
				"Running Total", "Total: $1.50",
				"Mixed currencies (eur, usd)", "follow_pages",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newModel()
			tt.setup(state)
			view := m.View()
			for _, want := range tt.want {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q:\n%s", want, view)
				}
			}
		})
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newModel()
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
