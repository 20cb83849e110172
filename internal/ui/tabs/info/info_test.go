package info

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/app"
	"github.com/j-veylop/openai-cost-tui/internal/config"
	"github.com/j-veylop/openai-cost-tui/internal/version"
)

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 60)

	view := m.View()
	if !strings.Contains(view, "Configuration not loaded") {
		t.Error("missing config should be reported")
	}
	if !strings.Contains(view, "About "+version.Name) {
		t.Error("about card missing")
	}
}

func TestModel_ViewWithConfig(t *testing.T) {
	state := app.NewState()
	cfg := config.Default()
	cfg.File = "/tmp/oct/config.yaml"
	cfg.BaseURL = "http://localhost:9999"
	cfg.RequestTimeout = 0
	state.SetConfig(cfg)
	state.SetCredentialPresent(true)

	m := New(state)
	m.SetSize(120, 60)

	view := m.View()
	for _, want := range []string{
		"/tmp/oct/config.yaml",
		"http://localhost:9999",
		"60 min (default)",
		"Month",
		"none",
		"API key:",
		"stored",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	cfg2 := config.Default()
	cfg2.RefreshIntervalMinutes = 15
	state.SetConfig(cfg2)
	if !strings.Contains(m.View(), "15 min") {
		t.Error("reloaded config should be shown")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help should not be empty")
	}
}
