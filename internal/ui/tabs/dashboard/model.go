// Package dashboard provides the main cost overview tab.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/app"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
	"github.com/j-veylop/openai-cost-tui/internal/ui/components"
)

const animationDuration = 1200 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	ShowToday  key.Binding
	ShowMonth  key.Binding
	ToggleMode key.Binding
	Refresh    key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ShowToday: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "show today"),
		),
		ShowMonth: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "show month"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle today/month"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AnimationState eases the displayed cost towards the latest value.
type AnimationState struct {
	StartTime time.Time
	Current   float64
	Target    float64
	Start     float64
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	anim     AnimationState
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new dashboard model.
func New(state *app.State, cmds *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: cmds,
		spinner:  components.NewSpinner("Loading cost..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		if m.step(time.Time(msg)) {
			cmds = append(cmds, animationTickCmd())
		}

	case app.CostStateMsg:
		if m.retarget(msg.State, time.Now()) {
			cmds = append(cmds, animationTickCmd())
		}

	case app.InitialStateMsg:
		if m.retarget(msg.Cost, time.Now()) {
			cmds = append(cmds, animationTickCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ShowToday):
		return m.commands.SetMode(models.ModeToday)
	case key.Matches(msg, m.keys.ShowMonth):
		return m.commands.SetMode(models.ModeMonth)
	case key.Matches(msg, m.keys.ToggleMode):
		next := models.ModeToday
		if m.state.GetCost().Mode == models.ModeToday {
			next = models.ModeMonth
		}
		return m.commands.SetMode(next)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// retarget points the animation at a ready cost. It reports whether a new
// animation started.
func (m *Model) retarget(st refresh.State, now time.Time) bool {
	if st.Phase != refresh.PhaseReady || st.Cost == m.anim.Target {
		return false
	}
	m.anim.Start = m.anim.Current
	m.anim.Target = st.Cost
	m.anim.StartTime = now
	return true
}

// step advances the animation and reports whether it is still running.
func (m *Model) step(now time.Time) bool {
	if m.anim.Current == m.anim.Target {
		return false
	}
	elapsed := now.Sub(m.anim.StartTime)
	if elapsed >= animationDuration {
		m.anim.Current = m.anim.Target
		return false
	}
	progress := elapsed.Seconds() / animationDuration.Seconds()
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	m.anim.Current = m.anim.Start + (m.anim.Target-m.anim.Start)*ease
	return true
}

// displayedCost is the animated value while easing, the real one otherwise.
func (m *Model) displayedCost(st refresh.State) float64 {
	if m.anim.Target != st.Cost {
		return st.Cost
	}
	return m.anim.Current
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ShowToday,
		m.keys.ShowMonth,
		m.keys.ToggleMode,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ShowToday, m.keys.ShowMonth, m.keys.ToggleMode},
		{m.keys.Refresh},
	}
}
