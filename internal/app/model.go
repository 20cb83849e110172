// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services"
	"github.com/j-veylop/openai-cost-tui/internal/services/billing"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
	"github.com/j-veylop/openai-cost-tui/internal/ui/components"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabStats is the ID for the detailed stats tab.
	TabStats
	// TabCredential is the ID for the API key tab.
	TabCredential
	// TabInfo is the ID for the info tab.
	TabInfo
)

var tabNames = []string{"Dashboard", "Stats", "API Key", "Info"}

// String returns the string representation of the TabID.
func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that own a text input. While
// Capturing returns true, keys go to the tab instead of global bindings.
type InputCapturer interface {
	Capturing() bool
}

// Menu entries, in display order.
const (
	menuShowToday = iota
	menuShowMonth
	menuRefresh
)

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Menu      key.Binding
	Dismiss   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "stats"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "api key"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Menu = key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cost menu"))
	k.Dismiss = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close / dismiss all"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Menu, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Menu, k.Dismiss},
		{k.Help, k.Escape, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content   lipgloss.Style
	Help      lipgloss.Style
	Spinner   lipgloss.Style
	Toast     lipgloss.Style
	StatusBar lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(highlight)
	s.Toast = styles.ToastStyle
	s.StatusBar = styles.StatusBarStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model
	menu    components.Menu

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. mgr may be nil in tests.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	state := NewState()
	if mgr != nil {
		state.SetConfig(mgr.Config())
		state.SetInterval(mgr.Interval())
	}

	return &Model{
		activeTab: TabDashboard,
		tabs:      make([]Tab, len(tabNames)), // Placeholder - tabs will be set externally
		state:     state,
		services:  mgr,
		commands:  NewCommands(),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
		menu: components.NewMenu("OpenAI Cost",
			components.MenuItem{Label: "Show Today", Hint: "cost since midnight"},
			components.MenuItem{Label: "Show Month", Hint: "cost since the 1st"},
			components.MenuItem{Label: "Refresh now", Hint: "r"},
		),
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetStyles returns the application styles.
func (m *Model) GetStyles() Styles {
	return m.styles
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// GetWidth returns the window width.
func (m *Model) GetWidth() int {
	return m.width
}

// GetHeight returns the window height.
func (m *Model) GetHeight() int {
	return m.height
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading cost...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, loadInitialData(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, consumed := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if consumed {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case InitialStateMsg:
		cmds = append(cmds, m.handleInitialState(msg)...)
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh())
	case SetModeMsg:
		cmds = append(cmds, m.handleSetMode(msg)...)
	case LoadReportMsg:
		cmds = append(cmds, m.handleLoadReport())
	case ReportLoadedMsg:
		cmds = append(cmds, m.handleReportLoaded(msg)...)
	case SaveCredentialMsg:
		if m.services != nil {
			m.state.SetLoading("credential", true)
			cmds = append(cmds, saveCredentialCmd(m.services, msg.Key))
		}
	case DeleteCredentialMsg:
		if m.services != nil {
			m.state.SetLoading("credential", true)
			cmds = append(cmds, deleteCredentialCmd(m.services))
		}
	case CredentialResultMsg:
		cmds = append(cmds, m.handleCredentialResult(msg))
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case DismissNotificationsMsg:
		if msg.All {
			m.state.DismissAll()
		} else {
			m.state.DismissLatest()
		}
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("[%s] %v", msg.Context, msg.Error)))
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	case ToggleMenuMsg:
		m.toggleMenu()
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleInitialState(msg InitialStateMsg) []tea.Cmd {
	var cmds []tea.Cmd
	m.applyCostState(msg.Cost)
	m.state.SetInterval(msg.Interval)
	m.state.SetCredentialPresent(msg.CredentialPresent)
	if !msg.CredentialPresent {
		cmds = append(cmds, notifyWarningCmd("No OpenAI API key stored. Press 3 to add one."))
	}
	return cmds
}

// applyCostState records a snapshot and keeps the loading toast in sync
// with it.
func (m *Model) applyCostState(st refresh.State) {
	m.state.SetCost(st)
	switch st.Phase {
	case refresh.PhaseLoading:
		label := components.FormatStatus(st, false, components.RetryHintTUI)
		m.state.SetLoadingNotification(strings.TrimPrefix(label.Text, "⟳ "))
	case refresh.PhaseReady, refresh.PhaseFailed:
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleRefresh() tea.Cmd {
	if m.services == nil {
		return nil
	}
	mgr := m.services
	return func() tea.Msg {
		mgr.TriggerRefresh()
		return nil
	}
}

func (m *Model) handleSetMode(msg SetModeMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}
	mgr := m.services
	return []tea.Cmd{
		func() tea.Msg {
			mgr.SetMode(msg.Mode)
			return nil
		},
		notifyInfoCmd(fmt.Sprintf("Showing %s cost", strings.ToLower(msg.Mode.String()))),
	}
}

func (m *Model) handleLoadReport() tea.Cmd {
	if m.services == nil {
		m.state.SetLoading("report", false)
		return nil
	}
	m.state.SetLoading("report", true)
	return loadReportCmd(m.services)
}

func (m *Model) handleReportLoaded(msg ReportLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd
	m.state.SetReport(msg.Report, msg.Error)

	if msg.Error != nil {
		cmds = append(cmds, notifyCmd(NotificationError,
			"Detailed stats failed: "+DescribeError(msg.Error), 0))
		return cmds
	}
	if msg.Report != nil && msg.Report.Truncated {
		cmds = append(cmds, notifyWarningCmd("Breakdown truncated: more pages were available"))
	}
	return cmds
}

func (m *Model) handleCredentialResult(msg CredentialResultMsg) tea.Cmd {
	m.state.SetLoading("credential", false)
	switch {
	case msg.Error != nil:
		return notifyErrorCmd(fmt.Sprintf("API key not saved: %v", msg.Error))
	case msg.Deleted:
		return notifySuccessCmd("API key deleted")
	default:
		return notifySuccessCmd("API key saved, refreshing cost")
	}
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.CostStateEvent:
		// Handed to the tab in this Update: a Cmd could land after a newer state.
		m.applyCostState(e.State)
		return m.updateActiveTab(CostStateMsg(e))

	case services.IntervalChangedEvent:
		m.state.SetInterval(e.Interval)
		return notifyInfoCmd(fmt.Sprintf("Refreshing every %s", formatInterval(e.Interval)))

	case services.CredentialChangedEvent:
		m.state.SetCredentialPresent(e.Present)
		return m.updateActiveTab(CredentialStatusMsg(e))

	case services.ConfigReloadedEvent:
		m.state.SetConfig(e.Config)
		return notifyInfoCmd("Configuration reloaded")

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	// navbar (2) + status bar (1) + margins
	contentHeight := max(0, m.height-6)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) activeTabCapturing() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.Capturing()
}

func (m *Model) switchTab(id TabID) tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

func (m *Model) toggleMenu() {
	if m.menu.IsOpen() {
		m.menu.Close()
		return
	}
	m.showHelp = false
	m.menu.Open()
}

// handleKeyMsg handles keyboard input. consumed is true when the key must
// not reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (cmd tea.Cmd, consumed bool) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return tea.Quit, true
	}

	if m.menu.IsOpen() {
		return m.handleMenuPick(m.menu.HandleKey(msg)), true
	}

	if m.activeTabCapturing() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
		if m.state.DismissAll() > 0 {
			return nil, true
		}
		return nil, false

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabDashboard), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabStats), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabCredential), true

	case key.Matches(msg, m.keymap.Tab4):
		return m.switchTab(TabInfo), true

	case key.Matches(msg, m.keymap.NextTab):
		if m.showHelp || len(m.tabs) == 0 {
			return nil, true
		}
		return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.PrevTab):
		if m.showHelp || len(m.tabs) == 0 {
			return nil, true
		}
		return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.Menu):
		m.toggleMenu()
		return nil, true

	case key.Matches(msg, m.keymap.Dismiss):
		m.state.DismissLatest()
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		// The active tab also sees r so it can reload its own data.
		return m.handleRefresh(), false
	}

	return nil, false
}

func (m *Model) handleMenuPick(idx int) tea.Cmd {
	switch idx {
	case menuShowToday:
		return func() tea.Msg { return SetModeMsg{Mode: models.ModeToday} }
	case menuShowMonth:
		return func() tea.Msg { return SetModeMsg{Mode: models.ModeMonth} }
	case menuRefresh:
		return func() tea.Msg { return RefreshMsg{} }
	}
	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := m.placeStatusBar(b.String())

	switch {
	case m.menu.IsOpen():
		mainView = m.overlayCentered(mainView, m.menu.View(m.menuDetail()))
	case m.showHelp:
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	notifications := m.renderNotifications()

	if len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

// placeStatusBar pins the status bar to the last screen line.
func (m *Model) placeStatusBar(content string) string {
	lines := strings.Split(content, "\n")
	if m.height > 1 {
		if len(lines) > m.height-1 {
			lines = lines[:m.height-1]
		}
		for len(lines) < m.height-1 {
			lines = append(lines, "")
		}
	}
	lines = append(lines, m.renderStatusBar())
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatusBar() string {
	cost := m.state.GetCost()
	label := components.FormatStatus(cost, m.state.MixedCurrencies(), components.RetryHintTUI)

	parts := []string{label.Render(), label.Tooltip}
	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		parts = append(parts, "updated "+updated.Format("15:04"))
	}
	if interval := m.state.GetInterval(); interval > 0 {
		parts = append(parts, "every "+formatInterval(interval))
	}
	parts = append(parts, "m menu · ? help")

	line := strings.Join(parts, m.styles.Subtle.Render(" · "))
	if m.width > 0 {
		line = ansi.Truncate(line, m.width-2, "…")
		return m.styles.StatusBar.Width(m.width).Render(line)
	}
	return m.styles.StatusBar.Render(line)
}

// menuDetail explains the current state above the menu entries.
func (m *Model) menuDetail() string {
	cost := m.state.GetCost()
	switch cost.Phase {
	case refresh.PhaseFailed:
		return m.styles.Error.Render(DescribeError(cost.Err))
	case refresh.PhaseReady:
		return components.FormatStatus(cost, m.state.MixedCurrencies(), components.RetryHintTUI).Tooltip
	}
	return ""
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-overlayHeight)/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range tabNames {
		if i >= len(m.tabs) {
			break
		}
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		if n.Type != NotificationLoading {
			content += m.styles.Subtle.Render("  x")
		}
		toasts = append(toasts, m.styles.Toast.MaxWidth(max(m.width/2, 30)).Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		// Keep the status bar visible.
		if lineIdx >= len(mainLines)-1 {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-4        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Cost"))
	lines = append(lines, "  r          Refresh now")
	lines = append(lines, "  m          Today / Month / Refresh menu")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("General"))
	lines = append(lines, "  x          Dismiss newest toast")
	lines = append(lines, "  Esc        Close overlay / dismiss all toasts")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.activeTab)))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.activeTab,
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}

// DescribeError shortens credential errors to something actionable.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, billing.ErrMissingCredential) {
		return "No API key stored. Open the API Key tab (3) to add one."
	}
	if billing.IsCredentialError(err) {
		return err.Error() + ". Replace the key in the API Key tab (3)."
	}
	return err.Error()
}

// formatInterval renders whole minutes compactly, e.g. "60m".
func formatInterval(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return d.String()
}
