// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/openai-cost-tui/internal/config"
	"github.com/j-veylop/openai-cost-tui/internal/db"
	"github.com/j-veylop/openai-cost-tui/internal/logger"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services/billing"
	"github.com/j-veylop/openai-cost-tui/internal/services/credentials"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
)

type (
	// CostStateEvent is emitted whenever the refresh state changes.
	CostStateEvent struct {
		State refresh.State
	}

	// IntervalChangedEvent is emitted when the polling timer is reinstalled.
	IntervalChangedEvent struct {
		Interval time.Duration
	}

	// CredentialChangedEvent is emitted after the stored key is set or deleted.
	CredentialChangedEvent struct {
		Present bool
	}

	// ConfigReloadedEvent is emitted when the config file changes on disk.
	ConfigReloadedEvent struct {
		Config *config.Config
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CostStateEvent) isServiceEvent()         {}
func (IntervalChangedEvent) isServiceEvent()   {}
func (CredentialChangedEvent) isServiceEvent() {}
func (ConfigReloadedEvent) isServiceEvent()    {}
func (ErrorEvent) isServiceEvent()             {}

// Notifier raises a desktop notification.
type Notifier func(title, message string) error

func beeepNotifier(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	cfg         *config.Config
	database    *db.DB
	creds       *credentials.Store
	billing     *billing.Client
	refresh     *refresh.Service
	watcher     *config.Watcher
	notify      Notifier
	credChanges <-chan struct{}
	credCancel  func()
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	lastPhase   refresh.Phase
	wg          sync.WaitGroup
	startOnce   sync.Once
	closeOnce   sync.Once
	mu          sync.RWMutex
	notifyOn    bool
}

// NewManager builds the database, credential store, billing client and
// refresh service from cfg. Nothing polls, and credential changes trigger no
// refresh, until Start is called.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		notify:   beeepNotifier,
		notifyOn: cfg.DesktopNotifications,
		stopChan: make(chan struct{}),
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.creds, err = credentials.New(m.database, cfg.MasterKeyPath())
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	m.billing = billing.New(m.creds, billing.Config{
		BaseURL:     cfg.BaseURL,
		PageLimit:   cfg.PageLimit,
		MaxPages:    cfg.MaxPages,
		FollowPages: cfg.FollowPages,
		Timeout:     cfg.RequestTimeout,
	})

	m.refresh = refresh.New(m.billing, refresh.Config{
		IntervalMinutes: cfg.RefreshIntervalMinutes,
		Mode:            cfg.Mode(),
	})

	m.credChanges, m.credCancel = m.creds.Subscribe()

	return m, nil
}

// SetNotifier replaces the desktop notifier. Used by tests and to silence
// notifications from one-shot commands.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = n
}

// Start begins polling, watching the config file and routing events.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		if m.cfg.File != "" {
			w, err := config.Watch(m.cfg.File)
			if err != nil {
				logger.Warn("config watch disabled", "path", m.cfg.File, "error", err)
			} else {
				m.watcher = w
			}
		}

		m.wg.Add(1)
		go m.routeEvents()

		m.refresh.WatchCredential(m.creds.Subscribe())
		m.refresh.Start()
	})
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer m.wg.Done()

	credChanges := m.credChanges
	var configEvents <-chan config.Event
	if m.watcher != nil {
		configEvents = m.watcher.Events()
	}

	for {
		select {
		case event := <-m.refresh.Events():
			m.handleRefreshEvent(event)

		case _, ok := <-credChanges:
			if !ok {
				credChanges = nil
				continue
			}
			m.handleCredentialChange()

		case event := <-configEvents:
			m.handleConfigEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleRefreshEvent(event refresh.Event) {
	switch event.Type {
	case refresh.EventIntervalChanged:
		m.broadcast(IntervalChangedEvent{Interval: event.Interval})
		return
	case refresh.EventFailed:
		m.checkNotifications(event.State)
	}

	// Loading sits between every pair of results; track settled phases only.
	if p := event.State.Phase; p == refresh.PhaseReady || p == refresh.PhaseFailed {
		m.lastPhase = p
	}
	m.broadcast(CostStateEvent{State: event.State})
}

// checkNotifications raises a desktop notification once per transition into
// a credential failure.
func (m *Manager) checkNotifications(state refresh.State) {
	if m.lastPhase == refresh.PhaseFailed {
		return
	}
	if !errors.Is(state.Err, billing.ErrInvalidCredential) &&
		!errors.Is(state.Err, billing.ErrInsufficientPermission) {
		return
	}

	m.mu.RLock()
	enabled, notify := m.notifyOn, m.notify
	m.mu.RUnlock()
	if !enabled || notify == nil {
		return
	}

	title := "OpenAI Cost: key rejected"
	body := state.Err.Error()
	if errors.Is(state.Err, billing.ErrInsufficientPermission) {
		title = "OpenAI Cost: admin key required"
		body = billing.PermissionHint
	}
	if err := notify(title, body); err != nil {
		logger.Warn("desktop notification failed", "error", err)
	}
}

func (m *Manager) handleCredentialChange() {
	_, present, err := m.creds.Get(context.Background())
	if err != nil {
		m.broadcast(ErrorEvent{Service: "credentials", Error: err})
		return
	}
	m.broadcast(CredentialChangedEvent{Present: present})
}

func (m *Manager) handleConfigEvent(event config.Event) {
	if event.Error != nil {
		m.broadcast(ErrorEvent{Service: "config", Error: event.Error})
		return
	}

	m.mu.Lock()
	m.cfg = event.Config
	m.notifyOn = event.Config.DesktopNotifications
	m.mu.Unlock()

	m.refresh.SetInterval(event.Config.RefreshIntervalMinutes)
	m.broadcast(ConfigReloadedEvent{Config: event.Config})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Refresh runs a refresh for the current mode and waits for it.
func (m *Manager) Refresh() refresh.State {
	return m.refresh.Refresh()
}

// TriggerRefresh starts a refresh without waiting for it.
func (m *Manager) TriggerRefresh() {
	m.refresh.TriggerRefresh()
}

// SetMode switches the display mode and refreshes.
func (m *Manager) SetMode(mode models.DisplayMode) refresh.State {
	return m.refresh.SetMode(mode)
}

// State returns the latest refresh snapshot.
func (m *Manager) State() refresh.State {
	return m.refresh.State()
}

// Interval returns the current polling period.
func (m *Manager) Interval() time.Duration {
	return m.refresh.Interval()
}

// FetchReport fetches the per-day breakdown for window.
func (m *Manager) FetchReport(ctx context.Context, window models.TimeWindow) (*models.CostReport, error) {
	return m.billing.FetchReport(ctx, window)
}

// SetCredential stores key. The change notification triggers a refresh.
func (m *Manager) SetCredential(ctx context.Context, key string) error {
	return m.creds.Set(ctx, key)
}

// DeleteCredential removes the stored key.
func (m *Manager) DeleteCredential(ctx context.Context) error {
	return m.creds.Delete(ctx)
}

// Credential returns the stored key and whether one exists.
func (m *Manager) Credential(ctx context.Context) (string, bool, error) {
	return m.creds.Get(ctx)
}

// Config returns the active configuration.
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services. Safe to call more than once.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		if err := m.refresh.Close(); err != nil {
			errs = append(errs, err)
		}

		close(m.stopChan)
		m.wg.Wait()

		if m.watcher != nil {
			if err := m.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		m.credCancel()
		if err := m.creds.Close(); err != nil {
			errs = append(errs, err)
		}

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}
