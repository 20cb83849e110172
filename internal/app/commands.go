package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	credentialTimeout = 5 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData reads the current snapshot and credential presence. The
// first refresh itself is started by the manager.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), credentialTimeout)
		defer cancel()

		_, present, err := mgr.Credential(ctx)
		if err != nil {
			return ErrorMsg{Error: err, Context: "credentials"}
		}
		return InitialStateMsg{
			Cost:              mgr.State(),
			Interval:          mgr.Interval(),
			CredentialPresent: present,
		}
	}
}

// loadReportCmd fetches the per-day breakdown for the current month.
func loadReportCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		window := models.WindowFor(models.ModeMonth, time.Now())
		report, err := mgr.FetchReport(context.Background(), window)
		return ReportLoadedMsg{Report: report, Error: err}
	}
}

// saveCredentialCmd stores key. The manager refreshes once the store
// notifies it.
func saveCredentialCmd(mgr *services.Manager, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), credentialTimeout)
		defer cancel()
		return CredentialResultMsg{Error: mgr.SetCredential(ctx, key)}
	}
}

// deleteCredentialCmd removes the stored key.
func deleteCredentialCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), credentialTimeout)
		defer cancel()
		return CredentialResultMsg{Error: mgr.DeleteCredential(ctx), Deleted: true}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands exposes message-producing commands to tabs, which live in
// packages that cannot reach the unexported helpers.
type Commands struct{}

// NewCommands creates a new Commands instance.
func NewCommands() *Commands {
	return &Commands{}
}

// Refresh asks the root model to refresh the cost.
func (c *Commands) Refresh() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

// SetMode asks the root model to switch display mode.
func (c *Commands) SetMode(mode models.DisplayMode) tea.Cmd {
	return func() tea.Msg { return SetModeMsg{Mode: mode} }
}

// LoadReport asks the root model to fetch the monthly breakdown.
func (c *Commands) LoadReport() tea.Cmd {
	return func() tea.Msg { return LoadReportMsg{} }
}

// SaveCredential asks the root model to store key.
func (c *Commands) SaveCredential(key string) tea.Cmd {
	return func() tea.Msg { return SaveCredentialMsg{Key: key} }
}

// DeleteCredential asks the root model to remove the stored key.
func (c *Commands) DeleteCredential() tea.Cmd {
	return func() tea.Msg { return DeleteCredentialMsg{} }
}

// Dismiss removes the newest toast, or every toast when all is set.
func (c *Commands) Dismiss(all bool) tea.Cmd {
	return func() tea.Msg { return DismissNotificationsMsg{All: all} }
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
