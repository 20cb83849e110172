package app

import (
	"time"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
)

// TickMsg is sent periodically to expire toasts and redraw relative times.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialStateMsg carries what is known before the first refresh settles.
type InitialStateMsg struct {
	Cost              refresh.State
	Interval          time.Duration
	CredentialPresent bool
}

// CostStateMsg carries a refresh snapshot to the tabs.
type CostStateMsg struct {
	State refresh.State
}

// RefreshMsg requests a cost refresh for the current mode.
type RefreshMsg struct{}

// SetModeMsg requests switching the display mode.
type SetModeMsg struct {
	Mode models.DisplayMode
}

// LoadReportMsg requests the per-day breakdown for the current month.
type LoadReportMsg struct{}

// ReportLoadedMsg contains the breakdown or the error that prevented it.
type ReportLoadedMsg struct {
	Report *models.CostReport
	Error  error
}

// SaveCredentialMsg requests storing an API key.
type SaveCredentialMsg struct {
	Key string
}

// DeleteCredentialMsg requests removing the stored API key.
type DeleteCredentialMsg struct{}

// CredentialResultMsg is the outcome of a save or delete.
type CredentialResultMsg struct {
	Error   error
	Deleted bool
}

// CredentialStatusMsg reports whether a key is stored.
type CredentialStatusMsg struct {
	Present bool
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// DismissNotificationsMsg removes the newest toast, or all of them.
type DismissNotificationsMsg struct {
	All bool
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab. Tabs also receive it
// after the switch so they can load on entry.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ToggleMenuMsg opens or closes the quick-pick menu.
type ToggleMenuMsg struct{}
