// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/openai-cost-tui/internal/config"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing toast.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired. Notifications
// without a duration stay until dismissed.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial    bool
	Report     bool
	Credential bool
}

// State is shared by the root model and every tab.
type State struct {
	mu sync.RWMutex

	Cost              refresh.State
	Report            *models.CostReport
	ReportErr         error
	Config            *config.Config
	Interval          time.Duration
	CredentialPresent bool

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState returns an empty state waiting for its initial load.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "report":
		s.Loading.Report = loading
	case "credential":
		s.Loading.Credential = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Report || s.Loading.Credential
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsReportLoading reports whether the detailed breakdown is being fetched.
func (s *State) IsReportLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Report
}

// BeginReportLoad marks the breakdown as loading and reports whether the
// caller should fetch it; false means a load is already in flight.
func (s *State) BeginReportLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Loading.Report {
		return false
	}
	s.Loading.Report = true
	return true
}

// IsCredentialLoading reports whether a key save or delete is in flight.
func (s *State) IsCredentialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Credential
}

// SetCost stores the latest refresh snapshot.
func (s *State) SetCost(st refresh.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Cost = st
	if st.Phase == refresh.PhaseReady || st.Phase == refresh.PhaseFailed {
		s.Loading.Initial = false
		s.LastUpdated = st.UpdatedAt
	}
}

// GetCost returns the latest refresh snapshot.
func (s *State) GetCost() refresh.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Cost
}

// SetReport stores the outcome of a breakdown fetch. A failed fetch clears
// the previous report.
func (s *State) SetReport(report *models.CostReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Loading.Report = false
	s.ReportErr = err
	if err != nil {
		s.Report = nil
		return
	}
	s.Report = report
}

// GetReport returns the last breakdown and the error that replaced it, if any.
func (s *State) GetReport() (*models.CostReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Report, s.ReportErr
}

// MixedCurrencies reports whether the last breakdown summed several
// currencies. It only speaks for the cost on display when the breakdown
// covers the same window.
func (s *State) MixedCurrencies() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Report == nil || s.Report.Window != s.Cost.Window {
		return false
	}
	return s.Report.MixedCurrencies()
}

// SetCredentialPresent records whether an API key is stored.
func (s *State) SetCredentialPresent(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CredentialPresent = present
	s.Loading.Credential = false
}

// HasCredential reports whether an API key is stored.
func (s *State) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CredentialPresent
}

// SetInterval records the current polling period.
func (s *State) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Interval = d
}

// GetInterval returns the current polling period.
func (s *State) GetInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Interval
}

// SetConfig replaces the active configuration.
func (s *State) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config = cfg
}

// GetConfig returns the active configuration, possibly nil.
func (s *State) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Config
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("n%d", s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// DismissLatest removes the newest toast, ignoring the loading indicator.
// It returns false when there was nothing to dismiss.
func (s *State) DismissLatest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].ID == LoadingNotificationID {
			continue
		}
		s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
		return true
	}
	return false
}

// DismissAll removes every toast except the loading indicator and returns
// how many were removed.
func (s *State) DismissAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	removed := 0
	for _, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			kept = append(kept, n)
			continue
		}
		removed++
	}
	s.notifications = kept
	return removed
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the time of the last settled refresh.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last settled refresh.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
