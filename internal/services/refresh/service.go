// Package refresh owns the polling timer and the latest cost state shown
// by every presentation surface.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/j-veylop/openai-cost-tui/internal/logger"
	"github.com/j-veylop/openai-cost-tui/internal/models"
)

const (
	// MinIntervalMinutes is the lower bound applied to the configured interval.
	MinIntervalMinutes = 5
	// DefaultIntervalMinutes is used when nothing is configured.
	DefaultIntervalMinutes = 60
)

// EffectiveInterval clamps minutes to MinIntervalMinutes.
func EffectiveInterval(minutes int) time.Duration {
	return time.Duration(max(MinIntervalMinutes, minutes)) * time.Minute
}

// Fetcher returns the aggregate cost for a window.
type Fetcher interface {
	FetchAggregateCost(ctx context.Context, window models.TimeWindow) (float64, error)
}

// Phase is the orchestrator's position in its state machine.
type Phase int

const (
	// PhaseUninitialized means no refresh has started yet.
	PhaseUninitialized Phase = iota
	// PhaseLoading means a refresh is in flight.
	PhaseLoading
	// PhaseReady means the last refresh produced a cost.
	PhaseReady
	// PhaseFailed means the last refresh failed.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// State is a snapshot of the latest refresh.
type State struct {
	UpdatedAt time.Time
	Err       error
	Window    models.TimeWindow
	Cost      float64
	Phase     Phase
	Mode      models.DisplayMode
	// First is set on the Loading state of the very first refresh.
	First bool
}

// EventType defines the type of refresh event.
type EventType int

const (
	// EventLoading indicates a refresh has started.
	EventLoading EventType = iota
	// EventReady indicates a refresh produced a cost.
	EventReady
	// EventFailed indicates a refresh failed.
	EventFailed
	// EventIntervalChanged indicates the timer was reinstalled.
	EventIntervalChanged
)

// Event represents a refresh service event.
type Event struct {
	State    State
	Interval time.Duration
	Type     EventType
}

// Config holds configuration for the refresh service.
type Config struct {
	// Now defaults to time.Now.
	Now             func() time.Time
	IntervalMinutes int
	Mode            models.DisplayMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		IntervalMinutes: DefaultIntervalMinutes,
		Mode:            models.ModeMonth,
	}
}

type ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) Chan() <-chan time.Time { return t.C }

func newRealTicker(d time.Duration) ticker { return realTicker{time.NewTicker(d)} }

// Service runs cost refreshes on a timer and on demand.
type Service struct {
	fetcher   Fetcher
	now       func() time.Time
	newTicker func(time.Duration) ticker
	ctx       context.Context
	cancel    context.CancelFunc
	eventChan chan Event
	resetChan chan time.Duration
	group     singleflight.Group
	state     State
	mode      models.DisplayMode
	interval  time.Duration
	gen       uint64
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

// New creates a refresh service. Call Start to begin polling.
func New(fetcher Fetcher, config Config) *Service {
	if config.Now == nil {
		config.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		fetcher:   fetcher,
		now:       config.Now,
		newTicker: newRealTicker,
		ctx:       ctx,
		cancel:    cancel,
		eventChan: make(chan Event, 100),
		resetChan: make(chan time.Duration, 1),
		mode:      config.Mode,
		interval:  EffectiveInterval(config.IntervalMinutes),
		state:     State{Mode: config.Mode},
	}
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Start installs the timer and triggers the first refresh. Later calls are
// no-ops.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		interval := s.interval
		s.mu.Unlock()

		s.wg.Add(1)
		go s.pollLoop(interval)

		s.TriggerRefresh()
	})
}

// State returns the latest snapshot.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the current display mode.
func (s *Service) Mode() models.DisplayMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Interval returns the current timer period.
func (s *Service) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// TriggerRefresh starts a refresh without waiting for it.
func (s *Service) TriggerRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Refresh()
	}()
}

// Refresh fetches the cost for the current mode's window and returns the
// resulting state. If a newer refresh started meanwhile, this result is
// discarded and the current state is returned instead.
func (s *Service) Refresh() State {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		return s.state
	}
	s.gen++
	gen := s.gen
	mode := s.mode
	window := models.WindowFor(mode, s.now())
	s.state = State{
		Phase:  PhaseLoading,
		Mode:   mode,
		Window: window,
		First:  s.state.Phase == PhaseUninitialized,
	}
	s.sendEvent(Event{Type: EventLoading, State: s.state})
	s.mu.Unlock()

	id := uuid.NewString()
	logger.Debug("refresh started", "id", id, "mode", mode.String(), "window", window.Key(), "generation", gen)

	v, err, shared := s.group.Do(window.Key(), func() (any, error) {
		return s.fetcher.FetchAggregateCost(s.ctx, window)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		logger.Debug("discarding superseded refresh", "id", id, "generation", gen, "latest", s.gen)
		return s.state
	}

	next := State{
		Mode:      mode,
		Window:    window,
		UpdatedAt: s.now(),
	}
	if err != nil {
		next.Phase = PhaseFailed
		next.Err = err
		s.state = next
		logger.Warn("refresh failed", "id", id, "mode", mode.String(), "error", err)
		s.sendEvent(Event{Type: EventFailed, State: next})
		return next
	}

	next.Phase = PhaseReady
	next.Cost = v.(float64)
	s.state = next
	logger.Info("refresh complete", "id", id, "mode", mode.String(), "cost", next.Cost, "shared", shared)
	s.sendEvent(Event{Type: EventReady, State: next})
	return next
}

// SetMode switches the display mode and refreshes for the new window.
func (s *Service) SetMode(mode models.DisplayMode) State {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	logger.Info("display mode changed", "mode", mode.String())
	return s.Refresh()
}

// SetInterval reinstalls the timer with the clamped period. An unchanged
// period is a no-op.
func (s *Service) SetInterval(minutes int) {
	d := EffectiveInterval(minutes)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || d == s.interval {
		return
	}
	s.interval = d
	logger.Info("refresh interval changed", "interval", d)
	s.sendEvent(Event{Type: EventIntervalChanged, Interval: d, State: s.state})

	// Keep only the newest pending period.
	select {
	case <-s.resetChan:
	default:
	}
	s.resetChan <- d
}

// WatchCredential refreshes whenever changes fires. cancel is called when the
// channel closes or the service shuts down.
func (s *Service) WatchCredential(changes <-chan struct{}, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		cancel()
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		for {
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
				logger.Info("credential changed, refreshing")
				s.TriggerRefresh()
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Service) pollLoop(interval time.Duration) {
	defer s.wg.Done()

	t := s.newTicker(interval)
	defer func() { t.Stop() }()

	for {
		select {
		case <-t.Chan():
			s.TriggerRefresh()
		case d := <-s.resetChan:
			t.Stop()
			t = s.newTicker(d)
		case <-s.ctx.Done():
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking. Callers hold mu.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the timer, cancels in-flight requests and the credential
// watch. It is safe to call more than once; no events are sent afterwards.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		s.wg.Wait()
	})
	return nil
}
