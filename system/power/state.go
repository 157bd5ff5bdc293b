package power

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Event is the kind of a StateEvent
type Event int

const (
	EventStatusChange Event = iota
	EventSuspend
	EventResume
)

var eventNames = [...]string{"status change", "suspend", "resume"}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// StateEvent is delivered to the StateListener subscribers
type StateEvent struct {
	Event               Event
	AdapterStateChanged bool
	Status              Status
}

// SuspendSource reports suspend and resume of the machine
type SuspendSource interface {
	ListenSuspend(haltCtx context.Context, eventCh chan<- Event) error
}

// DefaultPollInterval is how often the power supply is polled
const DefaultPollInterval = time.Second * 2

// StateListenerConfig contains the collaborators of the StateListener
type StateListenerConfig struct {
	Reader   StatusReader
	Suspend  SuspendSource // optional
	Interval time.Duration
	Logger   zerolog.Logger
}

type stateSubscriber struct {
	ch chan StateEvent
}

// StateListener polls the power supply and fans status changes, suspend and
// resume out to its subscribers
type StateListener struct {
	StateListenerConfig

	mu          sync.RWMutex
	subscribers map[*stateSubscriber]struct{}
	last        *Status
}

// NewStateListener returns a StateListener to be run under a supervisor
func NewStateListener(conf StateListenerConfig) (*StateListener, error) {
	if conf.Reader == nil {
		return nil, errors.New("nil Reader is invalid")
	}
	if conf.Interval <= 0 {
		conf.Interval = DefaultPollInterval
	}
	return &StateListener{
		StateListenerConfig: conf,
		subscribers:         make(map[*stateSubscriber]struct{}),
	}, nil
}

// Subscribe returns a channel of events and a function to unsubscribe. Events
// are dropped for a subscriber whose buffer is full, so the dispatch never
// waits on a slow consumer.
func (s *StateListener) Subscribe(buffer int) (<-chan StateEvent, func()) {
	sub := &stateSubscriber{ch: make(chan StateEvent, buffer)}

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, sub)
			s.mu.Unlock()
		})
	}
}

// Serve satisfies suture.Service
func (s *StateListener) Serve(haltCtx context.Context) error {
	suspendCh := make(chan Event)
	if s.Suspend != nil {
		if err := s.Suspend.ListenSuspend(haltCtx, suspendCh); err != nil {
			s.Logger.Warn().Err(err).Msg("suspend/resume notification unavailable")
		}
	}

	s.poll(haltCtx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.poll(haltCtx)
		case evt := <-suspendCh:
			s.Logger.Info().Str("event", evt.String()).Msg("power event")
			s.dispatch(StateEvent{Event: evt, Status: s.lastStatus()})
			if evt == EventResume {
				// the adapter may have changed while asleep
				s.poll(haltCtx)
			}
		case <-haltCtx.Done():
			s.Logger.Info().Msg("exiting power state listener loop")
			return nil
		}
	}
}

func (s *StateListener) lastStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return Status{BatteryPercent: -1}
	}
	return *s.last
}

// poll emits a status change when anything differs from the previous poll.
// The first poll only records the baseline.
func (s *StateListener) poll(ctx context.Context) {
	status, err := s.Reader.Status(ctx)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("cannot read power status")
		return
	}

	s.mu.Lock()
	prev := s.last
	s.last = &status
	s.mu.Unlock()

	if prev == nil || *prev == status {
		return
	}

	adapterChanged := prev.Adapter != status.Adapter
	if adapterChanged {
		s.Logger.Info().Str("adapter", status.Adapter.String()).Msg("power adapter changed")
	}
	s.dispatch(StateEvent{
		Event:               EventStatusChange,
		AdapterStateChanged: adapterChanged,
		Status:              status,
	})
}

func (s *StateListener) dispatch(evt StateEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for sub := range s.subscribers {
		select {
		case sub.ch <- evt:
		default:
			s.Logger.Warn().Str("event", evt.Event.String()).Msg("power event subscriber is too slow, event dropped")
		}
	}
}

func (s *StateListener) String() string {
	return "PowerStateListener"
}
