package powermode

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/legion-tools/LegionManager/util"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var notificationTypes = map[Mode]util.NotificationType{
	Quiet:       util.NotifyPowerModeQuiet,
	Balance:     util.NotifyPowerModeBalance,
	Performance: util.NotifyPowerModePerformance,
	Extreme:     util.NotifyPowerModeExtreme,
	GodMode:     util.NotifyPowerModeGodMode,
}

// Publisher hands notifications to the UI layer. Publish must not block.
type Publisher interface {
	Publish(n util.Notification)
}

// ListenerConfig contains the dependent systems the Listener fans out to
type ListenerConfig struct {
	GodMode          GodModeApplier
	WindowsPowerMode Applier
	WindowsPowerPlan Applier
	Publisher        Publisher
	Logger           zerolog.Logger
}

type subscriber struct {
	ch   chan Change
	done chan struct{}
}

// Listener propagates every settled power mode change, whether we initiated
// it or the firmware did, to the dependent systems and to subscribers.
type Listener struct {
	ListenerConfig

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	now         func() time.Time
}

var _ Notifier = &Listener{}

// NewListener returns a Listener fanning out to the given appliers
func NewListener(conf ListenerConfig) (*Listener, error) {
	if conf.GodMode == nil {
		return nil, errors.New("nil GodMode is invalid")
	}
	if conf.WindowsPowerMode == nil || conf.WindowsPowerPlan == nil {
		return nil, errors.New("nil windows power appliers are invalid")
	}
	if conf.Publisher == nil {
		return nil, errors.New("nil Publisher is invalid")
	}
	return &Listener{
		ListenerConfig: conf,
		subscribers:    make(map[*subscriber]struct{}),
		now:            time.Now,
	}, nil
}

// Subscribe returns a channel receiving every settled change, and a function
// to unsubscribe. Subscribers must keep draining the channel: delivery blocks
// the fan-out until the change is received or the caller's context ends.
func (l *Listener) Subscribe(buffer int) (<-chan Change, func()) {
	s := &subscriber{
		ch:   make(chan Change, buffer),
		done: make(chan struct{}),
	}

	l.mu.Lock()
	l.subscribers[s] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subscribers, s)
			l.mu.Unlock()
			close(s.done)
		})
	}
}

// OnRawChanged handles a firmware-initiated change, e.g. the Fn+Q hotkey. Raw
// firmware values are translated, fanned out, and published to the user.
func (l *Listener) OnRawChanged(ctx context.Context, raw int) error {
	mode, err := FromRaw(raw)
	if err != nil {
		return err
	}

	l.Logger.Info().Str("mode", mode.String()).Msg("power mode changed by firmware")

	if err := l.changeDependencies(ctx, mode); err != nil {
		return err
	}
	l.publish(mode)
	return l.raise(ctx, mode, OriginExternal)
}

// Notify handles a change we made ourselves. Dependent systems are updated the
// same way, but the user is not notified again.
func (l *Listener) Notify(ctx context.Context, mode Mode) error {
	if err := l.changeDependencies(ctx, mode); err != nil {
		return err
	}
	return l.raise(ctx, mode, OriginSelf)
}

// changeDependencies applies GodMode first when needed, then the Windows power
// mode and power plan in parallel, and returns once both have finished.
func (l *Listener) changeDependencies(ctx context.Context, mode Mode) error {
	if mode == GodMode {
		if err := l.GodMode.Apply(ctx); err != nil {
			l.Logger.Error().Err(err).Msg("cannot apply godmode profile")
			return errors.Wrap(err, "powermode: cannot apply godmode profile")
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, applier := range []Applier{l.WindowsPowerMode, l.WindowsPowerPlan} {
		wg.Add(1)
		go func(i int, a Applier) {
			defer wg.Done()
			errs[i] = a.Apply(ctx, mode)
		}(i, applier)
	}
	wg.Wait()

	if err := stderrors.Join(errs...); err != nil {
		l.Logger.Error().Err(err).Str("mode", mode.String()).Msg("cannot sync windows power settings")
		return errors.Wrapf(err, "powermode: cannot sync windows power settings to %s", mode)
	}
	return nil
}

func (l *Listener) publish(mode Mode) {
	t, ok := notificationTypes[mode]
	if !ok {
		return
	}
	l.Publisher.Publish(util.Notification{
		Type:    t,
		Title:   "Power Mode",
		Message: fmt.Sprintf("Power mode changed to %s", mode.DisplayName()),
		Arg:     mode.DisplayName(),
	})
}

func (l *Listener) raise(ctx context.Context, mode Mode, origin Origin) error {
	c := Change{
		Mode:   mode,
		Origin: origin,
		At:     l.now(),
	}

	l.mu.RLock()
	subs := make([]*subscriber, 0, len(l.subscribers))
	for s := range l.subscribers {
		subs = append(subs, s)
	}
	l.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.ch <- c:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
