package display

import (
	"context"
	"fmt"
	"sync"

	"github.com/legion-tools/LegionManager/system/power"
	"github.com/legion-tools/LegionManager/system/powermode"
	"github.com/legion-tools/LegionManager/util"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Preferences are the user settings read on every apply
type Preferences interface {
	AutoRefreshRate() bool
	RefreshRateOnAC() RefreshRate
	RefreshRateOnBattery() RefreshRate
}

// EventSource delivers power state events
type EventSource interface {
	Subscribe(buffer int) (<-chan power.StateEvent, func())
}

// AutoConfig contains the collaborators of the AutoRefreshRate controller
type AutoConfig struct {
	Display     Display
	PowerSource powermode.PowerSource
	Events      EventSource
	Preferences Preferences
	Publisher   powermode.Publisher // optional
	Logger      zerolog.Logger
}

// AutoRefreshRate switches the refresh rate when the power adapter is
// plugged in or out
type AutoRefreshRate struct {
	AutoConfig

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewAutoRefreshRate returns a stopped controller
func NewAutoRefreshRate(conf AutoConfig) (*AutoRefreshRate, error) {
	if conf.Display == nil {
		return nil, errors.New("nil Display is invalid")
	}
	if conf.PowerSource == nil {
		return nil, errors.New("nil PowerSource is invalid")
	}
	if conf.Events == nil {
		return nil, errors.New("nil Events is invalid")
	}
	if conf.Preferences == nil {
		return nil, errors.New("nil Preferences is invalid")
	}
	return &AutoRefreshRate{
		AutoConfig: conf,
	}, nil
}

// Started reports whether the controller listens to power events
func (a *AutoRefreshRate) Started() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.started
}

// Start subscribes to power events and, when enabled, applies the rate of
// the current power source right away. Calling Start again does nothing.
func (a *AutoRefreshRate) Start(ctx context.Context) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return
	}

	events, unsubscribe := a.Events.Subscribe(4)
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	a.started = true
	a.cancel = cancel
	a.done = done
	a.mu.Unlock()

	go a.loop(loopCtx, events, unsubscribe, done)

	a.Logger.Info().Msg("auto refresh rate started")

	if a.Preferences.AutoRefreshRate() {
		a.Apply(ctx)
	}
}

// Stop unsubscribes from power events. Calling Stop again does nothing.
func (a *AutoRefreshRate) Stop() {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return
	}
	cancel, done := a.cancel, a.done
	a.started = false
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	cancel()
	<-done

	a.Logger.Info().Msg("auto refresh rate stopped")
}

func (a *AutoRefreshRate) loop(ctx context.Context, events <-chan power.StateEvent, unsubscribe func(), done chan struct{}) {
	defer close(done)
	defer unsubscribe()

	for {
		select {
		case evt := <-events:
			a.onPowerEvent(ctx, evt)
		case <-ctx.Done():
			return
		}
	}
}

func (a *AutoRefreshRate) onPowerEvent(ctx context.Context, evt power.StateEvent) {
	if !a.Preferences.AutoRefreshRate() {
		return
	}
	if evt.Event != power.EventStatusChange || !evt.AdapterStateChanged {
		return
	}
	a.Apply(ctx)
}

// Apply sets the refresh rate configured for the current power source. Every
// failure is logged and swallowed.
func (a *AutoRefreshRate) Apply(ctx context.Context) {
	status, err := a.PowerSource.AdapterStatus(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("cannot read power adapter status")
		return
	}

	target := a.Preferences.RefreshRateOnBattery()
	if status == powermode.AdapterConnected {
		target = a.Preferences.RefreshRateOnAC()
	}

	logger := a.Logger.With().Str("adapter", status.String()).Logger()

	if target <= 0 {
		logger.Debug().Msg("target refresh rate not configured")
		return
	}

	current, err := a.Display.Current(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("cannot read current refresh rate")
		return
	}
	if current == target {
		logger.Debug().Str("rate", current.String()).Msg("refresh rate already set")
		return
	}

	supported, err := a.Display.Supported(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("cannot read supported refresh rates")
		return
	}
	if !containsRate(supported, target) {
		logger.Warn().Str("rate", target.String()).Msg("target refresh rate is not supported by the display")
		return
	}

	if err := a.Display.SetCurrent(ctx, target); err != nil {
		logger.Warn().Err(err).Str("rate", target.String()).Msg("cannot switch refresh rate")
		return
	}

	logger.Info().
		Str("from", current.String()).
		Str("to", target.String()).
		Msg("refresh rate switched")

	if a.Publisher != nil {
		a.Publisher.Publish(util.Notification{
			Type:    util.NotifyRefreshRate,
			Title:   "Refresh Rate",
			Message: fmt.Sprintf("Refresh rate changed to %s", target),
			Arg:     target.String(),
		})
	}
}
