package controller

import (
	"context"
	"time"

	"github.com/legion-tools/LegionManager/settings"
	"github.com/legion-tools/LegionManager/system/history"
	"github.com/legion-tools/LegionManager/system/power"
	"github.com/legion-tools/LegionManager/system/powermode"
	"github.com/legion-tools/LegionManager/util"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ResumeDelay coalesces the burst of events Windows sends around resume
const ResumeDelay = time.Second

// PowerModeSync re-applies the dependent systems of the effective power mode
type PowerModeSync interface {
	EnsureWindowsPowerSettingsAreApplied(ctx context.Context) error
	EnsureGodModeApplied(ctx context.Context) error
}

// ChangeSource delivers settled power mode changes
type ChangeSource interface {
	Subscribe(buffer int) (<-chan powermode.Change, func())
}

// PowerEvents delivers power supply, suspend and resume events
type PowerEvents interface {
	Subscribe(buffer int) (<-chan power.StateEvent, func())
}

// RefreshRateController is the auto refresh rate controller
type RefreshRateController interface {
	Start(ctx context.Context)
	Stop()
	Apply(ctx context.Context)
}

// Recorder journals settled changes
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// SettingsWatcher calls fn with every reloaded configuration
type SettingsWatcher interface {
	Watch(ctx context.Context, fn func(settings.Settings)) error
}

// Config contains the components the controller ties together
type Config struct {
	PowerMode       PowerModeSync
	Changes         ChangeSource
	PowerEvents     PowerEvents
	AutoRefreshRate RefreshRateController
	History         Recorder        // optional
	Settings        SettingsWatcher // optional

	// ResumeDelay defaults to ResumeDelay
	ResumeDelay time.Duration

	Logger zerolog.Logger
}

type workQueue struct {
	noisy chan<- interface{}
	clean <-chan util.DebounceEvent
}

// Controller reacts to power mode changes, power events and configuration
// reloads. It runs as a suture service.
type Controller struct {
	Config
}

// New returns a Controller
func New(conf Config) (*Controller, error) {
	if conf.PowerMode == nil {
		return nil, errors.New("[controller] nil PowerMode is invalid")
	}
	if conf.Changes == nil {
		return nil, errors.New("[controller] nil Changes is invalid")
	}
	if conf.PowerEvents == nil {
		return nil, errors.New("[controller] nil PowerEvents is invalid")
	}
	if conf.AutoRefreshRate == nil {
		return nil, errors.New("[controller] nil AutoRefreshRate is invalid")
	}
	if conf.ResumeDelay <= 0 {
		conf.ResumeDelay = ResumeDelay
	}
	return &Controller{
		Config: conf,
	}, nil
}

// Serve satisfies suture.Service. It blocks until haltCtx is done, or the
// settings watcher fails.
func (c *Controller) Serve(haltCtx context.Context) error {
	ctx, cancel := context.WithCancel(haltCtx)
	defer cancel()

	c.Logger.Info().Msg("starting controller loop")

	changes, unsubscribeChanges := c.Changes.Subscribe(8)
	defer unsubscribeChanges()

	powerEvents, unsubscribePower := c.PowerEvents.Subscribe(8)
	defer unsubscribePower()

	resumeIn, resumeOut := util.Debounce(ctx, c.ResumeDelay)
	resume := workQueue{noisy: resumeIn, clean: resumeOut}

	reloadCh := make(chan settings.Settings, 1)
	watchErrCh := make(chan error, 1)
	if c.Settings != nil {
		go func() {
			watchErrCh <- c.Settings.Watch(ctx, func(s settings.Settings) {
				select {
				case reloadCh <- s:
				case <-ctx.Done():
				}
			})
		}()
	}

	c.AutoRefreshRate.Start(ctx)
	defer c.AutoRefreshRate.Stop()

	c.ensurePowerSettings(ctx)

	for {
		select {
		case change := <-changes:
			c.record(ctx, change)

		case evt := <-powerEvents:
			switch evt.Event {
			case power.EventSuspend:
				c.Logger.Info().Msg("system is suspending")
			case power.EventResume:
				select {
				case resume.noisy <- evt:
				case <-ctx.Done():
					return nil
				}
			}

		case ev := <-resume.clean:
			c.Logger.Info().Int64("events", ev.Counter).Msg("housekeeping after resume")
			c.ensurePowerSettings(ctx)
			c.ensureGodMode(ctx)

		case s := <-reloadCh:
			c.Logger.Info().Msg("re-applying settings after configuration change")
			if s.AutoRefreshRate {
				c.AutoRefreshRate.Apply(ctx)
			}
			c.ensurePowerSettings(ctx)
			c.ensureGodMode(ctx)

		case err := <-watchErrCh:
			if err != nil {
				c.Logger.Error().Err(err).Msg("configuration watcher stopped")
				return errors.Wrap(err, "[controller] configuration watcher stopped")
			}

		case <-ctx.Done():
			c.Logger.Info().Msg("exiting controller loop")
			return nil
		}
	}
}

func (c *Controller) String() string {
	return "Controller"
}

func (c *Controller) record(ctx context.Context, change powermode.Change) {
	c.Logger.Debug().
		Str("mode", change.Mode.String()).
		Str("origin", change.Origin.String()).
		Msg("power mode settled")

	if c.History == nil {
		return
	}
	err := c.History.Record(ctx, history.Entry{
		Mode:   change.Mode,
		Origin: change.Origin,
		At:     change.At,
	})
	if err != nil {
		c.Logger.Warn().Err(err).Msg("cannot record power mode change")
	}
}

func (c *Controller) ensurePowerSettings(ctx context.Context) {
	if err := c.PowerMode.EnsureWindowsPowerSettingsAreApplied(ctx); err != nil {
		c.Logger.Warn().Err(err).Msg("cannot sync windows power settings")
	}
}

func (c *Controller) ensureGodMode(ctx context.Context) {
	if err := c.PowerMode.EnsureGodModeApplied(ctx); err != nil {
		c.Logger.Warn().Err(err).Msg("cannot re-apply godmode profile")
	}
}
