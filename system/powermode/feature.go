package powermode

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SettleDelay is how long the firmware needs after an intermediate write
// before it accepts the real target.
const SettleDelay = time.Millisecond * 500

// godModeExitStops maps the wire target to the intermediate mode written first
// when leaving GodMode on machines with the exit bug.
var godModeExitStops = map[Mode]Mode{
	Quiet:       Performance,
	Balance:     Quiet,
	Performance: Balance,
}

// Config contains the collaborators of the Feature
type Config struct {
	Register     ModeRegister
	Probe        OverclockProbe
	Capabilities CapabilityProvider
	PowerSource  PowerSource
	Policy       BatteryPolicy
	Overlay      ExtremeOverlay
	Listener     Notifier

	WindowsPowerMode Applier
	WindowsPowerPlan Applier
	GodMode          GodModeApplier

	// Settle waits between an intermediate write and the real one. Defaults
	// to sleeping for the given duration.
	Settle func(time.Duration)

	Logger zerolog.Logger
}

// Feature is the authoritative power mode state machine
type Feature struct {
	Config

	mu            sync.Mutex // serializes transitions
	stateMu       sync.RWMutex
	extremeActive bool
}

// NewFeature validates the collaborators and returns a Feature. The Extreme
// overlay always starts inactive, whatever the hardware was left in.
func NewFeature(conf Config) (*Feature, error) {
	if conf.Register == nil {
		return nil, errors.New("nil Register is invalid")
	}
	if conf.Probe == nil {
		return nil, errors.New("nil Probe is invalid")
	}
	if conf.Capabilities == nil {
		return nil, errors.New("nil Capabilities is invalid")
	}
	if conf.PowerSource == nil {
		return nil, errors.New("nil PowerSource is invalid")
	}
	if conf.Policy == nil {
		return nil, errors.New("nil Policy is invalid")
	}
	if conf.Overlay == nil {
		return nil, errors.New("nil Overlay is invalid")
	}
	if conf.Listener == nil {
		return nil, errors.New("nil Listener is invalid")
	}
	if conf.WindowsPowerMode == nil || conf.WindowsPowerPlan == nil {
		return nil, errors.New("nil windows power appliers are invalid")
	}
	if conf.GodMode == nil {
		return nil, errors.New("nil GodMode is invalid")
	}
	if conf.Settle == nil {
		conf.Settle = time.Sleep
	}
	return &Feature{
		Config: conf,
	}, nil
}

// ExtremeActive reports whether the Extreme overlay is currently applied
func (f *Feature) ExtremeActive() bool {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()

	return f.extremeActive
}

func (f *Feature) setExtremeActive(v bool) {
	f.stateMu.Lock()
	defer f.stateMu.Unlock()

	f.extremeActive = v
}

// AllowedModes returns the modes this machine supports. Quiet, Balance and
// Performance are always present.
func (f *Feature) AllowedModes(ctx context.Context) ([]Mode, error) {
	caps, err := f.Capabilities.Capabilities(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "powermode: cannot read machine capabilities")
	}

	modes := []Mode{Quiet, Balance, Performance}
	if f.supportsExtreme(ctx) {
		modes = append(modes, Extreme)
	}
	if caps.SupportsGodMode {
		modes = append(modes, GodMode)
	}
	return modes, nil
}

func (f *Feature) supportsExtreme(ctx context.Context) bool {
	cpu, err := f.Probe.ProbeCPUOverclockSupport(ctx)
	if err != nil {
		f.Logger.Debug().Err(err).Msg("cpu overclock probe failed, treating as unsupported")
		cpu = false
	}
	gpu, err := f.Probe.ProbeGPUOverclockSupport(ctx)
	if err != nil {
		f.Logger.Debug().Err(err).Msg("gpu overclock probe failed, treating as unsupported")
		gpu = false
	}
	return cpu || gpu
}

// EffectiveState reads the firmware register and reconstructs Extreme from the
// overlay flag.
func (f *Feature) EffectiveState(ctx context.Context) (Mode, error) {
	raw, err := f.Register.ReadRawMode(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "powermode: cannot read firmware power mode")
	}
	mode, err := FromRaw(raw)
	if err != nil {
		return 0, err
	}
	return Effective(mode, f.ExtremeActive()), nil
}

// SetState transitions to req.Target. Concurrent calls are serialized; each
// one runs the whole sequence, workarounds included, before the next starts.
// Cancelling ctx only aborts a transition that has not passed validation yet.
func (f *Feature) SetState(ctx context.Context, req TransitionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// the caller may have given up while waiting for the previous transition
	if err := ctx.Err(); err != nil {
		return err
	}

	target := req.Target

	allowed, err := f.AllowedModes(ctx)
	if err != nil {
		return err
	}
	if !containsMode(allowed, target) {
		return &UnsupportedModeError{Mode: target}
	}

	if target.RequiresAC() && !req.OnBatteryAllowed && !f.Policy.AllowAllPowerModesOnBattery() {
		status, err := f.PowerSource.AdapterStatus(ctx)
		if err != nil {
			return errors.Wrap(err, "powermode: cannot read power adapter status")
		}
		if status == AdapterDisconnected {
			return &BatteryRestrictionError{Mode: target}
		}
	}

	// past validation a transition always runs to completion
	ctx = context.WithoutCancel(ctx)

	current, err := f.EffectiveState(ctx)
	if err != nil {
		return err
	}

	caps, err := f.Capabilities.Capabilities(ctx)
	if err != nil {
		return errors.Wrap(err, "powermode: cannot read machine capabilities")
	}

	wire := target.WireMode()

	if caps.HasQuietToPerformanceSwitchingBug && current == Quiet && wire == Performance {
		f.Logger.Debug().Msg("quiet to performance workaround: stopping at balance first")
		if err := f.writeIntermediate(ctx, Balance); err != nil {
			return err
		}
	}

	if caps.HasGodModeExitBug && current == GodMode && wire != GodMode {
		if stop, ok := godModeExitStops[wire]; ok {
			f.Logger.Debug().Str("stop", stop.String()).Msg("godmode exit workaround: writing intermediate mode")
			if err := f.writeIntermediate(ctx, stop); err != nil {
				return err
			}
		}
	}

	if err := f.Register.WriteRawMode(ctx, wire.Raw(), OriginSelf); err != nil {
		return errors.Wrapf(err, "powermode: cannot set firmware power mode to %s", wire)
	}

	f.applyOverlay(ctx, target)

	f.Logger.Info().
		Str("from", current.String()).
		Str("to", target.String()).
		Msg("power mode set")

	return f.Listener.Notify(ctx, target)
}

func (f *Feature) writeIntermediate(ctx context.Context, stop Mode) error {
	if err := f.Register.WriteRawMode(ctx, stop.Raw(), OriginSelf); err != nil {
		return errors.Wrapf(err, "powermode: cannot write intermediate power mode %s", stop)
	}
	f.Settle(SettleDelay)
	return nil
}

func (f *Feature) applyOverlay(ctx context.Context, target Mode) {
	if target == Extreme {
		f.Overlay.Enter(ctx)
		f.setExtremeActive(true)
		return
	}
	if f.ExtremeActive() {
		f.Overlay.Exit(ctx)
		f.setExtremeActive(false)
	}
}

// EnsureWindowsPowerSettingsAreApplied re-syncs the Windows power mode and
// power plan with the effective mode, e.g. after resume from sleep.
func (f *Feature) EnsureWindowsPowerSettingsAreApplied(ctx context.Context) error {
	mode, err := f.EffectiveState(ctx)
	if err != nil {
		return err
	}
	if err := f.WindowsPowerMode.Apply(ctx, mode); err != nil {
		return errors.Wrap(err, "powermode: cannot apply windows power mode")
	}
	if err := f.WindowsPowerPlan.Apply(ctx, mode); err != nil {
		return errors.Wrap(err, "powermode: cannot apply windows power plan")
	}
	return nil
}

// EnsureGodModeApplied re-applies the stored GodMode profile if GodMode is the
// effective mode, and does nothing otherwise.
func (f *Feature) EnsureGodModeApplied(ctx context.Context) error {
	mode, err := f.EffectiveState(ctx)
	if err != nil {
		return err
	}
	if mode != GodMode {
		return nil
	}
	return errors.Wrap(f.GodMode.Apply(ctx), "powermode: cannot apply godmode profile")
}

func containsMode(modes []Mode, m Mode) bool {
	for _, candidate := range modes {
		if candidate == m {
			return true
		}
	}
	return false
}
