package powermode

import (
	"context"
	"fmt"
	"time"
)

// Capabilities is the per-machine snapshot that gates GodMode and drives the
// firmware workarounds. It is queried once and cached by the provider.
type Capabilities struct {
	SupportsGodMode                   bool
	HasQuietToPerformanceSwitchingBug bool
	HasGodModeExitBug                 bool
}

// TransitionRequest asks the Feature to move to Target. OnBatteryAllowed is the
// user's "apply anyway" override for modes restricted on battery.
type TransitionRequest struct {
	Target           Mode
	OnBatteryAllowed bool
}

// AdapterStatus is the state of the power adapter
type AdapterStatus int

const (
	AdapterConnected AdapterStatus = iota
	AdapterDisconnected
	AdapterConnectedLowWattage
)

var adapterStatusNames = [...]string{"connected", "disconnected", "connected (low wattage)"}

func (a AdapterStatus) String() string {
	if a < 0 || int(a) >= len(adapterStatusNames) {
		return fmt.Sprintf("adapter(%d)", int(a))
	}
	return adapterStatusNames[a]
}

// Origin tags every write to, and every change of, the firmware mode register.
type Origin int

const (
	OriginExternal Origin = iota
	OriginSelf
)

var originNames = [...]string{"external", "self"}

func (o Origin) String() string {
	if o < 0 || int(o) >= len(originNames) {
		return fmt.Sprintf("origin(%d)", int(o))
	}
	return originNames[o]
}

// Change is delivered to Listener subscribers once a mode change has settled
type Change struct {
	Mode   Mode
	Origin Origin
	At     time.Time
}

// ModeRegister reads and writes the firmware power mode register. Writes carry
// their origin so the thermal listener can tell our own writes apart from
// hotkey presses.
type ModeRegister interface {
	ReadRawMode(ctx context.Context) (int, error)
	WriteRawMode(ctx context.Context, raw int, origin Origin) error
}

// OverclockProbe reports whether the machine supports CPU or GPU overclock.
// Errors are treated as "unsupported".
type OverclockProbe interface {
	ProbeCPUOverclockSupport(ctx context.Context) (bool, error)
	ProbeGPUOverclockSupport(ctx context.Context) (bool, error)
}

// CapabilityProvider returns the memoized machine capabilities
type CapabilityProvider interface {
	Capabilities(ctx context.Context) (Capabilities, error)
}

// PowerSource reports whether the power adapter is plugged in
type PowerSource interface {
	AdapterStatus(ctx context.Context) (AdapterStatus, error)
}

// BatteryPolicy exposes the "allow all power modes on battery" preference
type BatteryPolicy interface {
	AllowAllPowerModesOnBattery() bool
}

// Applier maps a logical mode onto a dependent system (Windows power mode,
// Windows power plan).
type Applier interface {
	Apply(ctx context.Context, mode Mode) error
}

// GodModeApplier re-applies the stored GodMode profile
type GodModeApplier interface {
	Apply(ctx context.Context) error
}

// ExtremeOverlay applies and clears the CPU/GPU overclock that turns hardware
// Performance into Extreme. Both calls are best-effort and never fail.
type ExtremeOverlay interface {
	Enter(ctx context.Context)
	Exit(ctx context.Context)
}

// Notifier is the internal path into the Listener
type Notifier interface {
	Notify(ctx context.Context, mode Mode) error
}
