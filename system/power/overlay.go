package power

import (
	"context"
	"sync"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/rs/zerolog"
)

// Windows power mode overlays, as shown by the battery flyout
const (
	OverlayBestEfficiency  = "961cc777-2547-4f9d-8174-7d86181b8a7a"
	OverlayBalanced        = "00000000-0000-0000-0000-000000000000"
	OverlayBestPerformance = "ded574b5-45a0-4f42-8737-46345c09c238"
)

var overlays = map[powermode.Mode]string{
	powermode.Quiet:       OverlayBestEfficiency,
	powermode.Balance:     OverlayBalanced,
	powermode.Performance: OverlayBestPerformance,
	powermode.Extreme:     OverlayBestPerformance,
	powermode.GodMode:     OverlayBestPerformance,
}

// OverlayFromMode returns the overlay scheme GUID of mode
func OverlayFromMode(mode powermode.Mode) (string, bool) {
	guid, ok := overlays[mode]
	return guid, ok
}

// OverlaySetter activates a power mode overlay scheme
type OverlaySetter interface {
	SetActiveOverlay(guid string) error
}

// OverlayApplier maps power modes onto the Windows power mode overlay
type OverlayApplier struct {
	Setter OverlaySetter
	Logger zerolog.Logger
}

var _ powermode.Applier = &OverlayApplier{}

func (o *OverlayApplier) Apply(ctx context.Context, mode powermode.Mode) error {
	guid, ok := OverlayFromMode(mode)
	if !ok {
		return nil
	}
	if err := o.Setter.SetActiveOverlay(guid); err != nil {
		return err
	}
	o.Logger.Info().Str("mode", mode.String()).Str("overlay", guid).Msg("windows power mode set")
	return nil
}

// DryOverlaySetter remembers the overlay instead of activating it
type DryOverlaySetter struct {
	mu     sync.Mutex
	active string
}

var _ OverlaySetter = &DryOverlaySetter{}

func (d *DryOverlaySetter) SetActiveOverlay(guid string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active = guid
	return nil
}

// Active returns the last overlay set
func (d *DryOverlaySetter) Active() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.active
}
