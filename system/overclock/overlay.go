package overclock

import (
	"context"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CPUOverclocker toggles the firmware CPU core offset
type CPUOverclocker interface {
	SetCPUOverclock(ctx context.Context, enabled bool) error
}

// GPUOverclocker is the part of the GPUController used by the Overlay
type GPUOverclocker interface {
	SaveState(enabled bool, offsets Offsets)
	ApplyState(ctx context.Context, forceReset bool) error
}

// Config contains the collaborators of the Overlay
type Config struct {
	CPU    CPUOverclocker
	GPU    GPUOverclocker
	Vendor VendorProbe
	Logger zerolog.Logger
}

// Overlay turns hardware Performance into Extreme. Every step is
// best-effort: failures are logged and the mode transition carries on.
type Overlay struct {
	Config
}

var _ powermode.ExtremeOverlay = &Overlay{}

// NewOverlay returns an Overlay
func NewOverlay(conf Config) (*Overlay, error) {
	if conf.CPU == nil {
		return nil, errors.New("nil CPUOverclocker is invalid")
	}
	if conf.GPU == nil {
		return nil, errors.New("nil GPUOverclocker is invalid")
	}
	if conf.Vendor == nil {
		return nil, errors.New("nil VendorProbe is invalid")
	}
	return &Overlay{
		Config: conf,
	}, nil
}

// Enter enables the CPU offset on non-AMD processors and the GPU offsets on
// every machine
func (o *Overlay) Enter(ctx context.Context) {
	if o.isAMD(ctx) {
		o.Logger.Info().Msg("extreme mode: cpu overclock skipped on amd processor")
	} else if err := o.CPU.SetCPUOverclock(ctx, true); err != nil {
		o.Logger.Warn().Err(err).Msg("extreme mode: cannot enable cpu overclock")
	} else {
		o.Logger.Info().Msg("extreme mode: cpu overclock enabled")
	}

	o.GPU.SaveState(true, ExtremeOffsets)
	if err := o.GPU.ApplyState(ctx, false); err != nil {
		o.Logger.Warn().Err(err).Msg("extreme mode: cannot apply gpu overclock")
	}
}

// Exit mirrors Enter and forces the GPU back to stock clocks
func (o *Overlay) Exit(ctx context.Context) {
	if !o.isAMD(ctx) {
		if err := o.CPU.SetCPUOverclock(ctx, false); err != nil {
			o.Logger.Warn().Err(err).Msg("extreme mode: cannot disable cpu overclock")
		} else {
			o.Logger.Info().Msg("extreme mode: cpu overclock disabled")
		}
	}

	o.GPU.SaveState(false, ZeroOffsets)
	if err := o.GPU.ApplyState(ctx, true); err != nil {
		o.Logger.Warn().Err(err).Msg("extreme mode: cannot reset gpu overclock")
	}
}

// isAMD treats a failed probe as AMD, so CPU overclock is skipped
func (o *Overlay) isAMD(ctx context.Context) bool {
	vendor, err := o.Vendor.CPUVendor(ctx)
	if err != nil {
		o.Logger.Warn().Err(err).Msg("cannot determine cpu vendor, assuming amd")
		return true
	}
	return IsAMD(vendor)
}
