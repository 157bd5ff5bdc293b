package godmode

import (
	"context"
	"sync"
	"time"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// fanSettleTime lets the firmware take the first table before the second
const fanSettleTime = time.Millisecond * 250

// Curves are the configured fan curves, in fan table syntax
type Curves struct {
	CPU string
	GPU string
}

// FanTableWriter writes a fan table to the firmware
type FanTableWriter interface {
	SetFanTable(ctx context.Context, table []byte) error
}

// Config contains the collaborators of the Applier
type Config struct {
	Hardware FanTableWriter
	// Curves returns the current profile, it is read on every Apply so
	// configuration reloads are picked up
	Curves func() Curves
	Settle func(time.Duration)
	Logger zerolog.Logger
}

// Applier writes the custom profile to the firmware
type Applier struct {
	Config

	mu sync.Mutex
}

var _ powermode.GodModeApplier = &Applier{}

// NewApplier returns a GodMode profile Applier
func NewApplier(conf Config) (*Applier, error) {
	if conf.Hardware == nil {
		return nil, errors.New("nil Hardware is invalid")
	}
	if conf.Curves == nil {
		return nil, errors.New("nil Curves is invalid")
	}
	if conf.Settle == nil {
		conf.Settle = time.Sleep
	}
	return &Applier{
		Config: conf,
	}, nil
}

// Apply writes the cpu fan curve, then the gpu fan curve. A curve left empty
// keeps the firmware default.
func (a *Applier) Apply(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	curves := a.Curves()

	cpu, err := NewFanTable(curves.CPU)
	if err != nil {
		return errors.Wrap(err, "godmode: invalid cpu fan curve")
	}
	gpu, err := NewFanTable(curves.GPU)
	if err != nil {
		return errors.Wrap(err, "godmode: invalid gpu fan curve")
	}

	if cpu != nil {
		if err := a.Hardware.SetFanTable(ctx, cpu.Bytes(CPUFan)); err != nil {
			return errors.Wrap(err, "godmode: cannot set cpu fan curve")
		}
		a.Logger.Info().Str("curve", cpu.String()).Msg("cpu fan curve set")
	}

	if cpu != nil && gpu != nil {
		a.Settle(fanSettleTime)
	}

	if gpu != nil {
		if err := a.Hardware.SetFanTable(ctx, gpu.Bytes(GPUFan)); err != nil {
			return errors.Wrap(err, "godmode: cannot set gpu fan curve")
		}
		a.Logger.Info().Str("curve", gpu.String()).Msg("gpu fan curve set")
	}

	return nil
}
