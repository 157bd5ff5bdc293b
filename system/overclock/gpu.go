package overclock

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"

	"github.com/legion-tools/LegionManager/system/persist"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const persistKey = "GPUOverclock"

// Offsets are the GPU clock offsets in MHz
type Offsets struct {
	Core   int
	Memory int
}

// ZeroOffsets resets both clocks to stock
var ZeroOffsets = Offsets{}

// ExtremeOffsets are applied on entering Extreme
var ExtremeOffsets = Offsets{Core: 50, Memory: 100}

// GPUState is the committed GPU overclock state
type GPUState struct {
	Enabled bool
	Offsets Offsets
}

// ClockSetter writes clock offsets to the GPU
type ClockSetter interface {
	SetOffsets(ctx context.Context, o Offsets) error
	Close() error
}

// Saver persists the committed state, usually a persist.ConfigRegistry
type Saver interface {
	Save() error
}

// GPUConfig contains the collaborators of the GPUController
type GPUConfig struct {
	Setter ClockSetter
	Saver  Saver // optional
	Logger zerolog.Logger
}

// GPUController owns the committed GPU overclock state and pushes it to the
// hardware on demand
type GPUController struct {
	GPUConfig

	mu    sync.RWMutex
	state GPUState
}

var _ persist.Registry = &GPUController{}

// NewGPUController returns a controller with overclock disabled
func NewGPUController(conf GPUConfig) (*GPUController, error) {
	if conf.Setter == nil {
		return nil, errors.New("nil ClockSetter is invalid")
	}
	return &GPUController{
		GPUConfig: conf,
	}, nil
}

// State returns the committed state
func (g *GPUController) State() GPUState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.state
}

// SaveState commits a new state without touching the hardware
func (g *GPUController) SaveState(enabled bool, offsets Offsets) {
	g.mu.Lock()
	g.state = GPUState{
		Enabled: enabled,
		Offsets: offsets,
	}
	g.mu.Unlock()

	if g.Saver == nil {
		return
	}
	if err := g.Saver.Save(); err != nil {
		g.Logger.Warn().Err(err).Msg("cannot persist gpu overclock state")
	}
}

// ApplyState pushes the committed state to the GPU. A disabled state is only
// written when forceReset is set, so stock clocks are not rewritten for nothing.
func (g *GPUController) ApplyState(ctx context.Context, forceReset bool) error {
	state := g.State()

	var target Offsets
	switch {
	case state.Enabled:
		target = state.Offsets
	case forceReset:
		target = ZeroOffsets
	default:
		return nil
	}

	if err := g.Setter.SetOffsets(ctx, target); err != nil {
		return errors.Wrap(err, "overclock: cannot set gpu clock offsets")
	}

	g.Logger.Info().
		Int("core", target.Core).
		Int("memory", target.Memory).
		Msg("gpu clock offsets set")

	return nil
}

// Name satisfies persist.Registry
func (g *GPUController) Name() string {
	return persistKey
}

// Value satisfies persist.Registry
func (g *GPUController) Value() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(g.State()); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Load satisfies persist.Registry
func (g *GPUController) Load(v []byte) error {
	if len(v) == 0 {
		return nil
	}
	var state GPUState
	dec := gob.NewDecoder(bytes.NewBuffer(v))
	if err := dec.Decode(&state); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = state
	return nil
}

// Apply satisfies persist.Registry
func (g *GPUController) Apply(ctx context.Context) error {
	return g.ApplyState(ctx, false)
}

// Close satisfies persist.Registry
func (g *GPUController) Close() error {
	return g.Setter.Close()
}
