package overclock

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// DryClockSetter logs offsets instead of writing them. It remembers the last
// offsets so tests can inspect them.
type DryClockSetter struct {
	mu     sync.Mutex
	last   Offsets
	writes int
	logger zerolog.Logger
}

var _ ClockSetter = &DryClockSetter{}

// NewDryClockSetter returns a setter without hardware IO
func NewDryClockSetter(logger zerolog.Logger) *DryClockSetter {
	return &DryClockSetter{
		logger: logger,
	}
}

func (d *DryClockSetter) SetOffsets(ctx context.Context, o Offsets) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Info().Int("core", o.Core).Int("memory", o.Memory).Msg("[dry run] gpu clock offsets")
	d.last = o
	d.writes++
	return nil
}

// Last returns the last offsets written and the number of writes
func (d *DryClockSetter) Last() (Offsets, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.last, d.writes
}

func (d *DryClockSetter) Close() error {
	return nil
}
