package display

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Dry simulates a panel in memory
type Dry struct {
	mu        sync.Mutex
	supported []RefreshRate
	current   RefreshRate
	sets      []RefreshRate
	logger    zerolog.Logger
}

var _ Display = &Dry{}

// NewDry returns a simulated panel running at current
func NewDry(supported []RefreshRate, current RefreshRate, logger zerolog.Logger) *Dry {
	return &Dry{
		supported: uniqueRates(supported),
		current:   current,
		logger:    logger,
	}
}

func (d *Dry) Supported(ctx context.Context) ([]RefreshRate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]RefreshRate(nil), d.supported...), nil
}

func (d *Dry) Current(ctx context.Context) (RefreshRate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.current, nil
}

func (d *Dry) SetCurrent(ctx context.Context, rate RefreshRate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !containsRate(d.supported, rate) {
		return errors.Errorf("display: %s is not supported", rate)
	}
	d.logger.Info().Str("rate", rate.String()).Msg("[dry run] display: refresh rate set")
	d.current = rate
	d.sets = append(d.sets, rate)
	return nil
}

// Sets returns every rate written so far
func (d *Dry) Sets() []RefreshRate {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]RefreshRate(nil), d.sets...)
}
