package gamezone

import (
	"context"
	"sync"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ModelProbe returns the machine model, e.g. "Legion 7 16IAX10"
type ModelProbe interface {
	Model(ctx context.Context) (string, error)
}

// CapabilitiesConfig contains the sources of the machine capabilities
type CapabilitiesConfig struct {
	// Flags returns the configured capability and quirk flags
	Flags  func() powermode.Capabilities
	Model  ModelProbe // optional
	Logger zerolog.Logger
}

// Capabilities memoizes the machine capabilities on first use
type Capabilities struct {
	CapabilitiesConfig

	once sync.Once
	caps powermode.Capabilities
}

var _ powermode.CapabilityProvider = &Capabilities{}

// NewCapabilities returns a provider querying its sources once
func NewCapabilities(conf CapabilitiesConfig) (*Capabilities, error) {
	if conf.Flags == nil {
		return nil, errors.New("nil Flags is invalid")
	}
	return &Capabilities{
		CapabilitiesConfig: conf,
	}, nil
}

func (c *Capabilities) Capabilities(ctx context.Context) (powermode.Capabilities, error) {
	c.once.Do(func() {
		c.caps = c.Flags()

		model := "unknown"
		if c.Model != nil {
			if m, err := c.Model.Model(ctx); err != nil {
				c.Logger.Warn().Err(err).Msg("cannot read machine model")
			} else {
				model = m
			}
		}

		c.Logger.Info().
			Str("model", model).
			Bool("godmode", c.caps.SupportsGodMode).
			Bool("quietToPerformanceBug", c.caps.HasQuietToPerformanceSwitchingBug).
			Bool("godModeExitBug", c.caps.HasGodModeExitBug).
			Msg("machine capabilities")
	})
	return c.caps, nil
}
