package main

import (
	"github.com/legion-tools/LegionManager/system/display"
	"github.com/legion-tools/LegionManager/system/gamezone"
	"github.com/legion-tools/LegionManager/system/overclock"
	"github.com/legion-tools/LegionManager/system/persist"
	"github.com/legion-tools/LegionManager/system/power"

	"github.com/rs/zerolog"
)

// hardware holds the machine facing dependencies, real or simulated
type hardware struct {
	gamezone gamezone.Interface
	model    gamezone.ModelProbe // optional
	display  display.Display
	overlay  power.OverlaySetter
	status   power.StatusReader
	suspend  power.SuspendSource // optional
	run      power.Runner
	clock    overclock.ClockSetter
	vendor   overclock.VendorProbe
	persist  *persist.ConfigHelper
}

func dryHardware(logger zerolog.Logger) (*hardware, error) {
	logger.Info().Msg("dry run: simulating every hardware interface")

	config, err := persist.NewDryConfigHelper(logger.With().Str("component", "persist").Logger())
	if err != nil {
		return nil, err
	}

	return &hardware{
		gamezone: gamezone.NewDry(gamezone.DryConfig{
			CPUOverclock: true,
			GPUOverclock: true,
			Logger:       logger.With().Str("component", "gamezone").Logger(),
		}),
		display: display.NewDry([]display.RefreshRate{60, 165}, 165, logger.With().Str("component", "display").Logger()),
		overlay: &power.DryOverlaySetter{},
		status:  power.NewDryStatusReader(),
		run:     power.DryRunner(logger.With().Str("component", "powercfg").Logger()),
		clock:   overclock.NewDryClockSetter(logger.With().Str("component", "overclock").Logger()),
		vendor:  overclock.SystemVendorProbe{},
		persist: config,
	}, nil
}

// gpuClockSetter prefers NVML and falls back to logging the offsets
func gpuClockSetter(logger zerolog.Logger) overclock.ClockSetter {
	setter, err := overclock.NewNVMLClockSetter(logger)
	if err != nil {
		logger.Warn().Err(err).Msg("nvml unavailable, gpu offsets will only be logged")
		return overclock.NewDryClockSetter(logger)
	}
	return setter
}
