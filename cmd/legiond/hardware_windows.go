package main

import (
	"github.com/legion-tools/LegionManager/system/display"
	"github.com/legion-tools/LegionManager/system/gamezone"
	"github.com/legion-tools/LegionManager/system/overclock"
	"github.com/legion-tools/LegionManager/system/persist"
	"github.com/legion-tools/LegionManager/system/power"

	"github.com/rs/zerolog"
)

func systemHardware(logger zerolog.Logger) (*hardware, error) {
	gz, err := gamezone.NewWMI(logger.With().Str("component", "gamezone").Logger())
	if err != nil {
		return nil, err
	}

	config, err := persist.NewRegistryConfigHelper(logger.With().Str("component", "persist").Logger())
	if err != nil {
		return nil, err
	}

	return &hardware{
		gamezone: gz,
		model:    gamezone.SystemModel{},
		display:  &display.System{},
		overlay:  power.SystemOverlaySetter{},
		status:   power.SystemStatusReader{},
		suspend:  &power.SystemSuspendSource{Logger: logger.With().Str("component", "suspend").Logger()},
		run:      power.Run,
		clock:    gpuClockSetter(logger.With().Str("component", "overclock").Logger()),
		vendor:   overclock.SystemVendorProbe{},
		persist:  config,
	}, nil
}
