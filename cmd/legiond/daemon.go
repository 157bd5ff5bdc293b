package main

import (
	"context"

	"github.com/legion-tools/LegionManager/controller"
	"github.com/legion-tools/LegionManager/rpc/server"
	"github.com/legion-tools/LegionManager/settings"
	"github.com/legion-tools/LegionManager/supervisor"
	"github.com/legion-tools/LegionManager/supervisor/background"
	"github.com/legion-tools/LegionManager/system/display"
	"github.com/legion-tools/LegionManager/system/gamezone"
	"github.com/legion-tools/LegionManager/system/godmode"
	"github.com/legion-tools/LegionManager/system/history"
	"github.com/legion-tools/LegionManager/system/overclock"
	"github.com/legion-tools/LegionManager/system/power"
	"github.com/legion-tools/LegionManager/system/powermode"
	"github.com/legion-tools/LegionManager/system/thermal"

	"github.com/rs/zerolog"
)

// daemon is the wired dependency graph
type daemon struct {
	hw *hardware

	notifier        *background.Notifier
	thermalListener *thermal.Listener
	stateListener   *power.StateListener
	controller      *controller.Controller
	grpc            *supervisor.Server

	journal *history.Journal
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

func newDaemon(ctx context.Context, hw *hardware, store *settings.Store, logger zerolog.Logger) (*daemon, error) {
	s := store.Get()

	d := &daemon{
		hw:       hw,
		notifier: background.NewNotifier(component(logger, "notifier")),
	}

	gpu, err := overclock.NewGPUController(overclock.GPUConfig{
		Setter: hw.clock,
		Saver:  hw.persist,
		Logger: component(logger, "overclock"),
	})
	if err != nil {
		return nil, err
	}

	hw.persist.Register(gpu)
	if err := hw.persist.Load(); err != nil {
		logger.Warn().Err(err).Msg("cannot load persisted state")
	}
	if err := hw.persist.Apply(ctx); err != nil {
		logger.Warn().Err(err).Msg("cannot re-apply persisted state")
	}

	register, err := thermal.NewRegister(thermal.RegisterConfig{
		Hardware: hw.gamezone,
		Logger:   component(logger, "register"),
	})
	if err != nil {
		return nil, err
	}

	caps, err := gamezone.NewCapabilities(gamezone.CapabilitiesConfig{
		Flags:  store.Machine,
		Model:  hw.model,
		Logger: component(logger, "capabilities"),
	})
	if err != nil {
		return nil, err
	}

	source := &power.Source{Reader: hw.status}

	overlay, err := overclock.NewOverlay(overclock.Config{
		CPU:    hw.gamezone,
		GPU:    gpu,
		Vendor: hw.vendor,
		Logger: component(logger, "extreme"),
	})
	if err != nil {
		return nil, err
	}

	powercfg, err := power.NewCfg(ctx, hw.run, component(logger, "powercfg"))
	if err != nil {
		return nil, err
	}
	planApplier := &power.PlanApplier{
		Cfg:   powercfg,
		Plans: store.PowerPlans,
	}
	overlayApplier := &power.OverlayApplier{
		Setter: hw.overlay,
		Logger: component(logger, "overlay"),
	}

	godMode, err := godmode.NewApplier(godmode.Config{
		Hardware: hw.gamezone,
		Curves:   store.Curves,
		Logger:   component(logger, "godmode"),
	})
	if err != nil {
		return nil, err
	}

	listener, err := powermode.NewListener(powermode.ListenerConfig{
		GodMode:          godMode,
		WindowsPowerMode: overlayApplier,
		WindowsPowerPlan: planApplier,
		Publisher:        d.notifier,
		Logger:           component(logger, "listener"),
	})
	if err != nil {
		return nil, err
	}

	feature, err := powermode.NewFeature(powermode.Config{
		Register:         register,
		Probe:            hw.gamezone,
		Capabilities:     caps,
		PowerSource:      source,
		Policy:           store,
		Overlay:          overlay,
		Listener:         listener,
		WindowsPowerMode: overlayApplier,
		WindowsPowerPlan: planApplier,
		GodMode:          godMode,
		Logger:           component(logger, "powermode"),
	})
	if err != nil {
		return nil, err
	}

	d.thermalListener, err = thermal.NewListener(thermal.ListenerConfig{
		Source:   hw.gamezone,
		Register: register,
		Handler:  listener,
		Logger:   component(logger, "thermal"),
	})
	if err != nil {
		return nil, err
	}

	d.stateListener, err = power.NewStateListener(power.StateListenerConfig{
		Reader:   hw.status,
		Suspend:  hw.suspend,
		Interval: s.PollInterval,
		Logger:   component(logger, "power"),
	})
	if err != nil {
		return nil, err
	}

	auto, err := display.NewAutoRefreshRate(display.AutoConfig{
		Display:     hw.display,
		PowerSource: source,
		Events:      d.stateListener,
		Preferences: store,
		Publisher:   d.notifier,
		Logger:      component(logger, "refreshrate"),
	})
	if err != nil {
		return nil, err
	}

	controllerConf := controller.Config{
		PowerMode:       feature,
		Changes:         listener,
		PowerEvents:     d.stateListener,
		AutoRefreshRate: auto,
		Settings:        store,
		Logger:          component(logger, "controller"),
	}
	serverConf := server.PowerModeConfig{
		Feature: feature,
		Version: Version,
		Logger:  component(logger, "rpc"),
	}
	if s.HistoryPath != "" {
		d.journal, err = history.Open(ctx, s.HistoryPath, component(logger, "history"))
		if err != nil {
			return nil, err
		}
		controllerConf.History = d.journal
		serverConf.History = d.journal
	}

	d.controller, err = controller.New(controllerConf)
	if err != nil {
		return nil, err
	}

	pm, err := server.NewPowerModeServer(serverConf)
	if err != nil {
		return nil, err
	}
	d.grpc, err = supervisor.NewGRPCServer(supervisor.GRPCRunConfig{
		Address:   s.RPCAddress,
		PowerMode: pm,
		Logger:    component(logger, "grpc"),
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *daemon) Close(logger zerolog.Logger) {
	d.hw.persist.Close()
	if err := d.hw.gamezone.Close(); err != nil {
		logger.Warn().Err(err).Msg("cannot close gamezone interface")
	}
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			logger.Warn().Err(err).Msg("cannot close transition journal")
		}
	}
}
