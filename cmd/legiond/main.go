package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legion-tools/LegionManager/settings"
	"github.com/legion-tools/LegionManager/supervisor"
	"github.com/legion-tools/LegionManager/util"

	"github.com/rs/zerolog"
	suture "github.com/thejerf/suture/v4"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Compile time injected variables
var (
	Version = "v0.0.0-dev"
)

func newLogger(s settings.Settings) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if s.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   s.LogFile,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		}
	}

	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func main() {
	flags := settings.Flags("legiond")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	store, err := settings.Load(flags, bootLogger)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("cannot load configuration")
	}

	s := store.Get()
	logger := newLogger(s)
	logger.Info().Str("version", Version).Bool("dryRun", s.DryRun).Msg("LegionManager starting")

	var hw *hardware
	if s.DryRun {
		hw, err = dryHardware(logger)
	} else {
		hw, err = systemHardware(logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot initialize hardware")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := newDaemon(ctx, hw, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot build dependencies")
	}

	evtHook := &supervisor.EventHook{
		Notifier: d.notifier,
		Logger:   component(logger, "supervisor"),
	}

	/*
		How the supervisor tree is structured:

								rootSupervisor
								+     +     +
								|     |     |
			backgroundSupervisor    |     +  gRPCSupervisor
			+ +                     |           +
			| +-> notifier          |           +-> gRPCServer
			+---> powerState        |
									+  coreSupervisor
										+ +
										| +-> thermalListener
										+---> controller

		The thermal listener forwards firmware events into the power mode
		listener, the controller reacts to settled changes, power events and
		configuration reloads.
	*/

	backgroundSupervisor := suture.New("backgroundSupervisor", suture.Spec{})
	backgroundSupervisor.Add(d.notifier)
	backgroundSupervisor.Add(d.stateListener)

	coreSupervisor := suture.New("coreSupervisor", suture.Spec{})
	coreSupervisor.Add(d.thermalListener)
	coreSupervisor.Add(d.controller)

	grpcSupervisor := suture.New("gRPCSupervisor", suture.Spec{})
	grpcSupervisor.Add(d.grpc)

	rootSupervisor := suture.New("Supervisor", suture.Spec{
		EventHook: evtHook.Event,
	})
	rootSupervisor.Add(backgroundSupervisor)
	rootSupervisor.Add(coreSupervisor)
	rootSupervisor.Add(grpcSupervisor)

	sigc := make(chan os.Signal, 1)

	go func() {
		d.notifier.Publish(util.Notification{
			Title:   "LegionManager",
			Message: "Starting up LegionManager",
			Delay:   time.Second * 2,
		})
		if err := rootSupervisor.Serve(ctx); err != nil {
			logger.Error().Err(err).Msg("rootSupervisor returns error")
			sigc <- syscall.SIGTERM
		}
	}()

	signal.Notify(
		sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	sig := <-sigc
	logger.Info().Str("signal", sig.String()).Msg("signal received")

	cancel()
	time.Sleep(time.Second) // 1 second for grace period
	d.Close(logger)
}
