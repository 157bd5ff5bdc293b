package thermal

import (
	"context"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ChangeSource delivers raw power modes reported by the firmware
type ChangeSource interface {
	ListenModeChanges(haltCtx context.Context, eventCh chan<- int) error
}

// RawChangeHandler receives the external changes, usually powermode.Listener
type RawChangeHandler interface {
	OnRawChanged(ctx context.Context, raw int) error
}

// ListenerConfig contains the collaborators of the Listener
type ListenerConfig struct {
	Source   ChangeSource
	Register *Register
	Handler  RawChangeHandler
	Logger   zerolog.Logger
}

// Listener forwards firmware power mode changes that we did not cause
type Listener struct {
	ListenerConfig
}

// NewListener returns a Listener to be run under a supervisor
func NewListener(conf ListenerConfig) (*Listener, error) {
	if conf.Source == nil {
		return nil, errors.New("nil Source is invalid")
	}
	if conf.Register == nil {
		return nil, errors.New("nil Register is invalid")
	}
	if conf.Handler == nil {
		return nil, errors.New("nil Handler is invalid")
	}
	return &Listener{
		ListenerConfig: conf,
	}, nil
}

// Serve satisfies suture.Service
func (l *Listener) Serve(haltCtx context.Context) error {
	eventCh := make(chan int)
	if err := l.Source.ListenModeChanges(haltCtx, eventCh); err != nil {
		return errors.Wrap(err, "thermal: cannot listen to power mode changes")
	}

	l.Logger.Info().Msg("listening to firmware power mode changes")

	for {
		select {
		case raw := <-eventCh:
			l.handle(haltCtx, raw)
		case <-haltCtx.Done():
			l.Logger.Info().Msg("exiting thermal listener loop")
			return nil
		}
	}
}

func (l *Listener) handle(ctx context.Context, raw int) {
	if l.Register.Classify(raw) == powermode.OriginSelf {
		l.Logger.Debug().Int("raw", raw).Msg("dropping event of our own write")
		return
	}
	if err := l.Handler.OnRawChanged(ctx, raw); err != nil {
		l.Logger.Error().Err(err).Int("raw", raw).Msg("cannot handle power mode change")
	}
}

func (l *Listener) String() string {
	return "ThermalListener"
}
