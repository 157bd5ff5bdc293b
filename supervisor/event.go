package supervisor

import (
	"fmt"

	"github.com/legion-tools/LegionManager/util"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Publisher is where crash notifications go
type Publisher interface {
	Publish(n util.Notification)
}

// EventHook logs supervisor events and tells the user when a service crashed
type EventHook struct {
	Notifier Publisher
	Logger   zerolog.Logger
}

func (e *EventHook) Event(evt suture.Event) {
	defer func() {
		if err := recover(); err != nil {
			e.Logger.Error().Interface("panic", err).Msg("event hook panic")
		}
	}()

	m := evt.Map()
	e.Logger.Info().
		Fields(m).
		Msg(evt.String())

	switch evt.Type() {
	case suture.EventTypeServiceTerminate, suture.EventTypeServicePanic:
		name, _ := m["service_name"].(string)
		e.Notifier.Publish(util.Notification{
			Type:    util.NotifyServiceCrash,
			Title:   "LegionManager",
			Message: fmt.Sprintf("%s crashed unexpectedly, restarting...", name),
			Arg:     name,
		})
	}
}
