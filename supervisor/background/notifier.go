package background

import (
	"context"
	"time"

	"github.com/legion-tools/LegionManager/util"

	"github.com/rs/zerolog"
)

const (
	appName      = "LegionManager"
	defaultDelay = time.Millisecond * 2500
)

// Notifier drains notifications into toasts. Where toasts are not available
// the notification is logged instead.
type Notifier struct {
	C chan util.Notification

	send   func(appName string, n util.Notification) error
	logger zerolog.Logger
}

func NewNotifier(logger zerolog.Logger) *Notifier {
	return &Notifier{
		C:      make(chan util.Notification, 10),
		send:   util.SendToastNotification,
		logger: logger,
	}
}

// Publish queues n without blocking. Notifications are dropped while the
// queue is full.
func (n *Notifier) Publish(msg util.Notification) {
	select {
	case n.C <- msg:
	default:
		n.logger.Warn().Str("type", msg.Type.String()).Msg("notification queue is full, dropping notification")
	}
}

func (n *Notifier) Serve(haltCtx context.Context) error {
	n.logger.Info().Msg("starting notify loop")

	for {
		select {
		case msg := <-n.C:
			if msg.Delay == time.Duration(0) {
				msg.Delay = defaultDelay
			}
			if err := n.send(appName, msg); err != nil {
				n.logger.Info().
					Str("type", msg.Type.String()).
					Str("title", msg.Title).
					Str("arg", msg.Arg).
					AnErr("toast", err).
					Msg(msg.Message)
			}
		case <-haltCtx.Done():
			n.logger.Info().Msg("exiting notify loop")
			return nil
		}
	}
}

func (n *Notifier) String() string {
	return "Notifier"
}
