package gamezone

import (
	"context"

	"github.com/bi-zone/wmi"
	"github.com/pkg/errors"
)

type smartFanModeEvent struct {
	Mode         uint32
	InstanceName string
	TIME_CREATED uint64
}

// ListenModeChanges subscribes to the firmware notification raised on every
// power mode change, whether from Fn+Q or from SetSmartFanMode
func (w *WMI) ListenModeChanges(haltCtx context.Context, eventCh chan<- int) error {
	ch := make(chan smartFanModeEvent)
	q, err := wmi.NewNotificationQuery(ch, `SELECT * FROM LENOVO_GAMEZONE_SMART_FAN_MODE_EVENT`)
	if err != nil {
		return errors.Wrap(err, "gamezone: cannot create notification query")
	}
	q.SetConnectServerArgs(nil, namespace)

	go func() {
		if err := q.StartNotifications(); err != nil {
			w.logger.Error().Err(err).Msg("smart fan mode notifications stopped")
		}
	}()

	go func() {
		for {
			select {
			case ev := <-ch:
				select {
				case eventCh <- int(ev.Mode):
				case <-haltCtx.Done():
					q.Stop()
					return
				}
			case <-haltCtx.Done():
				q.Stop()
				return
			}
		}
	}()

	return nil
}
