package power

import (
	"context"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// adapted from https://golang.org/src/runtime/os_windows.go

// Defines the type of event
const (
	PBT_APMSUSPEND         uint32 = 4
	PBT_APMRESUMESUSPEND   uint32 = 7
	PBT_APMRESUMEAUTOMATIC uint32 = 18
)

// SystemSuspendSource registers for PowerSuspendResumeNotification
type SystemSuspendSource struct {
	Logger zerolog.Logger
}

var _ SuspendSource = &SystemSuspendSource{}

func (s *SystemSuspendSource) ListenSuspend(haltCtx context.Context, eventCh chan<- Event) error {
	const (
		_DEVICE_NOTIFY_CALLBACK = 2
	)
	type _DEVICE_NOTIFY_SUBSCRIBE_PARAMETERS struct {
		callback uintptr
		context  uintptr
	}

	var fn interface{} = func(context uintptr, changeType uint32, setting uintptr) uintptr {
		var evt Event
		switch changeType {
		case PBT_APMSUSPEND:
			evt = EventSuspend
		case PBT_APMRESUMEAUTOMATIC:
			evt = EventResume
		default:
			// PBT_APMRESUMESUSPEND follows PBT_APMRESUMEAUTOMATIC when a user is present
			return 0
		}
		// the callback runs on a system thread, never block it
		go func() {
			select {
			case eventCh <- evt:
			case <-haltCtx.Done():
			}
		}()
		return 0
	}

	params := &_DEVICE_NOTIFY_SUBSCRIBE_PARAMETERS{
		callback: windows.NewCallback(fn),
	}
	handle := uintptr(0)

	s.Logger.Info().Msg("registering suspend/resume notification")
	ret, _, err := powerRegisterSuspendResume.Call(
		_DEVICE_NOTIFY_CALLBACK,
		uintptr(unsafe.Pointer(params)),
		uintptr(unsafe.Pointer(&handle)),
	)
	if ret != 0 {
		return errors.Wrap(err, "power: cannot register suspend/resume notification")
	}

	go func() {
		<-haltCtx.Done()
		s.Logger.Info().Msg("unregistering suspend/resume notification")
		ret, _, err := powerUnregisterSuspendResume.Call(handle)
		if ret != 0 {
			s.Logger.Warn().Err(err).Msg("unable to unregister suspend/resume notification")
		}
		// keep the parameters alive as long as the registration
		_ = params
	}()

	return nil
}
