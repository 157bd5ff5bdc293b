package power

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	libPowrProf                  = windows.NewLazySystemDLL("powrprof.dll")
	powerSetActiveOverlayScheme  = libPowrProf.NewProc("PowerSetActiveOverlayScheme")
	powerRegisterSuspendResume   = libPowrProf.NewProc("PowerRegisterSuspendResumeNotification")
	powerUnregisterSuspendResume = libPowrProf.NewProc("PowerUnregisterSuspendResumeNotification")
)

// SystemOverlaySetter calls PowerSetActiveOverlayScheme
type SystemOverlaySetter struct{}

var _ OverlaySetter = SystemOverlaySetter{}

func (SystemOverlaySetter) SetActiveOverlay(guid string) error {
	g, err := windows.GUIDFromString("{" + guid + "}")
	if err != nil {
		return errors.Wrapf(err, "power: invalid overlay guid %s", guid)
	}
	if err := powerSetActiveOverlayScheme.Find(); err != nil {
		return errors.Wrap(err, "power: overlay schemes are not supported")
	}
	// the x64 ABI passes the 16 byte GUID by reference
	ret, _, _ := powerSetActiveOverlayScheme.Call(uintptr(unsafe.Pointer(&g)))
	if ret != 0 {
		return errors.Errorf("power: PowerSetActiveOverlayScheme returned %d", ret)
	}
	return nil
}
