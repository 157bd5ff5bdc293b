package power

import (
	"context"
	"unsafe"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	libKernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemPowerStatus = libKernel32.NewProc("GetSystemPowerStatus")
)

// https://learn.microsoft.com/en-us/windows/win32/api/winbase/ns-winbase-system_power_status
type systemPowerStatus struct {
	ACLineStatus        byte
	BatteryFlag         byte
	BatteryLifePercent  byte
	SystemStatusFlag    byte
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

const (
	acLineOffline = 0
	acLineOnline  = 1
	unknownByte   = 255
)

// SystemStatusReader calls GetSystemPowerStatus
type SystemStatusReader struct{}

var _ StatusReader = SystemStatusReader{}

func (SystemStatusReader) Status(ctx context.Context) (Status, error) {
	var s systemPowerStatus
	ret, _, err := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&s)))
	if ret == 0 {
		return Status{}, errors.Wrap(err, "power: GetSystemPowerStatus failed")
	}

	status := Status{
		Adapter:        powermode.AdapterDisconnected,
		BatteryPercent: int(s.BatteryLifePercent),
	}
	if s.ACLineStatus == acLineOnline {
		status.Adapter = powermode.AdapterConnected
	}
	if s.BatteryLifePercent == unknownByte {
		status.BatteryPercent = -1
	}
	return status, nil
}
