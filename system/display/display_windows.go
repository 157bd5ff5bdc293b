package display

import (
	"context"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	libUser32                = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplaySettings  = libUser32.NewProc("EnumDisplaySettingsW")
	procChangeDisplaySetting = libUser32.NewProc("ChangeDisplaySettingsExW")
)

const (
	enumCurrentSettings = 0xFFFFFFFF
	dmDisplayFrequency  = 0x00400000
	cdsUpdateRegistry   = 0x00000001
	dispChangeSuccess   = 0
)

// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-devmodew
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	Position           [2]int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

// System controls the primary display through the Win32 display settings
type System struct {
	mu sync.Mutex
}

var _ Display = &System{}

func enumSettings(mode uint32) (*devMode, bool) {
	dm := &devMode{}
	dm.Size = uint16(unsafe.Sizeof(*dm))
	ret, _, _ := procEnumDisplaySettings.Call(0, uintptr(mode), uintptr(unsafe.Pointer(dm)))
	return dm, ret != 0
}

func (s *System) Supported(ctx context.Context) ([]RefreshRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := enumSettings(enumCurrentSettings)
	if !ok {
		return nil, errors.New("display: cannot read current display settings")
	}

	rates := make([]RefreshRate, 0, 4)
	for i := uint32(0); ; i++ {
		dm, ok := enumSettings(i)
		if !ok {
			break
		}
		// only rates of the current resolution and depth
		if dm.PelsWidth != current.PelsWidth || dm.PelsHeight != current.PelsHeight || dm.BitsPerPel != current.BitsPerPel {
			continue
		}
		rates = append(rates, RefreshRate(dm.DisplayFrequency))
	}
	return uniqueRates(rates), nil
}

func (s *System) Current(ctx context.Context) (RefreshRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := enumSettings(enumCurrentSettings)
	if !ok {
		return 0, errors.New("display: cannot read current display settings")
	}
	return RefreshRate(dm.DisplayFrequency), nil
}

func (s *System) SetCurrent(ctx context.Context, rate RefreshRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dm, ok := enumSettings(enumCurrentSettings)
	if !ok {
		return errors.New("display: cannot read current display settings")
	}
	dm.DisplayFrequency = uint32(rate)
	dm.Fields = dmDisplayFrequency

	ret, _, _ := procChangeDisplaySetting.Call(0, uintptr(unsafe.Pointer(dm)), 0, cdsUpdateRegistry, 0)
	if int32(ret) != dispChangeSuccess {
		return errors.Errorf("display: ChangeDisplaySettingsExW returned %d", int32(ret))
	}
	return nil
}
