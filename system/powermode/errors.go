package powermode

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnsupportedModeError is returned when the requested mode is not allowed on
// this machine.
type UnsupportedModeError struct {
	Mode Mode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported power mode %s", e.Mode)
}

// BatteryRestrictionError is returned when a mode that needs the power adapter
// is requested on battery without override. Mode is the attempted mode, so the
// caller can offer to apply it anyway.
type BatteryRestrictionError struct {
	Mode Mode
}

func (e *BatteryRestrictionError) Error() string {
	return fmt.Sprintf("power mode %s is unavailable without the power adapter", e.Mode)
}

// IsUnsupportedMode reports whether err is, or wraps, an UnsupportedModeError
func IsUnsupportedMode(err error) bool {
	var target *UnsupportedModeError
	return errors.As(err, &target)
}

// IsBatteryRestricted returns the attempted mode if err is, or wraps, a
// BatteryRestrictionError.
func IsBatteryRestricted(err error) (Mode, bool) {
	var target *BatteryRestrictionError
	if errors.As(err, &target) {
		return target.Mode, true
	}
	return 0, false
}
