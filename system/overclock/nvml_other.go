//go:build !linux || !cgo

package overclock

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NewNVMLClockSetter is only available where the NVML loader is. Callers fall
// back to the DryClockSetter.
func NewNVMLClockSetter(logger zerolog.Logger) (ClockSetter, error) {
	return nil, errors.New("overclock: nvml clock setter is unavailable on this platform")
}
