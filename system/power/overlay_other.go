//go:build !windows

package power

import "github.com/pkg/errors"

// SystemOverlaySetter is only available on windows
type SystemOverlaySetter struct{}

var _ OverlaySetter = SystemOverlaySetter{}

func (SystemOverlaySetter) SetActiveOverlay(guid string) error {
	return errors.New("power: overlay schemes are only available on windows")
}
