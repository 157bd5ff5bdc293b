//go:build !windows

package power

import (
	"context"

	"github.com/rs/zerolog"
)

// SystemSuspendSource never reports suspend outside of windows
type SystemSuspendSource struct {
	Logger zerolog.Logger
}

var _ SuspendSource = &SystemSuspendSource{}

func (s *SystemSuspendSource) ListenSuspend(haltCtx context.Context, eventCh chan<- Event) error {
	s.Logger.Debug().Msg("suspend/resume notification is only available on windows")
	return nil
}
