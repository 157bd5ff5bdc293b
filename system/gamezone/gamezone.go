package gamezone

import (
	"context"
)

// Interface is the Lenovo GameZone firmware interface. Raw power modes are
// the firmware values: 1 quiet, 2 balance, 3 performance, 255 custom.
type Interface interface {
	ReadRawMode(ctx context.Context) (int, error)
	WriteRawMode(ctx context.Context, raw int) error

	ProbeCPUOverclockSupport(ctx context.Context) (bool, error)
	ProbeGPUOverclockSupport(ctx context.Context) (bool, error)
	SetCPUOverclock(ctx context.Context, enabled bool) error

	SetFanTable(ctx context.Context, table []byte) error

	// ListenModeChanges delivers every raw mode reported by the firmware to
	// eventCh until haltCtx is done
	ListenModeChanges(haltCtx context.Context, eventCh chan<- int) error

	Close() error
}
