package power

import (
	"context"

	"github.com/legion-tools/LegionManager/system/powermode"
)

// Status is a snapshot of the power supply
type Status struct {
	Adapter        powermode.AdapterStatus
	BatteryPercent int // -1 when unknown
}

// StatusReader reads the power supply status
type StatusReader interface {
	Status(ctx context.Context) (Status, error)
}

// Source adapts a StatusReader to powermode.PowerSource
type Source struct {
	Reader StatusReader
}

var _ powermode.PowerSource = &Source{}

func (s *Source) AdapterStatus(ctx context.Context) (powermode.AdapterStatus, error) {
	status, err := s.Reader.Status(ctx)
	if err != nil {
		return powermode.AdapterDisconnected, err
	}
	return status.Adapter, nil
}
