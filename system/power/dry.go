package power

import (
	"context"
	"strings"
	"sync"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/rs/zerolog"
)

const dryPowerCfgList = `
Existing Power Schemes (* Active)
-----------------------------------
Power Scheme GUID: 381b4222-f694-41f0-9685-ff5bb260df2e  (Balanced) *
Power Scheme GUID: 8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c  (High performance)
Power Scheme GUID: a1841308-3541-4fab-bc81-f71556f20b4a  (Power saver)
`

// DryRunner answers powercfg with the stock Windows power plans and logs
// every other command instead of running it
func DryRunner(logger zerolog.Logger) Runner {
	return func(ctx context.Context, command string, args ...string) ([]byte, error) {
		if command == "powercfg" && len(args) > 0 && strings.EqualFold(args[0], "/l") {
			return []byte(dryPowerCfgList), nil
		}
		logger.Info().Str("command", command).Strs("args", args).Msg("[dry run] command skipped")
		return nil, nil
	}
}

// DryStatusReader reports a fixed power supply status until told otherwise
type DryStatusReader struct {
	mu     sync.Mutex
	status Status
}

var _ StatusReader = &DryStatusReader{}

// NewDryStatusReader starts on AC power with a full battery
func NewDryStatusReader() *DryStatusReader {
	return &DryStatusReader{
		status: Status{
			Adapter:        powermode.AdapterConnected,
			BatteryPercent: 100,
		},
	}
}

func (d *DryStatusReader) Status(ctx context.Context) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.status, nil
}

// Set changes the reported status
func (d *DryStatusReader) Set(status Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = status
}
