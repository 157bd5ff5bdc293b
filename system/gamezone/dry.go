package gamezone

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DryConfig describes the simulated machine
type DryConfig struct {
	InitialRaw   int
	CPUOverclock bool
	GPUOverclock bool
	Logger       zerolog.Logger
}

// Dry simulates the firmware in memory. Like the real firmware, every write
// of the power mode is reported back as a change event.
type Dry struct {
	DryConfig

	mu          sync.Mutex
	raw         int
	cpuOC       bool
	fanTable    []byte
	writes      []int
	subscribers []chan int
	closed      bool
}

// eventQueueSize bounds the events buffered for a slow listener
const eventQueueSize = 64

var _ Interface = &Dry{}

// NewDry returns a simulated GameZone interface
func NewDry(conf DryConfig) *Dry {
	if conf.InitialRaw == 0 {
		conf.InitialRaw = 2
	}
	conf.Logger.Info().Msg("[dry run] gamezone: simulating firmware without wmi IOs")
	return &Dry{
		DryConfig: conf,
		raw:       conf.InitialRaw,
	}
}

func (d *Dry) ReadRawMode(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.raw, nil
}

func (d *Dry) WriteRawMode(ctx context.Context, raw int) error {
	switch raw {
	case 1, 2, 3, 255:
	default:
		return errors.Errorf("gamezone: invalid raw power mode %d", raw)
	}

	d.mu.Lock()
	d.raw = raw
	d.writes = append(d.writes, raw)
	d.mu.Unlock()

	d.Logger.Debug().Int("raw", raw).Msg("[dry run] gamezone: SetSmartFanMode")
	d.raise(raw)
	return nil
}

// PressHotkey simulates Fn+Q: the firmware changes mode on its own
func (d *Dry) PressHotkey(raw int) {
	d.mu.Lock()
	d.raw = raw
	d.mu.Unlock()

	d.raise(raw)
}

// Writes returns every raw mode written so far
func (d *Dry) Writes() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]int(nil), d.writes...)
}

// CPUOverclock reports the simulated CPU overclock status
func (d *Dry) CPUOverclock() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.cpuOC
}

// FanTable returns the last fan table written
func (d *Dry) FanTable() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]byte(nil), d.fanTable...)
}

// raise queues the event for every listener without blocking the writer, as
// the firmware does
func (d *Dry) raise(raw int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	for _, q := range d.subscribers {
		select {
		case q <- raw:
		default:
			d.Logger.Warn().Int("raw", raw).Msg("[dry run] gamezone: listener is too slow, event dropped")
		}
	}
}

func (d *Dry) ProbeCPUOverclockSupport(ctx context.Context) (bool, error) {
	return d.DryConfig.CPUOverclock, nil
}

func (d *Dry) ProbeGPUOverclockSupport(ctx context.Context) (bool, error) {
	return d.DryConfig.GPUOverclock, nil
}

func (d *Dry) SetCPUOverclock(ctx context.Context, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Logger.Debug().Bool("enabled", enabled).Msg("[dry run] gamezone: SetCpuOCStatus")
	d.cpuOC = enabled
	return nil
}

func (d *Dry) SetFanTable(ctx context.Context, table []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Logger.Debug().Int("length", len(table)).Msg("[dry run] gamezone: Fan_Set_Table")
	d.fanTable = append([]byte(nil), table...)
	return nil
}

func (d *Dry) ListenModeChanges(haltCtx context.Context, eventCh chan<- int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("gamezone: interface is closed")
	}

	q := make(chan int, eventQueueSize)
	d.subscribers = append(d.subscribers, q)

	go func() {
		for {
			select {
			case raw := <-q:
				select {
				case eventCh <- raw:
				case <-haltCtx.Done():
					return
				}
			case <-haltCtx.Done():
				return
			}
		}
	}()
	return nil
}

// Close stops raising events
func (d *Dry) Close() error {
	d.mu.Lock()
	d.closed = true
	d.subscribers = nil
	d.mu.Unlock()
	return nil
}
