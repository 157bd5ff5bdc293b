//go:build cgo

package overclock

import (
	"context"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// nvmlError represents an NVML-specific error
type nvmlError struct {
	op  string
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return e.op + ": " + nvml.ErrorString(e.ret)
}

func newNVMLError(op string, ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return &nvmlError{op: op, ret: ret}
}

// NVMLClockSetter writes VF curve offsets to the first NVIDIA GPU
type NVMLClockSetter struct {
	mu     sync.Mutex
	device nvml.Device
	logger zerolog.Logger
}

var _ ClockSetter = &NVMLClockSetter{}

// NewNVMLClockSetter initializes NVML and picks the discrete GPU
func NewNVMLClockSetter(logger zerolog.Logger) (ClockSetter, error) {
	if err := newNVMLError("init", nvml.Init()); err != nil {
		return nil, errors.Wrap(err, "overclock: cannot initialize nvml")
	}

	count, ret := nvml.DeviceGetCount()
	if err := newNVMLError("device count", ret); err != nil {
		nvml.Shutdown()
		return nil, errors.Wrap(err, "overclock: cannot enumerate gpus")
	}
	if count == 0 {
		nvml.Shutdown()
		return nil, errors.New("overclock: no nvidia gpu found")
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if err := newNVMLError("device handle", ret); err != nil {
		nvml.Shutdown()
		return nil, errors.Wrap(err, "overclock: cannot open gpu")
	}

	name, _ := device.GetName()
	logger.Info().Str("gpu", name).Msg("nvml initialized")

	return &NVMLClockSetter{
		device: device,
		logger: logger,
	}, nil
}

func (n *NVMLClockSetter) SetOffsets(ctx context.Context, o Offsets) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := newNVMLError("set core offset", n.device.SetGpcClkVfOffset(o.Core)); err != nil {
		return err
	}
	return newNVMLError("set memory offset", n.device.SetMemClkVfOffset(o.Memory))
}

func (n *NVMLClockSetter) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return newNVMLError("shutdown", nvml.Shutdown())
}
