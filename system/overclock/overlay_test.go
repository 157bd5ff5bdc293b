package overclock

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeCPU struct {
	writes []bool
	err    error
}

func (f *fakeCPU) SetCPUOverclock(ctx context.Context, enabled bool) error {
	f.writes = append(f.writes, enabled)
	return f.err
}

type fakeVendor struct {
	vendor string
	err    error
}

func (f *fakeVendor) CPUVendor(ctx context.Context) (string, error) {
	return f.vendor, f.err
}

type failingSetter struct {
	calls int
}

func (f *failingSetter) SetOffsets(ctx context.Context, o Offsets) error {
	f.calls++
	return errors.New("nvml: not supported")
}

func (f *failingSetter) Close() error { return nil }

func newTestOverlay(t *testing.T, vendor *fakeVendor, setter ClockSetter) (*Overlay, *fakeCPU, *GPUController) {
	cpu := &fakeCPU{}
	gpu, err := NewGPUController(GPUConfig{
		Setter: setter,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	o, err := NewOverlay(Config{
		CPU:    cpu,
		GPU:    gpu,
		Vendor: vendor,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	return o, cpu, gpu
}

func TestOverlayIntel(t *testing.T) {
	setter := NewDryClockSetter(zerolog.Nop())
	o, cpu, gpu := newTestOverlay(t, &fakeVendor{vendor: "GenuineIntel"}, setter)

	o.Enter(context.Background())
	require.Equal(t, []bool{true}, cpu.writes)
	require.Equal(t, GPUState{Enabled: true, Offsets: Offsets{Core: 50, Memory: 100}}, gpu.State())
	last, _ := setter.Last()
	require.Equal(t, ExtremeOffsets, last)

	o.Exit(context.Background())
	require.Equal(t, []bool{true, false}, cpu.writes)
	require.Equal(t, GPUState{}, gpu.State())
	last, writes := setter.Last()
	require.Equal(t, ZeroOffsets, last)
	require.Equal(t, 2, writes)
}

func TestOverlayAMD(t *testing.T) {
	for _, vendor := range []string{"AuthenticAMD", "Advanced Micro Devices, Inc.", "amd"} {
		t.Run(vendor, func(t *testing.T) {
			setter := NewDryClockSetter(zerolog.Nop())
			o, cpu, _ := newTestOverlay(t, &fakeVendor{vendor: vendor}, setter)

			o.Enter(context.Background())
			o.Exit(context.Background())

			require.Empty(t, cpu.writes)
			_, writes := setter.Last()
			require.Equal(t, 2, writes)
		})
	}
}

func TestOverlayVendorProbeFailure(t *testing.T) {
	setter := NewDryClockSetter(zerolog.Nop())
	o, cpu, _ := newTestOverlay(t, &fakeVendor{err: errors.New("wmi timeout")}, setter)

	o.Enter(context.Background())
	require.Empty(t, cpu.writes)

	last, _ := setter.Last()
	require.Equal(t, ExtremeOffsets, last)
}

func TestOverlayIsBestEffort(t *testing.T) {
	setter := &failingSetter{}
	o, cpu, gpu := newTestOverlay(t, &fakeVendor{vendor: "GenuineIntel"}, setter)
	cpu.err = errors.New("firmware refused")

	require.NotPanics(t, func() {
		o.Enter(context.Background())
		o.Exit(context.Background())
	})
	require.Equal(t, []bool{true, false}, cpu.writes)
	require.Equal(t, 2, setter.calls)
	require.False(t, gpu.State().Enabled)
}

func TestOverlayReentry(t *testing.T) {
	setter := NewDryClockSetter(zerolog.Nop())
	o, _, gpu := newTestOverlay(t, &fakeVendor{vendor: "GenuineIntel"}, setter)
	ctx := context.Background()

	o.Enter(ctx)
	fresh := gpu.State()

	o.Enter(ctx)
	require.Equal(t, fresh, gpu.State())

	o.Exit(ctx)
	o.Enter(ctx)
	require.Equal(t, fresh, gpu.State())

	last, _ := setter.Last()
	require.Equal(t, ExtremeOffsets, last)
}

func TestIsAMD(t *testing.T) {
	require.True(t, IsAMD("AuthenticAMD"))
	require.True(t, IsAMD("Advanced Micro Devices"))
	require.False(t, IsAMD("GenuineIntel"))
	require.False(t, IsAMD(""))
}
