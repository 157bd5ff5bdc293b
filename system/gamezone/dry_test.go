package gamezone

import (
	"context"
	"testing"
	"time"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDryRaisesEventOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDry(DryConfig{Logger: zerolog.Nop()})
	ch := make(chan int)
	require.NoError(t, d.ListenModeChanges(ctx, ch))

	require.NoError(t, d.WriteRawMode(ctx, 3))
	d.PressHotkey(1)

	for _, expected := range []int{3, 1} {
		select {
		case raw := <-ch:
			require.Equal(t, expected, raw)
		case <-time.After(time.Second):
			t.Fatal("event not raised")
		}
	}

	raw, err := d.ReadRawMode(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, raw)
	require.Equal(t, []int{3}, d.Writes())
}

func TestDryRejectsInvalidRaw(t *testing.T) {
	d := NewDry(DryConfig{Logger: zerolog.Nop()})
	require.Error(t, d.WriteRawMode(context.Background(), 4))
	require.Empty(t, d.Writes())
}

func TestDryClosed(t *testing.T) {
	d := NewDry(DryConfig{Logger: zerolog.Nop()})
	require.NoError(t, d.Close())
	require.Error(t, d.ListenModeChanges(context.Background(), make(chan int)))
}

func TestDryOverclock(t *testing.T) {
	ctx := context.Background()
	d := NewDry(DryConfig{CPUOverclock: true, Logger: zerolog.Nop()})

	cpu, err := d.ProbeCPUOverclockSupport(ctx)
	require.NoError(t, err)
	require.True(t, cpu)

	gpu, err := d.ProbeGPUOverclockSupport(ctx)
	require.NoError(t, err)
	require.False(t, gpu)

	require.NoError(t, d.SetCPUOverclock(ctx, true))
	require.True(t, d.CPUOverclock())

	require.NoError(t, d.SetFanTable(ctx, []byte{1, 2}))
	require.Equal(t, []byte{1, 2}, d.FanTable())
}

type countingModel struct {
	calls int
}

func (c *countingModel) Model(ctx context.Context) (string, error) {
	c.calls++
	return "Legion Pro 7 16IAX10H", nil
}

func TestCapabilitiesMemoized(t *testing.T) {
	flagCalls := 0
	model := &countingModel{}
	c, err := NewCapabilities(CapabilitiesConfig{
		Flags: func() powermode.Capabilities {
			flagCalls++
			return powermode.Capabilities{SupportsGodMode: true}
		},
		Model:  model,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		caps, err := c.Capabilities(context.Background())
		require.NoError(t, err)
		require.True(t, caps.SupportsGodMode)
	}
	require.Equal(t, 1, flagCalls)
	require.Equal(t, 1, model.calls)

	_, err = NewCapabilities(CapabilitiesConfig{})
	require.Error(t, err)
}
