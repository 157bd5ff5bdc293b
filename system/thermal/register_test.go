package thermal

import (
	"context"
	"testing"
	"time"

	"github.com/legion-tools/LegionManager/system/gamezone"
	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type failingHardware struct{}

func (failingHardware) ReadRawMode(ctx context.Context) (int, error) { return 2, nil }
func (failingHardware) WriteRawMode(ctx context.Context, raw int) error {
	return errors.New("access denied")
}

func newTestRegister(t *testing.T, hw RawRegister) (*Register, *time.Time) {
	r, err := NewRegister(RegisterConfig{
		Hardware: hw,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestSelfWriteIsClassifiedOnce(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegister(t, gamezone.NewDry(gamezone.DryConfig{Logger: zerolog.Nop()}))

	require.NoError(t, r.WriteRawMode(ctx, 3, powermode.OriginSelf))
	require.Equal(t, 1, r.Pending())

	require.Equal(t, powermode.OriginSelf, r.Classify(3))
	require.Equal(t, powermode.OriginExternal, r.Classify(3))
	require.Zero(t, r.Pending())
}

func TestExternalWriteIsNotTagged(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegister(t, gamezone.NewDry(gamezone.DryConfig{Logger: zerolog.Nop()}))

	require.NoError(t, r.WriteRawMode(ctx, 1, powermode.OriginExternal))
	require.Zero(t, r.Pending())
	require.Equal(t, powermode.OriginExternal, r.Classify(1))
}

func TestTagOnlyMatchesItsValue(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegister(t, gamezone.NewDry(gamezone.DryConfig{Logger: zerolog.Nop()}))

	require.NoError(t, r.WriteRawMode(ctx, 2, powermode.OriginSelf))
	require.NoError(t, r.WriteRawMode(ctx, 3, powermode.OriginSelf))

	// hotkey to quiet while our writes are in flight
	require.Equal(t, powermode.OriginExternal, r.Classify(1))
	require.Equal(t, powermode.OriginSelf, r.Classify(2))
	require.Equal(t, powermode.OriginSelf, r.Classify(3))
}

func TestTagExpires(t *testing.T) {
	ctx := context.Background()
	r, now := newTestRegister(t, gamezone.NewDry(gamezone.DryConfig{Logger: zerolog.Nop()}))

	require.NoError(t, r.WriteRawMode(ctx, 3, powermode.OriginSelf))
	*now = now.Add(DefaultTagTTL + time.Millisecond)

	require.Zero(t, r.Pending())
	require.Equal(t, powermode.OriginExternal, r.Classify(3))
}

func TestFailedWriteDropsTag(t *testing.T) {
	r, _ := newTestRegister(t, failingHardware{})

	require.Error(t, r.WriteRawMode(context.Background(), 3, powermode.OriginSelf))
	require.Zero(t, r.Pending())
}
