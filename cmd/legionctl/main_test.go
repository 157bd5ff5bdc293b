package main

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/legion-tools/LegionManager/rpc/protocol"
	"github.com/legion-tools/LegionManager/rpc/server"
	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeFeature struct {
	mode powermode.Mode
}

func (f *fakeFeature) AllowedModes(ctx context.Context) ([]powermode.Mode, error) {
	return []powermode.Mode{powermode.Quiet, powermode.Balance, powermode.Performance}, nil
}

func (f *fakeFeature) EffectiveState(ctx context.Context) (powermode.Mode, error) {
	return f.mode, nil
}

func (f *fakeFeature) SetState(ctx context.Context, req powermode.TransitionRequest) error {
	if req.Target == powermode.Performance && !req.OnBatteryAllowed {
		return &powermode.BatteryRestrictionError{Mode: req.Target}
	}
	f.mode = req.Target
	return nil
}

func newClient(t *testing.T) protocol.PowerModeClient {
	t.Helper()

	srv, err := server.NewPowerModeServer(server.PowerModeConfig{
		Feature: &fakeFeature{mode: powermode.Balance},
		Version: "0.3.0",
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	protocol.RegisterPowerModeServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cc.Close()
	})
	return protocol.NewPowerModeClient(cc)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	var out strings.Builder
	require.NoError(t, execute(ctx, &out, client, options{}, "0.3.0", []string{"list"}))
	require.Equal(t, "quiet\nbalance\nperformance\n", out.String())

	out.Reset()
	require.NoError(t, execute(ctx, &out, client, options{}, "0.3.0", []string{"set", "quiet"}))
	require.Equal(t, "power mode set to quiet\n", out.String())

	out.Reset()
	require.NoError(t, execute(ctx, &out, client, options{}, "0.3.0", []string{"get"}))
	require.Equal(t, "quiet\n", out.String())

	require.Error(t, execute(ctx, &out, client, options{}, "0.3.0", []string{"set"}))
	require.Error(t, execute(ctx, &out, client, options{}, "0.3.0", []string{"reboot"}))
}

func TestExecuteBatteryOverride(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	var out strings.Builder
	err := execute(ctx, &out, client, options{}, "0.3.0", []string{"set", "performance"})
	require.Error(t, err)
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
	require.Contains(t, explain(err), "--force")

	require.NoError(t, execute(ctx, &out, client, options{force: true}, "0.3.0", []string{"set", "performance"}))
	require.Equal(t, "power mode set to performance\n", out.String())
}
