package server

import (
	"context"
	"time"

	"github.com/legion-tools/LegionManager/rpc/protocol"
	"github.com/legion-tools/LegionManager/system/history"
	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultHistorySize is used when History is called without a size
const DefaultHistorySize = 10

// ModeController is the power mode feature as seen by the service
type ModeController interface {
	AllowedModes(ctx context.Context) ([]powermode.Mode, error)
	EffectiveState(ctx context.Context) (powermode.Mode, error)
	SetState(ctx context.Context, req powermode.TransitionRequest) error
}

// HistoryReader returns the most recent transitions
type HistoryReader interface {
	Recent(ctx context.Context, n int) ([]history.Entry, error)
}

// PowerModeConfig contains the dependencies of the PowerModeServer
type PowerModeConfig struct {
	Feature ModeController
	History HistoryReader // optional
	Version string
	Logger  zerolog.Logger
}

// PowerModeServer implements the legion.PowerMode service over the power mode feature
type PowerModeServer struct {
	protocol.UnimplementedPowerModeServer

	conf PowerModeConfig
}

var _ protocol.PowerModeServer = &PowerModeServer{}

// NewPowerModeServer validates the configuration and returns the service
func NewPowerModeServer(conf PowerModeConfig) (*PowerModeServer, error) {
	if conf.Feature == nil {
		return nil, errors.New("nil Feature is invalid")
	}
	if _, err := semver.NewVersion(conf.Version); err != nil {
		return nil, errors.Wrapf(err, "invalid version %q", conf.Version)
	}
	return &PowerModeServer{
		conf: conf,
	}, nil
}

func (p *PowerModeServer) GetMode(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	mode, err := p.conf.Feature.EffectiveState(ctx)
	if err != nil {
		return nil, p.toStatus(err)
	}
	return wrapperspb.String(mode.String()), nil
}

func (p *PowerModeServer) ListModes(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	modes, err := p.conf.Feature.AllowedModes(ctx)
	if err != nil {
		return nil, p.toStatus(err)
	}
	out := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, len(modes)),
	}
	for _, m := range modes {
		out.Values = append(out.Values, structpb.NewStringValue(m.String()))
	}
	return out, nil
}

func (p *PowerModeServer) SetMode(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "nil request is invalid")
	}
	fields := req.GetFields()
	mode, err := powermode.ParseMode(fields["mode"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	force := fields["force"].GetBoolValue()

	p.conf.Logger.Info().
		Str("mode", mode.String()).
		Bool("force", force).
		Msg("power mode requested over rpc")

	err = p.conf.Feature.SetState(ctx, powermode.TransitionRequest{
		Target:           mode,
		OnBatteryAllowed: force,
	})
	if err != nil {
		return nil, p.toStatus(err)
	}

	effective, err := p.conf.Feature.EffectiveState(ctx)
	if err != nil {
		return nil, p.toStatus(err)
	}
	return wrapperspb.String(effective.String()), nil
}

func (p *PowerModeServer) History(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	if p.conf.History == nil {
		return nil, status.Error(codes.Unavailable, "transition history is disabled")
	}
	n := int(req.GetValue())
	if n <= 0 {
		n = DefaultHistorySize
	}
	entries, err := p.conf.History.Recent(ctx, n)
	if err != nil {
		return nil, p.toStatus(err)
	}

	out := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, len(entries)),
	}
	for _, e := range entries {
		s := &structpb.Struct{
			Fields: map[string]*structpb.Value{
				"mode":   structpb.NewStringValue(e.Mode.String()),
				"origin": structpb.NewStringValue(e.Origin.String()),
				"at":     structpb.NewStringValue(e.At.Format(time.RFC3339)),
			},
		}
		out.Values = append(out.Values, structpb.NewStructValue(s))
	}
	return out, nil
}

func (p *PowerModeServer) GetVersion(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(p.conf.Version), nil
}

func (p *PowerModeServer) toStatus(err error) error {
	if powermode.IsUnsupportedMode(err) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if _, ok := powermode.IsBatteryRestricted(err); ok {
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	p.conf.Logger.Error().Err(err).Msg("power mode request failed")
	return status.Error(codes.Internal, err.Error())
}

// CheckVersion returns an error if the daemon runs a different major version
// than the client
func CheckVersion(client, daemon string) error {
	c, err := semver.NewVersion(client)
	if err != nil {
		return errors.Wrapf(err, "invalid client version %q", client)
	}
	d, err := semver.NewVersion(daemon)
	if err != nil {
		return errors.Wrapf(err, "invalid daemon version %q", daemon)
	}
	if c.Major() != d.Major() {
		return errors.Errorf("daemon version %s is incompatible with client version %s", d, c)
	}
	return nil
}
