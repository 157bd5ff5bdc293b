package supervisor

import (
	"context"
	"net"

	"github.com/legion-tools/LegionManager/rpc/protocol"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"google.golang.org/grpc"
)

// GRPCRunConfig contains the dependencies of the gRPC server
type GRPCRunConfig struct {
	Address   string
	PowerMode protocol.PowerModeServer
	Logger    zerolog.Logger
}

// Server serves the control API to legionctl
type Server struct {
	server  *grpc.Server
	address string
	logger  zerolog.Logger
}

func NewGRPCServer(conf GRPCRunConfig) (*Server, error) {
	if conf.Address == "" {
		return nil, errors.New("empty listen address is invalid")
	}
	if conf.PowerMode == nil {
		return nil, errors.New("nil PowerMode is invalid")
	}

	s := grpc.NewServer()
	protocol.RegisterPowerModeServer(s, conf.PowerMode)

	return &Server{
		server:  s,
		address: conf.Address,
		logger:  conf.Logger,
	}, nil
}

func (s *Server) Serve(haltCtx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		s.logger.Error().Err(err).Str("address", s.address).Msg("failed to listen for connections")
		// If we cannot start gRPC Server, kill the entire tree
		return errors.Wrap(suture.ErrTerminateSupervisorTree, "[gRPCServer] failed to listen for connections")
	}

	go func() {
		<-haltCtx.Done()
		s.logger.Info().Msg("stopping grpc server")
		s.server.GracefulStop()
		s.logger.Info().Msg("grpc server stopped")
	}()
	s.logger.Info().Str("address", s.address).Msg("grpc server available")

	return s.server.Serve(lis)
}

func (s *Server) String() string {
	return "gRPCServer"
}
