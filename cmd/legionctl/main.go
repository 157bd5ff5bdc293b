package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/legion-tools/LegionManager/rpc/protocol"
	"github.com/legion-tools/LegionManager/rpc/server"
	"github.com/legion-tools/LegionManager/settings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Compile time injected variables
var (
	Version = "v0.0.0-dev"
)

const usage = `usage: legionctl [flags] <command>

commands:
  get               print the current power mode
  list              print the power modes this machine supports
  set <mode> [-f]   switch power mode (quiet, balance, performance, extreme, godmode)
  history [-n N]    print the most recent power mode changes
  version           print client and daemon versions

flags:
`

type options struct {
	address string
	force   bool
	count   int32
	timeout time.Duration
}

func main() {
	fs := pflag.NewFlagSet("legionctl", pflag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.address, "address", settings.DefaultRPCAddress, "address of the legiond control service")
	fs.BoolVarP(&opts.force, "force", "f", false, "apply the mode even if it is restricted on battery")
	fs.Int32VarP(&opts.count, "count", "n", server.DefaultHistorySize, "number of history entries")
	fs.DurationVar(&opts.timeout, "timeout", time.Second*10, "request timeout")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if err := run(os.Stdout, opts, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "legionctl: %s\n", explain(err))
		os.Exit(1)
	}
}

func run(out io.Writer, opts options, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	cc, err := grpc.NewClient(opts.address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return errors.Wrap(err, "cannot create client")
	}
	defer cc.Close()

	client := protocol.NewPowerModeClient(cc)

	daemon, err := client.GetVersion(ctx, &emptypb.Empty{})
	if err != nil {
		return errors.Wrap(err, "cannot reach legiond")
	}
	if err := server.CheckVersion(Version, daemon.GetValue()); err != nil {
		return err
	}

	return execute(ctx, out, client, opts, daemon.GetValue(), args)
}

func execute(ctx context.Context, out io.Writer, client protocol.PowerModeClient, opts options, daemonVersion string, args []string) error {
	switch args[0] {
	case "get":
		mode, err := client.GetMode(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, mode.GetValue())

	case "list":
		modes, err := client.ListModes(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		for _, m := range modes.GetValues() {
			fmt.Fprintln(out, m.GetStringValue())
		}

	case "set":
		if len(args) < 2 {
			return errors.New("set needs a power mode")
		}
		mode, err := client.SetMode(ctx, protocol.NewSetModeRequest(args[1], opts.force))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "power mode set to %s\n", mode.GetValue())

	case "history":
		entries, err := client.History(ctx, wrapperspb.Int32(opts.count))
		if err != nil {
			return err
		}
		for _, v := range entries.GetValues() {
			e := v.GetStructValue().GetFields()
			fmt.Fprintf(out, "%s\t%-12s\t%s\n",
				e["at"].GetStringValue(),
				e["mode"].GetStringValue(),
				e["origin"].GetStringValue(),
			)
		}

	case "version":
		fmt.Fprintf(out, "legionctl %s\nlegiond %s\n", Version, daemonVersion)

	default:
		return errors.Errorf("unknown command %q", args[0])
	}
	return nil
}

// explain turns rpc failures into something actionable
func explain(err error) string {
	s, ok := status.FromError(errors.Cause(err))
	if !ok {
		return err.Error()
	}
	switch s.Code() {
	case codes.FailedPrecondition:
		return s.Message() + "\nre-run with --force to apply it anyway"
	case codes.InvalidArgument, codes.Unavailable:
		return s.Message()
	}
	return strings.TrimSpace(err.Error())
}
