package powermode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// recorder keeps the global order of calls across all fakes
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type rawWrite struct {
	raw    int
	origin Origin
}

type fakeRegister struct {
	rec    *recorder
	raw    int
	writes []rawWrite
	err    error

	afterWrite func()
}

func (f *fakeRegister) ReadRawMode(ctx context.Context) (int, error) {
	return f.raw, nil
}

func (f *fakeRegister) WriteRawMode(ctx context.Context, raw int, origin Origin) error {
	if f.err != nil {
		return f.err
	}
	f.rec.record("write %d %s", raw, origin)
	f.writes = append(f.writes, rawWrite{raw: raw, origin: origin})
	f.raw = raw
	if f.afterWrite != nil {
		f.afterWrite()
	}
	return nil
}

func (f *fakeRegister) selfWrites() int {
	n := 0
	for _, w := range f.writes {
		if w.origin == OriginSelf {
			n++
		}
	}
	return n
}

type fakeProbe struct {
	cpu, gpu       bool
	cpuErr, gpuErr error
}

func (f *fakeProbe) ProbeCPUOverclockSupport(ctx context.Context) (bool, error) {
	return f.cpu, f.cpuErr
}

func (f *fakeProbe) ProbeGPUOverclockSupport(ctx context.Context) (bool, error) {
	return f.gpu, f.gpuErr
}

type fakeCapabilities struct {
	caps Capabilities
}

func (f *fakeCapabilities) Capabilities(ctx context.Context) (Capabilities, error) {
	return f.caps, nil
}

type fakeSource struct {
	status AdapterStatus
}

func (f *fakeSource) AdapterStatus(ctx context.Context) (AdapterStatus, error) {
	return f.status, nil
}

type fakePolicy struct {
	allowAll bool
}

func (f *fakePolicy) AllowAllPowerModesOnBattery() bool {
	return f.allowAll
}

type fakeOverlay struct {
	rec    *recorder
	enters int
	exits  int
}

func (f *fakeOverlay) Enter(ctx context.Context) {
	f.rec.record("overlay enter")
	f.enters++
}

func (f *fakeOverlay) Exit(ctx context.Context) {
	f.rec.record("overlay exit")
	f.exits++
}

type fakeNotifier struct {
	rec   *recorder
	modes []Mode
}

func (f *fakeNotifier) Notify(ctx context.Context, mode Mode) error {
	f.rec.record("notify %s", mode)
	f.modes = append(f.modes, mode)
	return nil
}

type fakeApplier struct {
	rec  *recorder
	name string
	err  error
	// cancellable makes Apply fail once ctx is done, like powercfg under
	// exec.CommandContext
	cancellable bool

	mu    sync.Mutex
	modes []Mode
}

func (f *fakeApplier) Apply(ctx context.Context, mode Mode) error {
	if f.cancellable {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	f.rec.record("%s %s", f.name, mode)
	f.mu.Lock()
	f.modes = append(f.modes, mode)
	f.mu.Unlock()
	return f.err
}

type fakeGodMode struct {
	rec   *recorder
	calls int
	err   error
}

func (f *fakeGodMode) Apply(ctx context.Context) error {
	f.rec.record("godmode apply")
	f.calls++
	return f.err
}

type harness struct {
	rec       *recorder
	register  *fakeRegister
	probe     *fakeProbe
	caps      *fakeCapabilities
	source    *fakeSource
	policy    *fakePolicy
	overlay   *fakeOverlay
	notifier  *fakeNotifier
	powerMode *fakeApplier
	powerPlan *fakeApplier
	godMode   *fakeGodMode
	settles   []time.Duration
}

func newHarness(start Mode) *harness {
	rec := &recorder{}
	return &harness{
		rec:       rec,
		register:  &fakeRegister{rec: rec, raw: start.Raw()},
		probe:     &fakeProbe{cpu: true, gpu: true},
		caps:      &fakeCapabilities{},
		source:    &fakeSource{status: AdapterConnected},
		policy:    &fakePolicy{},
		overlay:   &fakeOverlay{rec: rec},
		notifier:  &fakeNotifier{rec: rec},
		powerMode: &fakeApplier{rec: rec, name: "windows power mode"},
		powerPlan: &fakeApplier{rec: rec, name: "windows power plan"},
		godMode:   &fakeGodMode{rec: rec},
	}
}

func (h *harness) feature() (*Feature, error) {
	return NewFeature(Config{
		Register:         h.register,
		Probe:            h.probe,
		Capabilities:     h.caps,
		PowerSource:      h.source,
		Policy:           h.policy,
		Overlay:          h.overlay,
		Listener:         h.notifier,
		WindowsPowerMode: h.powerMode,
		WindowsPowerPlan: h.powerPlan,
		GodMode:          h.godMode,
		Settle: func(d time.Duration) {
			h.rec.record("settle %s", d)
			h.settles = append(h.settles, d)
		},
		Logger: zerolog.Nop(),
	})
}

var errHardware = errors.New("hardware write failed")
