package powermode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/legion-tools/LegionManager/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu   sync.Mutex
	sent []util.Notification
}

func (f *fakePublisher) Publish(n util.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func (f *fakePublisher) Sent() []util.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]util.Notification(nil), f.sent...)
}

func newTestListener(t *testing.T, h *harness) (*Listener, *fakePublisher) {
	pub := &fakePublisher{}
	l, err := NewListener(ListenerConfig{
		GodMode:          h.godMode,
		WindowsPowerMode: h.powerMode,
		WindowsPowerPlan: h.powerPlan,
		Publisher:        pub,
		Logger:           zerolog.Nop(),
	})
	require.NoError(t, err)
	return l, pub
}

func TestListenerGodModeBeforeAppliers(t *testing.T) {
	h := newHarness(Balance)
	l, _ := newTestListener(t, h)

	require.NoError(t, l.Notify(context.Background(), GodMode))

	events := h.rec.Events()
	require.Len(t, events, 3)
	require.Equal(t, "godmode apply", events[0])
	require.ElementsMatch(t, []string{
		"windows power mode godmode",
		"windows power plan godmode",
	}, events[1:])
}

func TestListenerSkipsGodModeProfile(t *testing.T) {
	h := newHarness(Balance)
	l, _ := newTestListener(t, h)

	for _, mode := range []Mode{Quiet, Balance, Performance, Extreme} {
		require.NoError(t, l.Notify(context.Background(), mode))
	}
	require.Zero(t, h.godMode.calls)
	require.Equal(t, []Mode{Quiet, Balance, Performance, Extreme}, h.powerMode.modes)
	require.Equal(t, []Mode{Quiet, Balance, Performance, Extreme}, h.powerPlan.modes)
}

func TestListenerExternalPublishes(t *testing.T) {
	tests := []struct {
		raw      int
		mode     Mode
		kind     util.NotificationType
		expected string
	}{
		{raw: 1, mode: Quiet, kind: util.NotifyPowerModeQuiet, expected: "Quiet"},
		{raw: 2, mode: Balance, kind: util.NotifyPowerModeBalance, expected: "Balance"},
		{raw: 3, mode: Performance, kind: util.NotifyPowerModePerformance, expected: "Performance"},
		{raw: 255, mode: GodMode, kind: util.NotifyPowerModeGodMode, expected: "Custom"},
	}

	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			h := newHarness(Balance)
			l, pub := newTestListener(t, h)

			changes, cancel := l.Subscribe(1)
			defer cancel()

			require.NoError(t, l.OnRawChanged(context.Background(), tc.raw))

			sent := pub.Sent()
			require.Len(t, sent, 1)
			require.Equal(t, tc.kind, sent[0].Type)
			require.Equal(t, tc.expected, sent[0].Arg)

			select {
			case c := <-changes:
				require.Equal(t, tc.mode, c.Mode)
				require.Equal(t, OriginExternal, c.Origin)
			case <-time.After(time.Second):
				t.Fatal("change not delivered")
			}
		})
	}
}

func TestListenerInternalDoesNotPublish(t *testing.T) {
	h := newHarness(Balance)
	l, pub := newTestListener(t, h)

	changes, cancel := l.Subscribe(1)
	defer cancel()

	require.NoError(t, l.Notify(context.Background(), Extreme))
	require.Empty(t, pub.Sent())

	c := <-changes
	require.Equal(t, Extreme, c.Mode)
	require.Equal(t, OriginSelf, c.Origin)
}

func TestListenerRejectsUnknownRaw(t *testing.T) {
	h := newHarness(Balance)
	l, pub := newTestListener(t, h)

	require.Error(t, l.OnRawChanged(context.Background(), 4))
	require.Error(t, l.OnRawChanged(context.Background(), 0))
	require.Empty(t, pub.Sent())
	require.Empty(t, h.powerMode.modes)
}

func TestListenerPropagatesApplierFailure(t *testing.T) {
	h := newHarness(Balance)
	h.powerPlan.err = errHardware
	l, pub := newTestListener(t, h)

	changes, cancel := l.Subscribe(1)
	defer cancel()

	err := l.OnRawChanged(context.Background(), Quiet.Raw())
	require.Error(t, err)
	require.ErrorIs(t, err, errHardware)

	// both branches still ran to completion
	require.Equal(t, []Mode{Quiet}, h.powerMode.modes)
	require.Equal(t, []Mode{Quiet}, h.powerPlan.modes)

	require.Empty(t, pub.Sent())
	select {
	case <-changes:
		t.Fatal("failed fan-out must not be raised")
	default:
	}
}

func TestListenerGodModeFailureStopsFanOut(t *testing.T) {
	h := newHarness(Balance)
	h.godMode.err = errHardware
	l, _ := newTestListener(t, h)

	require.Error(t, l.Notify(context.Background(), GodMode))
	require.Empty(t, h.powerMode.modes)
	require.Empty(t, h.powerPlan.modes)
}

func TestListenerUnsubscribe(t *testing.T) {
	h := newHarness(Balance)
	l, _ := newTestListener(t, h)

	_, cancel := l.Subscribe(0)
	cancel()
	cancel()

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, l.Notify(ctx, Balance))
}

func TestListenerBlockedSubscriberHonorsContext(t *testing.T) {
	h := newHarness(Balance)
	l, _ := newTestListener(t, h)

	_, cancel := l.Subscribe(0)
	defer cancel()

	ctx, done := context.WithTimeout(context.Background(), time.Millisecond*20)
	defer done()
	require.ErrorIs(t, l.Notify(ctx, Balance), context.DeadlineExceeded)
}

func newListeningFeature(t *testing.T, h *harness, l *Listener) *Feature {
	f, err := NewFeature(Config{
		Register:         h.register,
		Probe:            h.probe,
		Capabilities:     h.caps,
		PowerSource:      h.source,
		Policy:           h.policy,
		Overlay:          h.overlay,
		Listener:         l,
		WindowsPowerMode: h.powerMode,
		WindowsPowerPlan: h.powerPlan,
		GodMode:          h.godMode,
		Settle:           func(time.Duration) {},
		Logger:           zerolog.Nop(),
	})
	require.NoError(t, err)
	return f
}

func TestFeatureAndListenerEndToEnd(t *testing.T) {
	h := newHarness(Balance)
	l, pub := newTestListener(t, h)
	f := newListeningFeature(t, h, l)

	changes, cancel := l.Subscribe(1)
	defer cancel()

	require.NoError(t, f.SetState(context.Background(), TransitionRequest{Target: Performance}))

	require.Equal(t, []rawWrite{{raw: 3, origin: OriginSelf}}, h.register.writes)
	require.Equal(t, []Mode{Performance}, h.powerMode.modes)
	require.Equal(t, []Mode{Performance}, h.powerPlan.modes)
	require.Empty(t, pub.Sent())

	c := <-changes
	require.Equal(t, Performance, c.Mode)
	require.Equal(t, OriginSelf, c.Origin)
}

func TestSetStateOutlivesCallerContext(t *testing.T) {
	h := newHarness(Balance)
	h.powerMode.cancellable = true
	h.powerPlan.cancellable = true
	l, _ := newTestListener(t, h)
	f := newListeningFeature(t, h, l)

	changes, unsubscribe := l.Subscribe(0)
	defer unsubscribe()
	received := make(chan Change, 1)
	go func() {
		received <- <-changes
	}()

	// the caller goes away right after the firmware write
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.register.afterWrite = cancel

	require.NoError(t, f.SetState(ctx, TransitionRequest{Target: Extreme}))

	require.Equal(t, []rawWrite{{raw: Performance.Raw(), origin: OriginSelf}}, h.register.writes)
	require.True(t, f.ExtremeActive())
	require.Equal(t, []Mode{Extreme}, h.powerMode.modes)
	require.Equal(t, []Mode{Extreme}, h.powerPlan.modes)

	c := <-received
	require.Equal(t, Extreme, c.Mode)
	require.Equal(t, OriginSelf, c.Origin)
}
