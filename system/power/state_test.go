package power

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	mu     sync.Mutex
	status Status
}

func (s *scriptedReader) Status(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

func (s *scriptedReader) set(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

type chanSuspend struct {
	ch chan chan<- Event
}

func (c *chanSuspend) ListenSuspend(haltCtx context.Context, eventCh chan<- Event) error {
	c.ch <- eventCh
	return nil
}

func receive(t *testing.T, ch <-chan StateEvent) StateEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no power event")
	}
	return StateEvent{}
}

func TestStateListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{status: Status{Adapter: powermode.AdapterConnected, BatteryPercent: 80}}
	suspend := &chanSuspend{ch: make(chan chan<- Event, 1)}
	s, err := NewStateListener(StateListenerConfig{
		Reader:   reader,
		Suspend:  suspend,
		Interval: time.Millisecond * 5,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	events, unsubscribe := s.Subscribe(8)
	defer unsubscribe()

	done := make(chan error)
	go func() {
		done <- s.Serve(ctx)
	}()
	suspendCh := <-suspend.ch
	require.Eventually(t, func() bool {
		return s.lastStatus().BatteryPercent == 80
	}, time.Second, time.Millisecond)

	// battery tick only
	reader.set(Status{Adapter: powermode.AdapterConnected, BatteryPercent: 79})
	evt := receive(t, events)
	require.Equal(t, EventStatusChange, evt.Event)
	require.False(t, evt.AdapterStateChanged)

	// unplugged
	reader.set(Status{Adapter: powermode.AdapterDisconnected, BatteryPercent: 79})
	evt = receive(t, events)
	require.Equal(t, EventStatusChange, evt.Event)
	require.True(t, evt.AdapterStateChanged)
	require.Equal(t, powermode.AdapterDisconnected, evt.Status.Adapter)

	suspendCh <- EventResume
	evt = receive(t, events)
	require.Equal(t, EventResume, evt.Event)
	require.Equal(t, powermode.AdapterDisconnected, evt.Status.Adapter)

	cancel()
	require.NoError(t, <-done)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	reader := &scriptedReader{}
	s, err := NewStateListener(StateListenerConfig{Reader: reader, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, unsubscribe := s.Subscribe(0)
	defer unsubscribe()

	s.poll(context.Background())
	reader.set(Status{Adapter: powermode.AdapterDisconnected})

	finished := make(chan struct{})
	go func() {
		s.poll(context.Background())
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a slow subscriber")
	}
}

func TestSource(t *testing.T) {
	src := &Source{Reader: &scriptedReader{status: Status{Adapter: powermode.AdapterConnectedLowWattage}}}
	status, err := src.AdapterStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, powermode.AdapterConnectedLowWattage, status)
}

func TestOverlayApplier(t *testing.T) {
	setter := &DryOverlaySetter{}
	a := &OverlayApplier{Setter: setter, Logger: zerolog.Nop()}

	expected := map[powermode.Mode]string{
		powermode.Quiet:       OverlayBestEfficiency,
		powermode.Balance:     OverlayBalanced,
		powermode.Performance: OverlayBestPerformance,
		powermode.Extreme:     OverlayBestPerformance,
		powermode.GodMode:     OverlayBestPerformance,
	}
	for mode, guid := range expected {
		require.NoError(t, a.Apply(context.Background(), mode))
		require.Equal(t, guid, setter.Active())
	}
}

func TestEventString(t *testing.T) {
	require.Equal(t, "resume", EventResume.String())
	require.Equal(t, "event(5)", Event(5).String())
}
