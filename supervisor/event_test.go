package supervisor

import (
	"sync"
	"testing"

	"github.com/legion-tools/LegionManager/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
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

func TestEventHookNotifiesCrash(t *testing.T) {
	pub := &fakePublisher{}
	hook := &EventHook{Notifier: pub, Logger: zerolog.Nop()}

	hook.Event(suture.EventServicePanic{
		SupervisorName: "root",
		ServiceName:    "ThermalListener",
		PanicMsg:       "boom",
	})
	hook.Event(suture.EventBackoff{SupervisorName: "root"})

	require.Len(t, pub.sent, 1)
	require.Equal(t, util.NotifyServiceCrash, pub.sent[0].Type)
	require.Equal(t, "ThermalListener", pub.sent[0].Arg)
}

func TestNewGRPCServer(t *testing.T) {
	_, err := NewGRPCServer(GRPCRunConfig{})
	require.Error(t, err)
}
