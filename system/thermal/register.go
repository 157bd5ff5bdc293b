package thermal

import (
	"context"
	"sync"
	"time"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultTagTTL bounds how long a self write waits for its firmware event.
// A write that produced no event cannot swallow a later external change.
const DefaultTagTTL = time.Second * 3

// RawRegister is the firmware side of the power mode register
type RawRegister interface {
	ReadRawMode(ctx context.Context) (int, error)
	WriteRawMode(ctx context.Context, raw int) error
}

type pendingTag struct {
	raw      int
	deadline time.Time
}

// RegisterConfig contains the collaborators of the Register
type RegisterConfig struct {
	Hardware RawRegister
	TTL      time.Duration
	Logger   zerolog.Logger
}

// Register mediates every access to the firmware power mode register. Self
// writes leave a pending tag behind, so the Listener can tell the firmware
// event they cause apart from a hotkey press.
type Register struct {
	RegisterConfig

	mu      sync.Mutex
	pending []pendingTag
	now     func() time.Time
}

var _ powermode.ModeRegister = &Register{}

// NewRegister returns a Register over the firmware
func NewRegister(conf RegisterConfig) (*Register, error) {
	if conf.Hardware == nil {
		return nil, errors.New("nil Hardware is invalid")
	}
	if conf.TTL <= 0 {
		conf.TTL = DefaultTagTTL
	}
	return &Register{
		RegisterConfig: conf,
		now:            time.Now,
	}, nil
}

func (r *Register) ReadRawMode(ctx context.Context) (int, error) {
	return r.Hardware.ReadRawMode(ctx)
}

// WriteRawMode writes raw to the firmware. The tag of a self write is
// recorded before the hardware write, and dropped again if the write fails.
func (r *Register) WriteRawMode(ctx context.Context, raw int, origin powermode.Origin) error {
	if origin == powermode.OriginSelf {
		r.tag(raw)
	}

	if err := r.Hardware.WriteRawMode(ctx, raw); err != nil {
		if origin == powermode.OriginSelf {
			r.untag(raw)
		}
		return errors.Wrapf(err, "thermal: cannot write raw power mode %d", raw)
	}

	r.Logger.Debug().Int("raw", raw).Str("origin", origin.String()).Msg("raw power mode written")
	return nil
}

// Classify returns the origin of a firmware event. A matching unexpired tag
// is consumed: each self write accounts for exactly one event.
func (r *Register) Classify(raw int) powermode.Origin {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	for i, t := range r.pending {
		if t.raw == raw {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return powermode.OriginSelf
		}
	}
	return powermode.OriginExternal
}

// Pending returns the number of unexpired tags
func (r *Register) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	return len(r.pending)
}

func (r *Register) tag(raw int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	r.pending = append(r.pending, pendingTag{
		raw:      raw,
		deadline: r.now().Add(r.TTL),
	})
}

// untag removes the newest tag for raw
func (r *Register) untag(raw int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.pending) - 1; i >= 0; i-- {
		if r.pending[i].raw == raw {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

func (r *Register) expireLocked() {
	now := r.now()
	kept := r.pending[:0]
	for _, t := range r.pending {
		if now.Before(t.deadline) {
			kept = append(kept, t)
		}
	}
	r.pending = kept
}
