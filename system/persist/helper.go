package persist

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// settleTime allows hardware configuration to propagate between two Apply
const settleTime = time.Millisecond * 25

// ConfigHelper contains a list of configurations to be loaded, saved, and applied
type ConfigHelper struct {
	mu            sync.Mutex
	alreadyClosed bool
	configs       map[string]Registry
	backend       Backend
	logger        zerolog.Logger
}

var _ ConfigRegistry = &ConfigHelper{}

// NewConfigHelper returns a helper persisting configs to the given backend
func NewConfigHelper(backend Backend, logger zerolog.Logger) (*ConfigHelper, error) {
	if backend == nil {
		return nil, errors.New("nil Backend is invalid")
	}
	return &ConfigHelper{
		configs: make(map[string]Registry),
		backend: backend,
		logger:  logger.With().Str("component", "persist").Logger(),
	}, nil
}

// Register will add the config to the list
func (h *ConfigHelper) Register(config Registry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.configs[config.Name()] = config
}

// sorted returns the configs in a stable order
func (h *ConfigHelper) sorted() []Registry {
	names := make([]string, 0, len(h.configs))
	for name := range h.configs {
		names = append(names, name)
	}
	sort.Strings(names)

	configs := make([]Registry, 0, len(names))
	for _, name := range names {
		configs = append(configs, h.configs[name])
	}
	return configs
}

// Load will retrive and populate configs from the backend. Configs that were
// never saved are left untouched.
func (h *ConfigHelper) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, config := range h.sorted() {
		h.logger.Debug().Str("config", config.Name()).Msg("loading persisted config")
		v, err := h.backend.Get(config.Name())
		if errors.Is(err, ErrNotExist) {
			continue
		}
		if err != nil {
			h.logger.Error().Err(err).Str("config", config.Name()).Msg("error loading persisted config")
			return errors.Wrapf(err, "persist: cannot load %q", config.Name())
		}
		if err := config.Load(v); err != nil {
			h.logger.Warn().Err(err).Str("config", config.Name()).Msg("persisted config is unreadable, ignoring")
		}
	}

	return nil
}

// Save will persist all the configs as binary values
func (h *ConfigHelper) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, config := range h.sorted() {
		h.logger.Debug().Str("config", config.Name()).Msg("saving config")
		if err := h.backend.Set(config.Name(), config.Value()); err != nil {
			h.logger.Error().Err(err).Str("config", config.Name()).Msg("error saving config")
			return errors.Wrapf(err, "persist: cannot save %q", config.Name())
		}
	}

	return nil
}

// Apply will apply each config accordingly. This is usually called after Load()
func (h *ConfigHelper) Apply(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, config := range h.sorted() {
		h.logger.Info().Str("config", config.Name()).Msg("applying persisted config")
		if err := config.Apply(ctx); err != nil {
			h.logger.Error().Err(err).Str("config", config.Name()).Msg("error applying persisted config")
			return errors.Wrapf(err, "persist: cannot apply %q", config.Name())
		}
		time.Sleep(settleTime)
	}

	return nil
}

// Close will release resources of each config
func (h *ConfigHelper) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.alreadyClosed {
		return
	}
	h.alreadyClosed = true

	for _, config := range h.sorted() {
		h.logger.Debug().Str("config", config.Name()).Msg("closing config")
		if err := config.Close(); err != nil {
			h.logger.Error().Err(err).Str("config", config.Name()).Msg("error closing config")
		}
	}
}
