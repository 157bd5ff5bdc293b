package persist

import (
	"sync"

	"github.com/rs/zerolog"
)

// MemoryBackend keeps values in memory only. It backs --dry-run and tests.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ Backend = &MemoryBackend{}

// NewMemoryBackend returns an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string][]byte),
	}
}

func (m *MemoryBackend) Get(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[name]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Set(name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[name] = append([]byte(nil), value...)
	return nil
}

// NewDryConfigHelper returns a helper that never touches the Registry
func NewDryConfigHelper(logger zerolog.Logger) (*ConfigHelper, error) {
	logger.Info().Msg("[dry run] persist: initializing in memory storage without registry IOs")
	return NewConfigHelper(NewMemoryBackend(), logger)
}
