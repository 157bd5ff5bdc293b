package persist

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows/registry"
)

const (
	registryKey  = registry.LOCAL_MACHINE
	registryPath = `SOFTWARE\LegionManager`
)

// RegistryBackend stores binary values under a Registry key
type RegistryBackend struct {
	key  registry.Key
	path string
}

var _ Backend = &RegistryBackend{}

func (r *RegistryBackend) Get(name string) ([]byte, error) {
	key, exists, err := registry.CreateKey(r.key, r.path, registry.ALL_ACCESS)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	if !exists {
		// nothing to load
		return nil, ErrNotExist
	}

	v, _, err := key.GetBinaryValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, ErrNotExist
	}
	return v, err
}

func (r *RegistryBackend) Set(name string, value []byte) error {
	key, _, err := registry.CreateKey(r.key, r.path, registry.ALL_ACCESS)
	if err != nil {
		return err
	}
	defer key.Close()

	return key.SetBinaryValue(name, value)
}

// NewRegistryConfigHelper returns a helper to persist config to the Registry
func NewRegistryConfigHelper(logger zerolog.Logger) (*ConfigHelper, error) {
	return NewConfigHelper(&RegistryBackend{
		key:  registryKey,
		path: registryPath,
	}, logger)
}
