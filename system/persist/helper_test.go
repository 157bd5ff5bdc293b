package persist

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type mockConfig struct {
	name    string
	bytes   []byte
	applied int
	closed  int
	err     error
}

func (m *mockConfig) Name() string {
	if m.name == "" {
		return "MockConfig"
	}
	return m.name
}
func (m *mockConfig) Value() []byte                   { return m.bytes }
func (m *mockConfig) Load(v []byte) error             { m.bytes = v; return nil }
func (m *mockConfig) Apply(ctx context.Context) error { m.applied++; return m.err }
func (m *mockConfig) Close() error                    { m.closed++; return nil }

var _ Registry = &mockConfig{}

func TestPersistToMemory(t *testing.T) {
	backend := NewMemoryBackend()
	expectedBytes := []byte{1, 2, 3, 4, 5, 6}

	h, err := NewConfigHelper(backend, zerolog.Nop())
	require.NoError(t, err)

	h.Register(&mockConfig{bytes: expectedBytes})
	require.NoError(t, h.Save())

	hL, err := NewConfigHelper(backend, zerolog.Nop())
	require.NoError(t, err)

	m := &mockConfig{}
	hL.Register(m)
	require.NoError(t, hL.Load())
	require.EqualValues(t, expectedBytes, m.bytes)
}

func TestLoadSkipsMissing(t *testing.T) {
	h, err := NewDryConfigHelper(zerolog.Nop())
	require.NoError(t, err)

	m := &mockConfig{bytes: []byte{9}}
	h.Register(m)
	require.NoError(t, h.Load())
	require.EqualValues(t, []byte{9}, m.bytes)
}

func TestApplyStopsOnError(t *testing.T) {
	h, err := NewDryConfigHelper(zerolog.Nop())
	require.NoError(t, err)

	a := &mockConfig{name: "a", err: errors.New("nvml unavailable")}
	b := &mockConfig{name: "b"}
	h.Register(a)
	h.Register(b)

	require.Error(t, h.Apply(context.Background()))
	require.Equal(t, 1, a.applied)
	require.Zero(t, b.applied)
}

func TestCloseOnce(t *testing.T) {
	h, err := NewDryConfigHelper(zerolog.Nop())
	require.NoError(t, err)

	m := &mockConfig{}
	h.Register(m)
	h.Close()
	h.Close()
	require.Equal(t, 1, m.closed)
}

func TestNilBackend(t *testing.T) {
	_, err := NewConfigHelper(nil, zerolog.Nop())
	require.Error(t, err)
}
