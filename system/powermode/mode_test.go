package powermode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRawConversion(t *testing.T) {
	for _, m := range []Mode{Quiet, Balance, Performance, GodMode} {
		back, err := FromRaw(m.Raw())
		require.NoError(t, err)
		require.Equal(t, m, back)
	}
	require.Equal(t, 255, GodMode.Raw())

	// the firmware never reports Extreme
	_, err := FromRaw(Extreme.Raw())
	require.Error(t, err)
}

func TestWireMode(t *testing.T) {
	require.Equal(t, Performance, Extreme.WireMode())
	require.Equal(t, GodMode, GodMode.WireMode())
	require.Equal(t, Quiet, Quiet.WireMode())
}

func TestEffective(t *testing.T) {
	require.Equal(t, Extreme, Effective(Performance, true))
	require.Equal(t, Performance, Effective(Performance, false))
	require.Equal(t, Balance, Effective(Balance, true))
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"quiet":        Quiet,
		"Balance":      Balance,
		" performance": Performance,
		"EXTREME":      Extreme,
		"godmode":      GodMode,
		"custom":       GodMode,
	}
	for in, expected := range tests {
		m, err := ParseMode(in)
		require.NoError(t, err, in)
		require.Equal(t, expected, m)
	}

	_, err := ParseMode("turbo")
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Custom", GodMode.DisplayName())
	require.Equal(t, "Extreme", Extreme.DisplayName())
	require.Equal(t, "mode(42)", Mode(42).String())
}

func TestEnumStringsOutOfRange(t *testing.T) {
	require.Equal(t, "connected (low wattage)", AdapterConnectedLowWattage.String())
	require.Equal(t, "adapter(7)", AdapterStatus(7).String())
	require.Equal(t, "adapter(-1)", AdapterStatus(-1).String())
	require.Equal(t, "self", OriginSelf.String())
	require.Equal(t, "origin(9)", Origin(9).String())
}
