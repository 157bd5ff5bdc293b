//go:build !windows

package power

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/stretchr/testify/require"
)

func writeSupply(t *testing.T, root, name string, attrs map[string]string) {
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for k, v := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, k), []byte(v+"\n"), 0o644))
	}
}

func TestSysfsStatus(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "ADP0", map[string]string{"type": "Mains", "online": "1"})
	writeSupply(t, root, "BAT0", map[string]string{"type": "Battery", "capacity": "64"})

	status, err := SystemStatusReader{Root: root}.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, Status{Adapter: powermode.AdapterConnected, BatteryPercent: 64}, status)

	writeSupply(t, root, "ADP0", map[string]string{"online": "0"})
	status, err = SystemStatusReader{Root: root}.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, powermode.AdapterDisconnected, status.Adapter)
}
