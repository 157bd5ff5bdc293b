//go:build !windows

package power

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/legion-tools/LegionManager/system/powermode"

	"github.com/pkg/errors"
)

const powerSupplyRoot = "/sys/class/power_supply"

// SystemStatusReader reads the power supply class of sysfs
type SystemStatusReader struct {
	Root string
}

var _ StatusReader = SystemStatusReader{}

func (r SystemStatusReader) Status(ctx context.Context) (Status, error) {
	root := r.Root
	if root == "" {
		root = powerSupplyRoot
	}
	supplies, err := os.ReadDir(root)
	if err != nil {
		return Status{}, errors.Wrap(err, "power: cannot list power supplies")
	}

	status := Status{
		Adapter:        powermode.AdapterDisconnected,
		BatteryPercent: -1,
	}
	for _, s := range supplies {
		dir := filepath.Join(root, s.Name())
		switch readAttr(dir, "type") {
		case "Mains", "USB":
			if readAttr(dir, "online") == "1" {
				status.Adapter = powermode.AdapterConnected
			}
		case "Battery":
			if pct, err := strconv.Atoi(readAttr(dir, "capacity")); err == nil {
				status.BatteryPercent = pct
			}
		}
	}
	return status, nil
}

func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
