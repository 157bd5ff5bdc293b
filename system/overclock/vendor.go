package overclock

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
)

// VendorProbe returns the manufacturer string of the CPU
type VendorProbe interface {
	CPUVendor(ctx context.Context) (string, error)
}

// SystemVendorProbe reads the vendor through gopsutil
type SystemVendorProbe struct{}

var _ VendorProbe = SystemVendorProbe{}

func (SystemVendorProbe) CPUVendor(ctx context.Context) (string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", errors.Wrap(err, "overclock: cannot query cpu info")
	}
	for _, info := range infos {
		if info.VendorID != "" {
			return info.VendorID, nil
		}
	}
	return "", errors.New("overclock: cpu vendor is unknown")
}

// IsAMD matches both "AuthenticAMD" and "Advanced Micro Devices"
func IsAMD(vendor string) bool {
	v := strings.ToUpper(vendor)
	return strings.Contains(v, "AMD") || strings.Contains(v, "ADVANCED MICRO DEVICES")
}
