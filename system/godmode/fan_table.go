package godmode

// The curve syntax is inspired by the atrofac utility (https://github.com/cronosun/atrofac)

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const curvePoints = 8

var (
	curveRe = regexp.MustCompile(`\s*(\d{1,3})c:(\d{1,3})%\s*`)
)

// Fan identifies a fan and the sensor driving it in the Lenovo fan table
type Fan struct {
	ID     byte
	Sensor byte
}

var (
	CPUFan = Fan{ID: 0x01, Sensor: 0x03}
	GPUFan = Fan{ID: 0x02, Sensor: 0x04}
)

// FanTable is an 8 point temperature to duty cycle curve
type FanTable struct {
	temps  [curvePoints]byte
	speeds [curvePoints]byte
}

// NewFanTable parses "20c:0%,50c:10%,..." with exactly 8 points. An empty
// curve returns nil, which leaves the firmware curve untouched.
func NewFanTable(curve string) (*FanTable, error) {
	if len(strings.TrimSpace(curve)) == 0 {
		return nil, nil
	}
	match := curveRe.FindAllStringSubmatch(curve, -1)
	if len(match) != curvePoints {
		return nil, errors.Errorf("fan curve needs %d points, got %d", curvePoints, len(match))
	}

	t := &FanTable{}
	for i, b := range match {
		degree, err := strconv.Atoi(b[1])
		if err != nil || degree > 120 {
			return nil, errors.Errorf("invalid temperature %q", b[1])
		}
		fanPct, err := strconv.Atoi(b[2])
		if err != nil || fanPct > 100 {
			return nil, errors.Errorf("invalid fan speed %q", b[2])
		}
		if i > 0 && byte(degree) < t.temps[i-1] {
			return nil, errors.New("fan curve temperatures must not decrease")
		}
		t.temps[i] = byte(degree)
		t.speeds[i] = byte(fanPct)
	}
	return t, nil
}

// Bytes returns the Fan_Set_Table payload for fan: fan id, sensor id, the 8
// temperatures, then the 8 duty cycles
func (f *FanTable) Bytes(fan Fan) []byte {
	b := make([]byte, 0, 2+2*curvePoints)
	b = append(b, fan.ID, fan.Sensor)
	b = append(b, f.temps[:]...)
	b = append(b, f.speeds[:]...)
	return b
}

func (f *FanTable) String() string {
	points := make([]string, 0, curvePoints)
	for i := 0; i < curvePoints; i++ {
		points = append(points, fmt.Sprintf("%dc:%d%%", f.temps[i], f.speeds[i]))
	}
	return strings.Join(points, ",")
}
