package powermode

import (
	"fmt"
	"strings"
)

// Mode is the logical power mode the application reasons about. Extreme is
// synthetic: the firmware never stores it.
type Mode int

// Logical values are the firmware values minus one. GodMode sits on the
// firmware's custom slot (255).
const (
	Quiet       Mode = 0
	Balance     Mode = 1
	Performance Mode = 2
	Extreme     Mode = 3
	GodMode     Mode = 254
)

var modeNames = map[Mode]string{
	Quiet:       "quiet",
	Balance:     "balance",
	Performance: "performance",
	Extreme:     "extreme",
	GodMode:     "godmode",
}

var displayNames = map[Mode]string{
	Quiet:       "Quiet",
	Balance:     "Balance",
	Performance: "Performance",
	Extreme:     "Extreme",
	GodMode:     "Custom",
}

// AllModes lists every logical mode in display order
func AllModes() []Mode {
	return []Mode{Quiet, Balance, Performance, Extreme, GodMode}
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// DisplayName is the user facing name, as shown in notifications
func (m Mode) DisplayName() string {
	if n, ok := displayNames[m]; ok {
		return n
	}
	return m.String()
}

// Valid reports whether m is one of the known logical modes
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// Raw returns the firmware register value for m.
func (m Mode) Raw() int {
	return int(m) + 1
}

// WireMode returns the mode actually written to the firmware register.
func (m Mode) WireMode() Mode {
	if m == Extreme {
		return Performance
	}
	return m
}

// RequiresAC reports whether m is refused on battery unless overridden
func (m Mode) RequiresAC() bool {
	switch m {
	case Performance, Extreme, GodMode:
		return true
	default:
		return false
	}
}

// FromRaw translates a firmware register value into a logical Mode
func FromRaw(raw int) (Mode, error) {
	m := Mode(raw - 1)
	if !m.Valid() || m == Extreme {
		return 0, fmt.Errorf("unknown raw power mode %d", raw)
	}
	return m, nil
}

// ParseMode accepts either the short name ("performance") or the display name
// ("Custom") of a mode, case insensitive.
func ParseMode(s string) (Mode, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == needle || strings.ToLower(displayNames[m]) == needle {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown power mode %q", s)
}

// Effective derives the mode observers should see from the raw firmware mode
// and the Extreme overlay flag.
func Effective(raw Mode, extremeActive bool) Mode {
	if raw == Performance && extremeActive {
		return Extreme
	}
	return raw
}
