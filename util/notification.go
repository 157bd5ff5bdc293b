package util

import (
	"time"
)

// NotificationType tells the consumer what the notification is about, so it
// can pick an icon or drop the ones the user muted
type NotificationType int

const (
	NotifyGeneric NotificationType = iota
	NotifyPowerModeQuiet
	NotifyPowerModeBalance
	NotifyPowerModePerformance
	NotifyPowerModeExtreme
	NotifyPowerModeGodMode
	NotifyRefreshRate
	NotifyServiceCrash
)

func (t NotificationType) String() string {
	switch t {
	case NotifyPowerModeQuiet:
		return "PowerModeQuiet"
	case NotifyPowerModeBalance:
		return "PowerModeBalance"
	case NotifyPowerModePerformance:
		return "PowerModePerformance"
	case NotifyPowerModeExtreme:
		return "PowerModeExtreme"
	case NotifyPowerModeGodMode:
		return "PowerModeGodMode"
	case NotifyRefreshRate:
		return "RefreshRate"
	case NotifyServiceCrash:
		return "ServiceCrash"
	default:
		return "Generic"
	}
}

// Notification constructs the title and message for the toast notification.
// Arg carries the payload of typed notifications, e.g. the mode display name.
type Notification struct {
	Type    NotificationType
	Title   string
	Message string
	Arg     string
	Icon    string
	Delay   time.Duration
}
