//go:build !windows

package util

import "github.com/pkg/errors"

// ErrToastUnavailable is returned on platforms without the Windows toast API
var ErrToastUnavailable = errors.New("toast notifications are only available on windows")

// SendToastNotification always fails outside of windows; callers fall back to logging
func SendToastNotification(appName string, n Notification) error {
	return ErrToastUnavailable
}
