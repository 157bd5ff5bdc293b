package power

import (
	"context"
	"os/exec"
	"syscall"
)

// Run will attempt to execute in command line without showing the console window
func Run(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: 0x08000000}
	return cmd.Output()
}
