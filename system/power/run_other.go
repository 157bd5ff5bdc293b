//go:build !windows

package power

import (
	"context"
	"os/exec"
)

// Run executes the command. powercfg only exists on windows, so this is only
// useful with a fake powercfg on the PATH.
func Run(ctx context.Context, command string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, command, args...).Output()
}
