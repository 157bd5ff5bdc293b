//go:build !windows

package main

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func systemHardware(logger zerolog.Logger) (*hardware, error) {
	return nil, errors.New("the GameZone firmware interface is only available on windows, use --dry-run")
}
