package gamezone

import (
	"context"
	"strings"

	"github.com/bi-zone/wmi"
	"github.com/pkg/errors"
)

type computerSystemProduct struct {
	Name    string
	Version string
}

// SystemModel reads the model from Win32_ComputerSystemProduct
type SystemModel struct{}

var _ ModelProbe = SystemModel{}

func (SystemModel) Model(ctx context.Context) (string, error) {
	var products []computerSystemProduct
	if err := wmi.Query("SELECT Name, Version FROM Win32_ComputerSystemProduct", &products); err != nil {
		return "", errors.Wrap(err, "gamezone: cannot query computer system product")
	}
	if len(products) == 0 {
		return "", errors.New("gamezone: no computer system product")
	}
	// Lenovo puts the marketing name in Version and the MTM in Name
	return strings.TrimSpace(products[0].Version + " " + products[0].Name), nil
}
