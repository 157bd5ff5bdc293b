package display

import (
	"context"
	"fmt"
	"sort"
)

// RefreshRate of the built-in display, in Hz. Zero means unconfigured.
type RefreshRate int

func (r RefreshRate) String() string {
	return fmt.Sprintf("%dHz", int(r))
}

// Display controls the refresh rate of the built-in display
type Display interface {
	Supported(ctx context.Context) ([]RefreshRate, error)
	Current(ctx context.Context) (RefreshRate, error)
	SetCurrent(ctx context.Context, rate RefreshRate) error
}

func containsRate(rates []RefreshRate, r RefreshRate) bool {
	for _, candidate := range rates {
		if candidate == r {
			return true
		}
	}
	return false
}

func uniqueRates(rates []RefreshRate) []RefreshRate {
	seen := make(map[RefreshRate]struct{}, len(rates))
	out := make([]RefreshRate, 0, len(rates))
	for _, r := range rates {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
