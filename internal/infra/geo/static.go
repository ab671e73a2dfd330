package geo

import (
	"context"
	"strings"

	"github.com/yanqian/trailfinder/internal/domain/trailview"
	"github.com/yanqian/trailfinder/internal/domain/weather"
)

// Static resolves to a fixed position supplied at startup, standing in for a device location API.
type Static struct {
	coords *weather.Coordinates
}

// NewStatic parses a "lat,lon" position. An empty string yields a locator with no position.
func NewStatic(raw string) (*Static, error) {
	if strings.TrimSpace(raw) == "" {
		return &Static{}, nil
	}
	coords, err := weather.ParseCoordinates(raw)
	if err != nil {
		return nil, err
	}
	return &Static{coords: &coords}, nil
}

// Locate returns the configured position or trailview.ErrLocationUnavailable.
func (s *Static) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	if s.coords == nil {
		return weather.Coordinates{}, trailview.ErrLocationUnavailable
	}
	return *s.coords, nil
}
