package ports

import (
	"context"
	"transport-simulator/internal/domain"
)

// GeocodeCache maps normalized addresses to coordinates.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// RouteCache stores route geometry keyed by origin and destination.
// A miss returns (nil, false, nil).
type RouteCache interface {
	Get(ctx context.Context, origin, destination string) (domain.Polyline, bool, error)
	Put(ctx context.Context, origin, destination string, path domain.Polyline) error
}
