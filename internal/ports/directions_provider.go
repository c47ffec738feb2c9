package ports

import (
	"context"
	"transport-simulator/internal/domain"
)

// Contract for retrieving route geometry between two locations.
type DirectionsProvider interface {
	// Return the ordered polyline connecting origin to destination.
	// Failures wrap domain.ErrGeometryUnavailable.
	GetDirections(ctx context.Context, origin, destination domain.Location) (domain.Polyline, error)
}
