package ports

import (
	"context"
	"transport-simulator/internal/domain"
)

// Transport is the live fleet binding of the simulated vehicle.
// Calls are fire-and-forget; an error only means the update was not handed off.
type Transport interface {
	ID() string
	UpdateLocation(ctx context.Context, c domain.Coordinates) error
	UpdateStatus(ctx context.Context, status domain.TransportStatus) error
}

// CommodityNotifier receives the commodity transitions caused by completed actions.
type CommodityNotifier interface {
	PickedUp(ctx context.Context, commodityID string, carrierID string) error
	DroppedOff(ctx context.Context, commodityID string) error
}
