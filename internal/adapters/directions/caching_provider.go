package directions

import (
	"context"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/ports"

	"go.uber.org/zap"
)

// CachingDirectionsProvider serves route geometry from a RouteCache and falls
// back to the wrapped provider on a miss. Cache errors are logged and bypassed.
type CachingDirectionsProvider struct {
	next   ports.DirectionsProvider
	cache  ports.RouteCache
	logger *zap.Logger
}

func NewCachingDirectionsProvider(
	next ports.DirectionsProvider,
	cache ports.RouteCache,
	logger *zap.Logger,
) *CachingDirectionsProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingDirectionsProvider{next: next, cache: cache, logger: logger.Named("route_cache")}
}

func (c *CachingDirectionsProvider) GetDirections(
	ctx context.Context,
	origin domain.Location,
	destination domain.Location,
) (domain.Polyline, error) {
	from, to := origin.Key(), destination.Key()

	path, ok, err := c.cache.Get(ctx, from, to)
	switch {
	case err != nil:
		c.logger.Warn("route cache read failed", zap.String("origin", from), zap.String("destination", to), zap.Error(err))
	case ok:
		return path, nil
	}

	path, err = c.next.GetDirections(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, from, to, path); err != nil {
		c.logger.Warn("route cache write failed", zap.String("origin", from), zap.String("destination", to), zap.Error(err))
	}

	return path, nil
}
