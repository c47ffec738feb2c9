package services

import (
	"context"
	"errors"
	"fmt"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Upper bound on concurrent segment requests while building a loop.
const maxSegmentFetches = 4

// BuildLoop joins the route geometry between consecutive waypoints, including
// the wrap-around leg from the last waypoint back to the first, into a single
// closed polyline. Segments are fetched concurrently but concatenated in
// waypoint order. Any failed segment fails the whole loop.
func BuildLoop(
	ctx context.Context,
	provider ports.DirectionsProvider,
	waypoints []domain.Location,
	logger *zap.Logger,
) (domain.Polyline, error) {
	if len(waypoints) < 2 {
		return nil, errors.New("build loop: at least two waypoints are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("creating loop", zap.Int("waypoints", len(waypoints)))

	segments := make([]domain.Polyline, len(waypoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSegmentFetches)

	for i := range waypoints {
		i := i
		origin := waypoints[i]
		destination := waypoints[(i+1)%len(waypoints)]

		g.Go(func() error {
			path, err := provider.GetDirections(gctx, origin, destination)
			if err != nil {
				return fmt.Errorf("build loop: segment %d %q -> %q: %w", i, origin, destination, err)
			}
			if len(path) == 0 {
				return fmt.Errorf(
					"build loop: segment %d %q -> %q: %w",
					i, origin, destination, domain.ErrGeometryUnavailable,
				)
			}
			segments[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range segments {
		total += len(s)
	}

	loop := make(domain.Polyline, 0, total)
	for _, s := range segments {
		loop = append(loop, s...)
	}

	logger.Info("loop ready", zap.Int("points", len(loop)))
	return loop, nil
}
