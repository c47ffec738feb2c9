package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run ticks the engine every interval until ctx is cancelled.
func (e *MovementEngine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("movement loop started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("movement loop stopped")
			return nil
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}
