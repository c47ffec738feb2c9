package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID tags ctx so timed operations can be correlated with the
// request or message that triggered them.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time logs the duration of an operation. Use as
//
//	defer obs.Time(ctx, logger, "op")(&err)
func Time(ctx context.Context, logger *zap.Logger, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Duration("dur", time.Since(start)),
		}

		if errp != nil && *errp != nil {
			logger.Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		logger.Debug("operation complete", fields...)
	}
}
