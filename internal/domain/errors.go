package domain

import "errors"

var (
	// ErrGeometryUnavailable wraps every failure to obtain route geometry.
	ErrGeometryUnavailable = errors.New("route geometry unavailable")
	// ErrInvalidActionSequence marks an action at the queue head that cannot be serviced.
	ErrInvalidActionSequence = errors.New("invalid action sequence")
	ErrEmptyPolyline         = errors.New("empty polyline")
)
