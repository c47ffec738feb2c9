package api

import (
	"net/http"
	"transport-simulator/internal/api/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(vehicle handlers.Vehicle, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	vh := &handlers.VehicleHandler{Vehicle: vehicle, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(logger))

	r.Get("/health", handlers.Health)
	r.Get("/vehicle", vh.Get)
	r.Get("/loop", vh.Loop)
	r.Post("/actions", vh.AssignActions)

	return r
}
