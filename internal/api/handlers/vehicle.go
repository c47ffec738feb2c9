package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"transport-simulator/internal/api/dto"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/services"

	"go.uber.org/zap"
)

// Vehicle is the simulated transport as seen by the HTTP API.
type Vehicle interface {
	Snapshot() services.VehicleSnapshot
	Loop() domain.Polyline
	OnActionsAssigned(ctx context.Context, actions []domain.Action) error
}

type VehicleHandler struct {
	Vehicle Vehicle
	Logger  *zap.Logger
}

// Get reports the current position, mode and action queue.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewVehicleResponse(h.Vehicle.Snapshot()))
}

// Loop returns the closed loop the vehicle circulates.
func (h *VehicleHandler) Loop(w http.ResponseWriter, r *http.Request) {
	loop := h.Vehicle.Loop()
	writeJSON(w, r, h.Logger, http.StatusOK, dto.LoopResponse{Points: loop, Count: len(loop)})
}

// AssignActions replaces the action list, the same way a routed fleet event does.
func (h *VehicleHandler) AssignActions(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignActionsRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, h.Logger, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	actions, err := req.DomainActions()
	if err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Vehicle.OnActionsAssigned(r.Context(), actions); err != nil {
		if errors.Is(err, domain.ErrGeometryUnavailable) {
			h.Logger.Warn("assign actions: no route", zap.Error(err))
			writeError(w, r, h.Logger, http.StatusBadGateway, "route geometry unavailable")
			return
		}
		h.Logger.Error("assign actions failed", zap.Error(err))
		writeError(w, r, h.Logger, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.NewVehicleResponse(h.Vehicle.Snapshot()))
}
