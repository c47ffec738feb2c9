package dto

import (
	"fmt"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/services"
)

type ActionRequest struct {
	Kind        string  `json:"kind"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	CommodityID string  `json:"commodity_id"`
}

type AssignActionsRequest struct {
	Actions []ActionRequest `json:"actions"`
}

// DomainActions validates the request. PICK_UP and DROP_OFF need a commodity id.
func (r AssignActionsRequest) DomainActions() ([]domain.Action, error) {
	out := make([]domain.Action, 0, len(r.Actions))
	for i, a := range r.Actions {
		kind, err := domain.ParseActionKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		if kind != domain.ActionStart && a.CommodityID == "" {
			return nil, fmt.Errorf("actions[%d]: commodity_id is required for %s", i, kind)
		}
		if a.Lat < -90 || a.Lat > 90 || a.Lng < -180 || a.Lng > 180 {
			return nil, fmt.Errorf("actions[%d]: coordinates out of range", i)
		}
		out = append(out, domain.Action{
			Kind:        kind,
			Target:      domain.Coordinates{Lat: a.Lat, Lon: a.Lng},
			CommodityID: a.CommodityID,
		})
	}
	return out, nil
}

type VehicleResponse struct {
	Position   domain.Coordinates   `json:"position"`
	Mode       string               `json:"mode"`
	NextIndex  int                  `json:"next_index"`
	Detour     []domain.Coordinates `json:"detour"`
	Actions    []domain.Action      `json:"actions"`
	Waiting    bool                 `json:"waiting"`
	RerouteDue bool                 `json:"reroute_due"`
}

func NewVehicleResponse(s services.VehicleSnapshot) VehicleResponse {
	res := VehicleResponse{
		Position:   s.Position,
		Mode:       s.Mode.String(),
		NextIndex:  s.NextIndex,
		Detour:     []domain.Coordinates(s.Detour),
		Actions:    s.Actions,
		Waiting:    s.Waiting,
		RerouteDue: s.RerouteDue,
	}
	// Empty slices render as [] rather than null.
	if res.Detour == nil {
		res.Detour = []domain.Coordinates{}
	}
	if res.Actions == nil {
		res.Actions = []domain.Action{}
	}
	return res
}

type LoopResponse struct {
	Points []domain.Coordinates `json:"points"`
	Count  int                  `json:"count"`
}
