package fleet

import (
	"encoding/json"
	"fmt"
	"time"
	"transport-simulator/internal/domain"

	"github.com/google/uuid"
)

// Message types exchanged with the fleet system.
const (
	TypeRouted      = "transport.routed"
	TypeCreated     = "transport.created"
	TypeLocation    = "transport.location"
	TypeStatus      = "transport.status"
	TypePickedUp    = "commodity.picked_up"
	TypeDroppedOff  = "commodity.dropped_off"
	envelopeVersion = 1
)

// Envelope wraps every fleet message.
type Envelope struct {
	Version     int             `json:"v"`
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	TransportID string          `json:"transport_id"`
	Timestamp   time.Time       `json:"ts"`
	Payload     json.RawMessage `json:"payload"`
}

func NewEnvelope(msgType, transportID string, payload any) (*Envelope, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("new envelope %s: %w", msgType, err)
	}

	return &Envelope{
		Version:     envelopeVersion,
		ID:          uuid.New().String(),
		Type:        msgType,
		TransportID: transportID,
		Timestamp:   time.Now().UTC(),
		Payload:     p,
	}, nil
}

func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode envelope: missing type")
	}
	return &env, nil
}

// ParsePayload decodes the payload into v.
func (e *Envelope) ParsePayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("parse %s payload: %w", e.Type, err)
	}
	return nil
}

type ActionPayload struct {
	Kind        string  `json:"kind"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	CommodityID string  `json:"commodity_id"`
}

// RoutedPayload is the ordered action list assigned to a transport.
type RoutedPayload struct {
	Actions []ActionPayload `json:"actions"`
}

// DomainActions converts the payload, rejecting unknown action kinds.
func (p RoutedPayload) DomainActions() ([]domain.Action, error) {
	out := make([]domain.Action, 0, len(p.Actions))
	for i, a := range p.Actions {
		kind, err := domain.ParseActionKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, domain.Action{
			Kind:        kind,
			Target:      domain.Coordinates{Lat: a.Lat, Lon: a.Lng},
			CommodityID: a.CommodityID,
		})
	}
	return out, nil
}

type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type StatusPayload struct {
	Status domain.TransportStatus `json:"status"`
}

type CommodityPayload struct {
	CommodityID string `json:"commodity_id"`
	CarrierID   string `json:"carrier_id,omitempty"`
}

// CreatedPayload registers a transport with its start position and metadata.
type CreatedPayload struct {
	Lat      float64                `json:"lat"`
	Lng      float64                `json:"lng"`
	Status   domain.TransportStatus `json:"status"`
	Metadata map[string]any         `json:"metadata,omitempty"`
}
