package domain

import "fmt"

type ActionKind string

const (
	// ActionStart marks the beginning of a fleet route. It is never serviced.
	ActionStart   ActionKind = "START"
	ActionPickUp  ActionKind = "PICK_UP"
	ActionDropOff ActionKind = "DROP_OFF"
)

func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(s); k {
	case ActionStart, ActionPickUp, ActionDropOff:
		return k, nil
	default:
		return "", fmt.Errorf("parse action kind: unknown kind %q", s)
	}
}

// Action is a single assignment: travel to Target and pick up or drop off a commodity.
type Action struct {
	Kind        ActionKind  `json:"kind"`
	Target      Coordinates `json:"target"`
	CommodityID string      `json:"commodity_id"`
}

// Serviceable drops START markers, keeping the remaining actions in order.
func Serviceable(actions []Action) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.Kind == ActionStart {
			continue
		}
		out = append(out, a)
	}
	return out
}
