package domain

type TransportStatus string

const (
	TransportOnline  TransportStatus = "ONLINE"
	TransportOffline TransportStatus = "OFFLINE"
)

// Mode is the movement state derived from the action queue and the detour path.
type Mode int

const (
	// ModeOnLoop: no actions, no detour. The vehicle circulates the loop.
	ModeOnLoop Mode = iota
	// ModeReturning: no actions, detour set. The vehicle heads back to the loop start.
	ModeReturning
	// ModeServicing: actions queued. The vehicle follows the detour to the queue head.
	ModeServicing
)

func (m Mode) String() string {
	switch m {
	case ModeOnLoop:
		return "ON_LOOP"
	case ModeReturning:
		return "RETURNING"
	case ModeServicing:
		return "SERVICING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets Mode render by name in JSON responses and logs.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
