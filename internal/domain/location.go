package domain

import "strings"

// Location identifies a route endpoint: either a free-form address or explicit coordinates.
type Location struct {
	Address string
	Coords  *Coordinates
}

func AddressLocation(address string) Location {
	return Location{Address: strings.Join(strings.Fields(address), " ")}
}

func CoordinatesLocation(c Coordinates) Location {
	return Location{Coords: &c}
}

// IsZero reports whether neither an address nor coordinates are set.
func (l Location) IsZero() bool { return l.Coords == nil && l.Address == "" }

// Key is a stable identifier suitable for cache keys and logs.
func (l Location) Key() string {
	if l.Coords != nil {
		return l.Coords.Key()
	}
	return l.Address
}

func (l Location) String() string { return l.Key() }
