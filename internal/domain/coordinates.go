package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude).
//
// Distances are planar in degree units. Movement budgets and arrival
// thresholds use the same units, so no geodesic correction is applied.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// DistanceTo returns the straight-line distance to o.
func (c Coordinates) DistanceTo(o Coordinates) float64 {
	return math.Hypot(o.Lat-c.Lat, o.Lon-c.Lon)
}

// MoveTowards steps from c toward target by d, never past it.
func (c Coordinates) MoveTowards(target Coordinates, d float64) Coordinates {
	dist := c.DistanceTo(target)
	if dist == 0 || d >= dist {
		return target
	}
	if d <= 0 {
		return c
	}

	f := d / dist
	return Coordinates{
		Lat: c.Lat + (target.Lat-c.Lat)*f,
		Lon: c.Lon + (target.Lon-c.Lon)*f,
	}
}

// Key renders the coordinates as "lat,lon", the form used for cache keys and query strings.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

func (c Coordinates) String() string { return "(" + c.Key() + ")" }
