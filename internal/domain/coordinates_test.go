package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatesMoveTowards(t *testing.T) {
	from := Coordinates{Lat: 0, Lon: 0}
	to := Coordinates{Lat: 3, Lon: 4}

	tests := []struct {
		name string
		d    float64
		want Coordinates
	}{
		{name: "partial step", d: 1, want: Coordinates{Lat: 0.6, Lon: 0.8}},
		{name: "exact distance snaps", d: 5, want: to},
		{name: "overshoot clamps to target", d: 50, want: to},
		{name: "zero budget stays", d: 0, want: from},
		{name: "negative budget stays", d: -1, want: from},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := from.MoveTowards(to, tt.d)
			assert.InDelta(t, tt.want.Lat, got.Lat, 1e-12)
			assert.InDelta(t, tt.want.Lon, got.Lon, 1e-12)
		})
	}
}

func TestCoordinatesDistanceTo(t *testing.T) {
	a := Coordinates{Lat: 1, Lon: 1}
	b := Coordinates{Lat: 4, Lon: 5}

	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-12)
	assert.InDelta(t, a.DistanceTo(b), b.DistanceTo(a), 1e-12)
	assert.Zero(t, a.DistanceTo(a))
}

func TestPolylineEndingAt(t *testing.T) {
	end := Coordinates{Lat: 1, Lon: 1}
	p := Polyline{{Lat: 0, Lon: 0}, end}

	same := p.EndingAt(end)
	require.Len(t, same, 2)

	extended := Polyline{{Lat: 0, Lon: 0}}.EndingAt(end)
	require.Len(t, extended, 2)
	assert.Equal(t, end, extended.Last())

	assert.Equal(t, Polyline{end}, Polyline(nil).EndingAt(end))
}

func TestServiceableDropsStartMarkers(t *testing.T) {
	in := []Action{
		{Kind: ActionStart},
		{Kind: ActionPickUp, CommodityID: "c1"},
		{Kind: ActionDropOff, CommodityID: "c1"},
	}

	out := Serviceable(in)
	require.Len(t, out, 2)
	assert.Equal(t, ActionPickUp, out[0].Kind)
	assert.Equal(t, ActionDropOff, out[1].Kind)
}

func TestParseActionKind(t *testing.T) {
	k, err := ParseActionKind("DROP_OFF")
	require.NoError(t, err)
	assert.Equal(t, ActionDropOff, k)

	_, err = ParseActionKind("TELEPORT")
	assert.Error(t, err)
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "1 Main St", AddressLocation("  1   Main St ").Key())
	assert.Equal(t, "43.472300,-80.544900", CoordinatesLocation(Coordinates{Lat: 43.4723, Lon: -80.5449}).Key())
	assert.True(t, Location{}.IsZero())
}
