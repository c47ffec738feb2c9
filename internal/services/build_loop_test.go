package services

import (
	"context"
	"errors"
	"testing"
	"transport-simulator/internal/adapters/directions"
	"transport-simulator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func segment(fromLat, fromLon, toLat, toLon float64, n int) domain.Polyline {
	out := make(domain.Polyline, 0, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n)
		out = append(out, domain.Coordinates{
			Lat: fromLat + (toLat-fromLat)*f,
			Lon: fromLon + (toLon-fromLon)*f,
		})
	}
	return out
}

func TestBuildLoopConcatenatesSegmentsInOrder(t *testing.T) {
	ab := segment(0, 0, 0, 0.01, 5)
	bc := segment(0, 0.01, 0.01, 0.01, 5)
	cd := segment(0.01, 0.01, 0.01, 0, 5)
	da := segment(0.01, 0, 0, 0, 5)

	provider := directions.NewMockDirectionsProvider([]directions.MockPair{
		{From: "A", To: "B", Path: ab},
		{From: "B", To: "C", Path: bc},
		{From: "C", To: "D", Path: cd},
		{From: "D", To: "A", Path: da},
	})

	waypoints := []domain.Location{
		domain.AddressLocation("A"),
		domain.AddressLocation("B"),
		domain.AddressLocation("C"),
		domain.AddressLocation("D"),
	}

	loop, err := BuildLoop(context.Background(), provider, waypoints, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, loop, 20)

	var want domain.Polyline
	for _, s := range []domain.Polyline{ab, bc, cd, da} {
		want = append(want, s...)
	}
	assert.Equal(t, want, loop)

	calls := provider.Calls()
	assert.Len(t, calls, 4)
}

func TestBuildLoopTwoWaypointsIncludesWrapLeg(t *testing.T) {
	provider := directions.NewMockDirectionsProvider([]directions.MockPair{
		{From: "A", To: "B", Path: domain.Polyline{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}},
		{From: "B", To: "A", Path: domain.Polyline{{Lat: 0, Lon: 2}, {Lat: 0, Lon: 3}}},
	})

	loop, err := BuildLoop(context.Background(), provider, []domain.Location{
		domain.AddressLocation("A"),
		domain.AddressLocation("B"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Polyline{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}, {Lat: 0, Lon: 3}}, loop)
}

func TestBuildLoopFailsOnAnySegment(t *testing.T) {
	provider := directions.NewMockDirectionsProvider([]directions.MockPair{
		{From: "A", To: "B", Path: domain.Polyline{{Lat: 0, Lon: 0}}},
		// B -> A is missing.
	})

	loop, err := BuildLoop(context.Background(), provider, []domain.Location{
		domain.AddressLocation("A"),
		domain.AddressLocation("B"),
	}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, loop)
	assert.ErrorIs(t, err, domain.ErrGeometryUnavailable)
}

func TestBuildLoopFailsOnProviderError(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(nil)
	provider.SetError(errors.New("dns failure"))

	_, err := BuildLoop(context.Background(), provider, []domain.Location{
		domain.CoordinatesLocation(domain.Coordinates{Lat: 0, Lon: 0}),
		domain.CoordinatesLocation(domain.Coordinates{Lat: 1, Lon: 1}),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrGeometryUnavailable)
}

func TestBuildLoopRejectsEmptySegment(t *testing.T) {
	provider := directions.NewMockDirectionsProvider([]directions.MockPair{
		{From: "A", To: "B", Path: domain.Polyline{{Lat: 0, Lon: 0}}},
		{From: "B", To: "A", Path: domain.Polyline{}},
	})

	_, err := BuildLoop(context.Background(), provider, []domain.Location{
		domain.AddressLocation("A"),
		domain.AddressLocation("B"),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrGeometryUnavailable)
}

func TestBuildLoopNeedsTwoWaypoints(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(nil)

	_, err := BuildLoop(context.Background(), provider, []domain.Location{domain.AddressLocation("A")}, nil)
	assert.Error(t, err)
	assert.Empty(t, provider.Calls())
}

func TestEngineConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultEngineConfig().Validate())
	assert.NoError(t, EngineConfig{Delta: 0.002, Epsilon: 0.002}.Validate())
	assert.Error(t, EngineConfig{Delta: 0, Epsilon: 0.002}.Validate())
	assert.Error(t, EngineConfig{Delta: 0.002, Epsilon: 0.0019}.Validate())
}
