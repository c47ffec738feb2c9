package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"transport-simulator/internal/domain"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// fetchDirections retrieves the road geometry between two points from the
// OpenRouteService directions endpoint (GeoJSON output).
func (o *ORSDirectionsProvider) fetchDirections(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
) (domain.Polyline, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Features) == 0 {
		return nil, errors.New("directions response has no features")
	}

	raw := dr.Features[0].Geometry.Coordinates
	if len(raw) == 0 {
		return nil, errors.New("directions response has empty geometry")
	}

	// GeoJSON positions are [lon, lat] with an optional elevation.
	path := make(domain.Polyline, 0, len(raw))
	for i, p := range raw {
		if len(p) < 2 {
			return nil, fmt.Errorf("invalid position at index %d", i)
		}
		path = append(path, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}

	return path, nil
}
