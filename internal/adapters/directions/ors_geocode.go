package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocodeMany resolves addresses individually using OpenRouteService (/geocode/search).
// Calls are deduplicated and may be retried via doWithRetry.
func (o *ORSDirectionsProvider) geocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, o.logger, "ors.geocodeMany")(&err)

	endpoint := o.baseURL + "/geocode/search"

	out := make(map[string]domain.Coordinates, len(addresses))
	for _, a := range addresses {
		norm := o.normalize(a)
		if _, ok := out[norm]; ok {
			continue
		}

		c, err := o.geocodeOne(ctx, endpoint, norm)
		if err != nil {
			return nil, err
		}
		out[norm] = c
	}

	return out, nil
}

func (o *ORSDirectionsProvider) geocodeOne(ctx context.Context, endpoint, address string) (domain.Coordinates, error) {
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
