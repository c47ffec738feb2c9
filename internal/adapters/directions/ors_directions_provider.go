package directions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/platform/obs"
	"transport-simulator/internal/ports"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "driving-car"
)

// ORSDirectionsProvider implements DirectionsProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching for address endpoints
//   - Directions requests with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDirectionsProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	geocodeCache ports.GeocodeCache
	logger       *zap.Logger
}

func NewORSDirectionsProvider(
	apiKey string,
	profile string,
	geocodeCache ports.GeocodeCache,
	logger *zap.Logger,
) (*ORSDirectionsProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if profile == "" {
		profile = defaultProfile
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := &ORSDirectionsProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		profile:      profile,
		geocodeCache: geocodeCache,
		logger:       logger.Named("ors"),
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSDirectionsProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GetDirections resolves both endpoints to coordinates and returns the road
// geometry between them. Every failure wraps domain.ErrGeometryUnavailable.
func (o *ORSDirectionsProvider) GetDirections(
	ctx context.Context,
	origin domain.Location,
	destination domain.Location,
) (_ domain.Polyline, err error) {
	defer obs.Time(ctx, o.logger, "ors.GetDirections")(&err)

	if origin.IsZero() || destination.IsZero() {
		return nil, fmt.Errorf("get ORS directions: %w: origin and destination must be non-empty", domain.ErrGeometryUnavailable)
	}

	coords, err := o.resolve(ctx, origin, destination)
	if err != nil {
		return nil, fmt.Errorf("get ORS directions %q -> %q: %w: %w", origin, destination, domain.ErrGeometryUnavailable, err)
	}

	path, err := o.fetchDirections(ctx, coords[0], coords[1])
	if err != nil {
		return nil, fmt.Errorf("get ORS directions %q -> %q: %w: %w", origin, destination, domain.ErrGeometryUnavailable, err)
	}

	return path, nil
}

// resolve maps each location to coordinates, geocoding addresses through the cache.
func (o *ORSDirectionsProvider) resolve(ctx context.Context, locations ...domain.Location) ([]domain.Coordinates, error) {
	addresses := make([]string, 0, len(locations))
	for _, l := range locations {
		if l.Coords == nil {
			addresses = append(addresses, o.normalize(l.Address))
		}
	}

	var byAddress map[string]domain.Coordinates
	if len(addresses) > 0 {
		var err error
		byAddress, err = o.geocodeAddresses(ctx, addresses)
		if err != nil {
			return nil, err
		}
	}

	out := make([]domain.Coordinates, 0, len(locations))
	for _, l := range locations {
		if l.Coords != nil {
			out = append(out, *l.Coords)
			continue
		}

		c, ok := byAddress[o.normalize(l.Address)]
		if !ok {
			return nil, fmt.Errorf("missing coordinate for %q", l.Address)
		}
		out = append(out, c)
	}

	return out, nil
}

func (o *ORSDirectionsProvider) geocodeAddresses(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	hits := make(map[string]domain.Coordinates)
	// Check persistent geocode cache before issuing external API calls.
	if o.geocodeCache != nil {
		var err error
		hits, err = o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	if len(misses) == 0 {
		return hits, nil
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}

	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			o.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	return out, nil
}
