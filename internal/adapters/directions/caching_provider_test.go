package directions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"transport-simulator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRouteCache struct {
	mu     sync.Mutex
	m      map[string]domain.Polyline
	getErr error
}

func (c *memoryRouteCache) Get(_ context.Context, origin, destination string) (domain.Polyline, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.m[origin+"|"+destination]
	return p, ok, nil
}

func (c *memoryRouteCache) Put(_ context.Context, origin, destination string, path domain.Polyline) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[origin+"|"+destination] = path
	return nil
}

func TestCachingProviderServesRepeatsFromCache(t *testing.T) {
	path := domain.Polyline{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}
	mock := NewMockDirectionsProvider([]MockPair{{From: "A", To: "B", Path: path}})
	cache := &memoryRouteCache{m: map[string]domain.Polyline{}}
	p := NewCachingDirectionsProvider(mock, cache, nil)

	for i := 0; i < 3; i++ {
		got, err := p.GetDirections(context.Background(), domain.AddressLocation("A"), domain.AddressLocation("B"))
		require.NoError(t, err)
		assert.Equal(t, path, got)
	}

	assert.Len(t, mock.Calls(), 1)
}

func TestCachingProviderFallsThroughOnCacheError(t *testing.T) {
	mock := NewMockDirectionsProvider(nil)
	cache := &memoryRouteCache{m: map[string]domain.Polyline{}, getErr: errors.New("redis down")}
	p := NewCachingDirectionsProvider(mock, cache, nil)

	from := domain.CoordinatesLocation(domain.Coordinates{Lat: 0, Lon: 0})
	to := domain.CoordinatesLocation(domain.Coordinates{Lat: 1, Lon: 0})

	got, err := p.GetDirections(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, mock.Calls(), 1)
}

func TestCachingProviderDoesNotCacheFailures(t *testing.T) {
	mock := NewMockDirectionsProvider(nil)
	mock.SetError(errors.New("offline"))
	cache := &memoryRouteCache{m: map[string]domain.Polyline{}}
	p := NewCachingDirectionsProvider(mock, cache, nil)

	_, err := p.GetDirections(context.Background(), domain.AddressLocation("A"), domain.AddressLocation("B"))
	require.ErrorIs(t, err, domain.ErrGeometryUnavailable)
	assert.Empty(t, cache.m)
}
