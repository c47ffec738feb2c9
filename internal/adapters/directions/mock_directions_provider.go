package directions

import (
	"context"
	"fmt"
	"sync"
	"transport-simulator/internal/domain"
)

type MockPair struct {
	From, To string
	Path     domain.Polyline
}

type MockCall struct {
	Origin, Destination domain.Location
}

// MockDirectionsProvider serves scripted polylines keyed by location key.
// Coordinate pairs without a script get a straight two-point path.
type MockDirectionsProvider struct {
	mu    sync.Mutex
	m     map[string]domain.Polyline
	err   error
	calls []MockCall
}

func NewMockDirectionsProvider(pairs []MockPair) *MockDirectionsProvider {
	m := make(map[string]domain.Polyline, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Path
	}
	return &MockDirectionsProvider{m: m}
}

// SetError makes every following call fail with err until cleared with nil.
func (p *MockDirectionsProvider) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *MockDirectionsProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MockCall, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *MockDirectionsProvider) GetDirections(
	ctx context.Context,
	origin domain.Location,
	destination domain.Location,
) (domain.Polyline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, MockCall{Origin: origin, Destination: destination})

	if p.err != nil {
		return nil, fmt.Errorf("mock directions: %w: %w", domain.ErrGeometryUnavailable, p.err)
	}

	if path, ok := p.m[origin.Key()+"|"+destination.Key()]; ok {
		return path.Clone(), nil
	}

	if origin.Coords != nil && destination.Coords != nil {
		return domain.Polyline{*origin.Coords, *destination.Coords}, nil
	}

	return nil, fmt.Errorf("mock directions: %w: missing pair %q -> %q", domain.ErrGeometryUnavailable, origin, destination)
}
