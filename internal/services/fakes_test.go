package services

import (
	"context"
	"sync"
	"transport-simulator/internal/domain"
)

type recordingTransport struct {
	mu        sync.Mutex
	id        string
	locations []domain.Coordinates
	statuses  []domain.TransportStatus
	err       error
}

func (t *recordingTransport) ID() string { return t.id }

func (t *recordingTransport) UpdateLocation(_ context.Context, pos domain.Coordinates) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locations = append(t.locations, pos)
	return t.err
}

func (t *recordingTransport) UpdateStatus(_ context.Context, status domain.TransportStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = append(t.statuses, status)
	return t.err
}

func (t *recordingTransport) locationCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locations)
}

type commodityEvent struct {
	Kind        domain.ActionKind
	CommodityID string
	CarrierID   string
}

type recordingCommodities struct {
	mu     sync.Mutex
	events []commodityEvent
	err    error
}

func (c *recordingCommodities) PickedUp(_ context.Context, commodityID, carrierID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, commodityEvent{Kind: domain.ActionPickUp, CommodityID: commodityID, CarrierID: carrierID})
	return c.err
}

func (c *recordingCommodities) DroppedOff(_ context.Context, commodityID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, commodityEvent{Kind: domain.ActionDropOff, CommodityID: commodityID})
	return c.err
}

func (c *recordingCommodities) Events() []commodityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]commodityEvent, len(c.events))
	copy(out, c.events)
	return out
}
