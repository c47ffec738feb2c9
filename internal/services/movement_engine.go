package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/ports"

	"go.uber.org/zap"
)

// Absorbs floating point error when deciding whether a waypoint is within budget.
const snapTolerance = 1e-12

// VehicleState is everything a tick reads and writes.
//
// NextIndex points into the detour while one is set, otherwise into the loop.
type VehicleState struct {
	Position  domain.Coordinates
	NextIndex int
	Detour    domain.Polyline
	Actions   []domain.Action
}

func (s VehicleState) Mode() domain.Mode {
	switch {
	case len(s.Actions) > 0:
		return domain.ModeServicing
	case len(s.Detour) > 0:
		return domain.ModeReturning
	default:
		return domain.ModeOnLoop
	}
}

// VehicleSnapshot is a read-only copy of the engine state.
type VehicleSnapshot struct {
	Position   domain.Coordinates `json:"position"`
	Mode       domain.Mode        `json:"mode"`
	NextIndex  int                `json:"next_index"`
	Detour     domain.Polyline    `json:"detour"`
	Actions    []domain.Action    `json:"actions"`
	Waiting    bool               `json:"waiting"`
	RerouteDue bool               `json:"reroute_due"`
}

// MovementEngine moves a simulated transport around a fixed loop and diverts it
// to service assigned pickup and drop-off actions.
//
// Tick, Advance and OnActionsAssigned are serialized by a single mutex. Route
// geometry is fetched synchronously while the lock is held, so a slow provider
// delays the next tick instead of racing it.
type MovementEngine struct {
	mu sync.Mutex

	cfg   EngineConfig
	loop  domain.Polyline
	state VehicleState

	// waiting parks the vehicle until the first assignment when HoldUntilRouted is set.
	waiting bool
	// rerouteDue is set when a detour recompute failed and must be retried.
	rerouteDue bool
	stopped    bool

	directions  ports.DirectionsProvider
	commodities ports.CommodityNotifier
	transport   ports.Transport
	logger      *zap.Logger
}

func NewMovementEngine(
	loop domain.Polyline,
	directions ports.DirectionsProvider,
	commodities ports.CommodityNotifier,
	cfg EngineConfig,
	logger *zap.Logger,
) (*MovementEngine, error) {
	if len(loop) == 0 {
		return nil, fmt.Errorf("new movement engine: loop: %w", domain.ErrEmptyPolyline)
	}
	if directions == nil {
		return nil, errors.New("new movement engine: directions provider is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new movement engine: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	loop = loop.Clone()
	return &MovementEngine{
		cfg:  cfg,
		loop: loop,
		state: VehicleState{
			Position:  loop[0],
			NextIndex: 1 % len(loop),
		},
		waiting:     cfg.HoldUntilRouted,
		directions:  directions,
		commodities: commodities,
		logger:      logger,
	}, nil
}

// Attach binds the live fleet transport. Location updates are only sent while attached.
func (e *MovementEngine) Attach(t ports.Transport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transport = t
}

// Start returns the loop start anchor.
func (e *MovementEngine) Start() domain.Coordinates { return e.loop[0] }

// Loop returns a copy of the loop polyline.
func (e *MovementEngine) Loop() domain.Polyline { return e.loop.Clone() }

func (e *MovementEngine) Snapshot() VehicleSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	actions := make([]domain.Action, len(e.state.Actions))
	copy(actions, e.state.Actions)

	return VehicleSnapshot{
		Position:   e.state.Position,
		Mode:       e.state.Mode(),
		NextIndex:  e.state.NextIndex,
		Detour:     e.state.Detour.Clone(),
		Actions:    actions,
		Waiting:    e.waiting,
		RerouteDue: e.rerouteDue,
	}
}

// Tick advances the vehicle by the configured delta and reports the new
// location to the attached transport, if any.
func (e *MovementEngine) Tick(ctx context.Context) domain.Coordinates {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.waiting || e.stopped {
		return e.state.Position
	}

	pos := e.advance(ctx, e.cfg.Delta)
	if e.transport != nil {
		if err := e.transport.UpdateLocation(ctx, pos); err != nil {
			e.logger.Warn("location update failed", zap.Stringer("position", pos), zap.Error(err))
		}
	}
	return pos
}

// Advance moves the vehicle at most delta along its active path and returns
// the new position. A non-positive delta is a no-op.
func (e *MovementEngine) Advance(ctx context.Context, delta float64) domain.Coordinates {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advance(ctx, delta)
}

func (e *MovementEngine) advance(ctx context.Context, delta float64) domain.Coordinates {
	if delta <= 0 {
		return e.state.Position
	}

	if e.rerouteDue && e.state.Mode() != domain.ModeOnLoop {
		e.reroute(ctx)
	}
	e.checkArrival(ctx)
	e.walk(delta)

	return e.state.Position
}

// checkArrival completes the queue head when the vehicle is within epsilon of it.
func (e *MovementEngine) checkArrival(ctx context.Context) {
	if len(e.state.Actions) == 0 {
		return
	}

	head := e.state.Actions[0]
	if e.state.Position.DistanceTo(head.Target) >= e.cfg.Epsilon {
		return
	}

	e.complete(ctx, head)
	e.state.Actions = e.state.Actions[1:]
	if len(e.state.Actions) == 0 {
		e.state.Actions = nil
		e.logger.Info("completed final action, returning to loop")
	} else {
		e.logger.Info("completed action, heading to next", zap.Int("remaining", len(e.state.Actions)))
	}
	e.reroute(ctx)
}

func (e *MovementEngine) complete(ctx context.Context, a domain.Action) {
	if e.commodities == nil {
		return
	}

	var err error
	switch a.Kind {
	case domain.ActionPickUp:
		err = e.commodities.PickedUp(ctx, a.CommodityID, e.carrierID())
	case domain.ActionDropOff:
		err = e.commodities.DroppedOff(ctx, a.CommodityID)
	default:
		e.logger.DPanic("cannot complete action",
			zap.String("kind", string(a.Kind)),
			zap.String("commodity_id", a.CommodityID),
			zap.Error(domain.ErrInvalidActionSequence),
		)
		return
	}
	if err != nil {
		e.logger.Warn("commodity notification failed",
			zap.String("kind", string(a.Kind)),
			zap.String("commodity_id", a.CommodityID),
			zap.Error(err),
		)
	}
}

func (e *MovementEngine) carrierID() string {
	if e.transport == nil {
		return ""
	}
	return e.transport.ID()
}

// reroute points the detour at the queue head, or back at the loop start when
// the queue is empty. On failure the previous detour is kept and the recompute
// is retried on the next tick.
func (e *MovementEngine) reroute(ctx context.Context) {
	target := e.loop[0]
	if len(e.state.Actions) > 0 {
		target = e.state.Actions[0].Target
	}

	path, err := e.fetchDetour(ctx, target)
	if err != nil {
		e.rerouteDue = true
		e.logger.Error("reroute failed, keeping previous path",
			zap.Stringer("from", e.state.Position),
			zap.Stringer("to", target),
			zap.Error(err),
		)
		return
	}

	e.rerouteDue = false
	e.setDetour(path)
}

func (e *MovementEngine) fetchDetour(ctx context.Context, target domain.Coordinates) (domain.Polyline, error) {
	path, err := e.directions.GetDirections(
		ctx,
		domain.CoordinatesLocation(e.state.Position),
		domain.CoordinatesLocation(target),
	)
	if err != nil {
		if !errors.Is(err, domain.ErrGeometryUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrGeometryUnavailable, err)
		}
		return nil, fmt.Errorf("fetch detour to %s: %w", target, err)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("fetch detour to %s: %w: %w", target, domain.ErrGeometryUnavailable, domain.ErrEmptyPolyline)
	}

	// The walk relies on a detour finishing exactly at its target.
	return path.EndingAt(target), nil
}

func (e *MovementEngine) setDetour(path domain.Polyline) {
	e.state.Detour = path
	e.state.NextIndex = 0
	if len(path) > 1 {
		e.state.NextIndex = 1
	}
	e.logger.Info("detour set",
		zap.Stringer("mode", e.state.Mode()),
		zap.Int("points", len(path)),
		zap.Stringer("to", path.Last()),
	)
}

// walk spends the budget along the active path, snapping to each waypoint it
// reaches and carrying the leftover into the next segment.
func (e *MovementEngine) walk(budget float64) {
	remaining := budget
	stalled := 0

	for remaining > 0 {
		onLoop := len(e.state.Detour) == 0
		path := e.state.Detour
		if onLoop {
			path = e.loop
		}

		next := path[e.state.NextIndex]
		d := e.state.Position.DistanceTo(next)
		if d-remaining > snapTolerance {
			e.state.Position = e.state.Position.MoveTowards(next, remaining)
			return
		}

		// Degenerate paths of repeated points would otherwise spin forever.
		if d == 0 {
			stalled++
			if stalled > len(path) {
				return
			}
		} else {
			stalled = 0
		}

		e.state.Position = next
		remaining -= d

		if onLoop {
			e.state.NextIndex = (e.state.NextIndex + 1) % len(path)
			continue
		}
		if e.state.NextIndex+1 < len(path) {
			e.state.NextIndex++
			continue
		}

		// Detour exhausted. A servicing vehicle now sits on its target and
		// waits for the next tick's arrival check. A return detour only hands
		// over to the loop when it actually ends at the loop start; otherwise
		// the vehicle holds until the pending reroute succeeds.
		if e.state.Mode() == domain.ModeServicing {
			return
		}
		if e.rerouteDue || path.Last() != e.loop[0] {
			return
		}

		e.state.Detour = nil
		e.state.NextIndex = 0
		e.logger.Info("rejoined loop", zap.Stringer("position", e.state.Position))
	}
}

// OnActionsAssigned folds a new assignment list into the queue.
//
// START markers are dropped. A new head target, or a transition between empty
// and non-empty, fetches a fresh detour; otherwise only the queue contents are
// replaced and the walk continues undisturbed. When the fetch fails the
// previous state is left untouched and the error is returned. Assignments
// arriving after Stop are ignored.
func (e *MovementEngine) OnActionsAssigned(ctx context.Context, actions []domain.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		e.logger.Debug("ignoring actions after stop", zap.Int("actions", len(actions)))
		return nil
	}

	next := domain.Serviceable(actions)
	if len(next) == 0 {
		next = nil
	}
	cur := e.state.Actions

	switch {
	case len(next) > 0 && (len(cur) == 0 || next[0].Target != cur[0].Target):
		path, err := e.fetchDetour(ctx, next[0].Target)
		if err != nil {
			return fmt.Errorf("assign actions: %w", err)
		}
		e.logger.Info("switching to new actions",
			zap.Int("actions", len(next)),
			zap.Stringer("head", next[0].Target),
		)
		e.state.Actions = next
		e.rerouteDue = false
		e.setDetour(path)

	case len(next) == 0 && len(cur) > 0:
		path, err := e.fetchDetour(ctx, e.loop[0])
		if err != nil {
			return fmt.Errorf("assign actions: %w", err)
		}
		e.logger.Info("actions withdrawn, returning to loop")
		e.state.Actions = nil
		e.rerouteDue = false
		e.setDetour(path)

	default:
		e.logger.Debug("using new actions without new directions", zap.Int("actions", len(next)))
		e.state.Actions = next
	}

	e.waiting = false
	return nil
}

// Stop reports the transport offline. Only the first call has an effect.
func (e *MovementEngine) Stop(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}
	e.stopped = true

	if e.transport == nil {
		return
	}
	e.logger.Info("taking transport offline", zap.String("transport_id", e.transport.ID()))
	if err := e.transport.UpdateStatus(ctx, domain.TransportOffline); err != nil {
		e.logger.Warn("status update failed", zap.Error(err))
	}
}
