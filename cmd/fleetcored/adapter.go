package main

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/openhaul/fleetcore/core"
)

// standaloneAdapter is a minimal WorldAdapter for running fleetcored
// without a host simulation attached. It has no tiles, no entities beyond
// what agents themselves track, and answers every path request with a
// straight line from start to goal; it exists so the engine's tick loop
// and console have something real to drive, not as a production world
// backend (§1 Non-goals: host simulation is out of scope for THE CORE).
type standaloneAdapter struct {
	log *slog.Logger

	mu         sync.Mutex
	nextHandle core.RenderHandle
	pending    []pendingPath
}

type pendingPath struct {
	requestID int64
	result    core.PathResult
}

func newStandaloneAdapter(log *slog.Logger) *standaloneAdapter {
	return &standaloneAdapter{log: log}
}

func (a *standaloneAdapter) FindEntities(surface string, rect core.Rect, filter core.EntityFilter) []core.EntityID {
	return nil
}

func (a *standaloneAdapter) IsRegisteredForDeconstruction(entity core.EntityID, force core.Force) bool {
	return false
}

// RegisterOnDestroyed derives the id from the entity handle itself, so the
// same entity always gets the same number across calls.
func (a *standaloneAdapter) RegisterOnDestroyed(entity core.EntityID) uint64 {
	return uint64(entity)
}

// UnitNumber always reports none: the standalone adapter has no host world
// assigning unit numbers, so every entity falls back to the destroyedId_N
// namespace via RegisterOnDestroyed (§6.1, GLOSSARY).
func (a *standaloneAdapter) UnitNumber(entity core.EntityID) (uint64, bool) {
	return 0, false
}

// RequestPath queues a synthetic straight-line result to be delivered on
// the next drainPaths call rather than delivering it inline, so the
// caller (a task's Progress, itself called from inside the engine) never
// recurses back into the engine on the same stack.
func (a *standaloneAdapter) RequestPath(req core.PathRequest) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := int64(len(a.pending)) + 1
	a.pending = append(a.pending, pendingPath{
		requestID: id,
		result: core.PathResult{
			Path: []core.Waypoint{{Position: req.Start}, {Position: req.Goal}},
		},
	})
	return id
}

// drainPaths delivers every path request queued since the last drain. The
// tick loop calls this once per tick, before Agents.Tick, so results land
// on the tick following the request rather than synchronously.
func (a *standaloneAdapter) drainPaths(eng *core.Engine) {
	a.mu.Lock()
	due := a.pending
	a.pending = nil
	a.mu.Unlock()

	for _, p := range due {
		eng.DeliverPathResult(p.requestID, p.result)
	}
}

func (a *standaloneAdapter) MineEntity(entity core.EntityID, intoInventory core.EntityID) (core.MineResult, error) {
	return core.MineResult{OK: true, AllItemsFit: true}, nil
}

func (a *standaloneAdapter) SetWalkingCommand(entity core.EntityID, cmd core.WalkingCommand) {}

func (a *standaloneAdapter) ClearWalkingCommand(entity core.EntityID) {}

func (a *standaloneAdapter) EntityPosition(entity core.EntityID) (mgl64.Vec2, bool) {
	return mgl64.Vec2{}, false
}

func (a *standaloneAdapter) EntityName(entity core.EntityID) string { return "" }

func (a *standaloneAdapter) EntityType(entity core.EntityID) string { return "" }

func (a *standaloneAdapter) EntityValid(entity core.EntityID) bool { return true }

func (a *standaloneAdapter) PrototypeAttribute(category, name, attribute string) (any, bool) {
	return nil, false
}

func (a *standaloneAdapter) RenderText(surface string, pos mgl64.Vec2, text string, severity core.Severity) core.RenderHandle {
	return a.allocHandle()
}

func (a *standaloneAdapter) RenderRectangle(surface string, rect core.Rect) core.RenderHandle {
	return a.allocHandle()
}

func (a *standaloneAdapter) RenderPath(surface string, waypoints []core.Waypoint) core.RenderHandle {
	return a.allocHandle()
}

func (a *standaloneAdapter) DestroyRender(handle core.RenderHandle) {}

func (a *standaloneAdapter) CurrentTick() int64 { return 0 }

func (a *standaloneAdapter) allocHandle() core.RenderHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextHandle++
	return a.nextHandle
}
