package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// fakeEntity is one entity tracked by fakeWorld: enough state for the task
// kinds under test to drive pathfinding, walking and mining against it.
type fakeEntity struct {
	id       EntityID
	name     string
	typ      string
	pos      mgl64.Vec2
	valid    bool
	deconstr bool
	force    Force

	walking    bool
	direction  Direction
	speedPerTick float64

	unitNumber    uint64
	hasUnitNumber bool
}

// withUnitNumber opts an entity into the world-unit-number namespace,
// instead of the destroyedId_N fallback every other fake entity falls back
// to (§6.1, GLOSSARY).
func (e *fakeEntity) withUnitNumber(n uint64) *fakeEntity {
	e.unitNumber = n
	e.hasUnitNumber = true
	return e
}

// fakeWorld is an in-memory WorldAdapter used across task-kind tests. Path
// requests resolve synchronously (straight line start->goal) the next time
// DeliverQueued is called, so tests control exactly when a task sees its
// path result rather than racing real concurrency, mirroring the teacher's
// own synchronous world.Tx test doubles.
type fakeWorld struct {
	tick int64

	entities   map[EntityID]*fakeEntity
	nextHandle RenderHandle

	queuedPaths []queuedPath
	requestSeq  int64

	mineResult MineResult
	mineErr    error
	mineCalls  int
}

type queuedPath struct {
	requestID int64
	result    PathResult
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		entities:   make(map[EntityID]*fakeEntity),
		mineResult: MineResult{OK: true, AllItemsFit: true},
	}
}

func (w *fakeWorld) addEntity(id EntityID, name, typ string, pos mgl64.Vec2, force Force, deconstr bool) *fakeEntity {
	e := &fakeEntity{id: id, name: name, typ: typ, pos: pos, valid: true, force: force, deconstr: deconstr}
	w.entities[id] = e
	return e
}

func (w *fakeWorld) FindEntities(surface string, rect Rect, filter EntityFilter) []EntityID {
	var out []EntityID
	for id, e := range w.entities {
		if !e.valid || !rect.Contains(e.pos) {
			continue
		}
		if filter.Force != "" && e.force != filter.Force {
			continue
		}
		if filter.ToBeDeconstructed && !e.deconstr {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (w *fakeWorld) IsRegisteredForDeconstruction(entity EntityID, force Force) bool {
	e, ok := w.entities[entity]
	return ok && e.deconstr && e.force == force
}

// RegisterOnDestroyed derives the id from the entity handle itself, so the
// same entity always gets the same number, as the interface requires.
func (w *fakeWorld) RegisterOnDestroyed(entity EntityID) uint64 {
	return uint64(entity)
}

func (w *fakeWorld) UnitNumber(entity EntityID) (uint64, bool) {
	e, ok := w.entities[entity]
	if !ok || !e.hasUnitNumber {
		return 0, false
	}
	return e.unitNumber, true
}

func (w *fakeWorld) RequestPath(req PathRequest) int64 {
	w.requestSeq++
	w.queuedPaths = append(w.queuedPaths, queuedPath{
		requestID: w.requestSeq,
		result:    PathResult{Path: []Waypoint{{Position: req.Start}, {Position: req.Goal}}},
	})
	return w.requestSeq
}

// DeliverQueued flushes every path request queued since the last call,
// delivering results through eng.DeliverPathResult.
func (w *fakeWorld) DeliverQueued(eng *Engine) {
	due := w.queuedPaths
	w.queuedPaths = nil
	for _, p := range due {
		eng.DeliverPathResult(p.requestID, p.result)
	}
}

func (w *fakeWorld) MineEntity(entity EntityID, intoInventory EntityID) (MineResult, error) {
	w.mineCalls++
	if e, ok := w.entities[entity]; ok {
		e.valid = false
	}
	return w.mineResult, w.mineErr
}

func (w *fakeWorld) SetWalkingCommand(entity EntityID, cmd WalkingCommand) {
	if e, ok := w.entities[entity]; ok {
		e.walking = cmd.Walking
		e.direction = cmd.Direction
	}
}

func (w *fakeWorld) ClearWalkingCommand(entity EntityID) {
	if e, ok := w.entities[entity]; ok {
		e.walking = false
	}
}

func (w *fakeWorld) EntityPosition(entity EntityID) (mgl64.Vec2, bool) {
	e, ok := w.entities[entity]
	if !ok {
		return mgl64.Vec2{}, false
	}
	return e.pos, true
}

func (w *fakeWorld) EntityName(entity EntityID) string {
	if e, ok := w.entities[entity]; ok {
		return e.name
	}
	return ""
}

func (w *fakeWorld) EntityType(entity EntityID) string {
	if e, ok := w.entities[entity]; ok {
		return e.typ
	}
	return ""
}

func (w *fakeWorld) EntityValid(entity EntityID) bool {
	e, ok := w.entities[entity]
	return ok && e.valid
}

func (w *fakeWorld) PrototypeAttribute(category, name, attribute string) (any, bool) {
	return nil, false
}

func (w *fakeWorld) RenderText(surface string, pos mgl64.Vec2, text string, severity Severity) RenderHandle {
	w.nextHandle++
	return w.nextHandle
}

func (w *fakeWorld) RenderRectangle(surface string, rect Rect) RenderHandle {
	w.nextHandle++
	return w.nextHandle
}

func (w *fakeWorld) RenderPath(surface string, waypoints []Waypoint) RenderHandle {
	w.nextHandle++
	return w.nextHandle
}

func (w *fakeWorld) DestroyRender(handle RenderHandle) {}

func (w *fakeWorld) CurrentTick() int64 { return w.tick }

// step moves an entity by dt, standing in for a host simulation's movement
// system; it ignores the entity's walking command, so tests choose dt
// themselves to simulate an agent physically arriving at a waypoint.
func (w *fakeWorld) step(entity EntityID, dt mgl64.Vec2) {
	if e, ok := w.entities[entity]; ok {
		e.pos = e.pos.Add(dt)
	}
}

var _ WorldAdapter = (*fakeWorld)(nil)
