package core

import "github.com/go-gl/mathgl/mgl64"

// EntityID is the identity of a live world entity handle as seen by the
// host simulation. The core never interprets it beyond equality.
type EntityID uint64

// Force is the allegiance token scoping world queries and pathfinder
// requests (§6.1, §6.2).
type Force string

// CollisionMask is an opaque token describing an agent's collision
// footprint, passed straight through to the pathfinder.
type CollisionMask uint32

// BoundingBox is the agent's bounding box used for pathfinding, expressed
// as left_top/right_bottom float corners per §6.2.
type BoundingBox struct {
	LeftTop, RightBottom mgl64.Vec2
}

// EntityFilter narrows FindEntities queries. The zero value matches
// anything; set only the fields relevant to the action class being
// searched for.
type EntityFilter struct {
	Force               Force
	ToBeDeconstructed   bool
	ToBeUpgraded        bool
	Ghost               bool
	AnyForceNeutralTree bool
	Type                map[string]struct{}
	Name                map[string]struct{}
}

// PathFlags carries the pathfinder tuning flags from §6.2.
type PathFlags struct {
	Cache              bool
	PreferStraightPath bool
	NoBreak            bool
	HighPriority       bool
}

// PathRequest is submitted to RequestPath; fields are bit-exact with §6.2.
type PathRequest struct {
	BoundingBox           BoundingBox
	CollisionMask         CollisionMask
	Start, Goal           mgl64.Vec2
	Force                 Force
	Radius                float64
	IgnoreEntity          EntityID
	Flags                 PathFlags
	PathResolutionModifier int // [-8, +8]
}

// Waypoint is one point along a found path.
type Waypoint struct {
	Position           mgl64.Vec2
	NeedsDestroyToReach bool
}

// PathResult is delivered asynchronously to whoever issued the matching
// PathRequest, correlated by request id.
type PathResult struct {
	Path           []Waypoint
	TryAgainLater  bool
}

// WalkingCommand is a persistent movement command applied to an agent's
// world entity until overridden.
type WalkingCommand struct {
	Walking   bool
	Direction Direction
}

// MineResult reports the outcome of an entity-mine operation.
type MineResult struct {
	OK          bool
	AllItemsFit bool
}

// RenderHandle identifies a debug overlay so it can later be destroyed.
type RenderHandle uint64

// Severity classifies state text / log severity (§4.12).
type Severity uint8

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityError
)

// StateDetails is the (text, severity) pair a task reports up through
// Progress, per §4.1. Err carries one of the package's sentinel errors
// (ErrPathTimeout, ErrNoPath, ErrInventoryOverflow, ...) when the report
// corresponds to one of those documented conditions, so callers can branch
// on it with errors.Is instead of parsing Text; it is nil the rest of the
// time.
type StateDetails struct {
	Text     string
	Severity Severity
	Err      error
}

// WorldAdapter is the narrow seam THE CORE uses to reach the host
// simulation (§6.1). A host implements this; THE CORE never reaches past
// it into entity lookup, tile/surface queries, the pathfinder service,
// entity destruction, or rendering directly.
type WorldAdapter interface {
	// FindEntities returns entity handles within rect on surface matching
	// filter.
	FindEntities(surface string, rect Rect, filter EntityFilter) []EntityID

	IsRegisteredForDeconstruction(entity EntityID, force Force) bool

	// RegisterOnDestroyed returns a stable numeric id for entity, stable
	// across calls for the same entity. It backs the destroyedId_N
	// fallback namespace (GLOSSARY) for hosts that can't offer UnitNumber.
	RegisterOnDestroyed(entity EntityID) uint64

	// UnitNumber returns the world's own stable unit number for entity, if
	// the host simulation assigns one (§6.1, GLOSSARY "a world unit number
	// when available, else destroyedId_N"). false means the host has none
	// for this entity; callers fall back to RegisterOnDestroyed.
	UnitNumber(entity EntityID) (uint64, bool)

	// RequestPath submits an asynchronous pathfind request and returns a
	// request id. The result is delivered later via the callback
	// registered through the Path Request Registry.
	RequestPath(req PathRequest) int64

	MineEntity(entity EntityID, intoInventory EntityID) (MineResult, error)

	SetWalkingCommand(entity EntityID, cmd WalkingCommand)
	ClearWalkingCommand(entity EntityID)

	EntityPosition(entity EntityID) (mgl64.Vec2, bool)
	EntityName(entity EntityID) string
	EntityType(entity EntityID) string
	EntityValid(entity EntityID) bool

	PrototypeAttribute(category, name, attribute string) (any, bool)

	RenderText(surface string, pos mgl64.Vec2, text string, severity Severity) RenderHandle
	RenderRectangle(surface string, rect Rect) RenderHandle
	RenderPath(surface string, waypoints []Waypoint) RenderHandle
	DestroyRender(handle RenderHandle)

	CurrentTick() int64
}

// PathCallback is how a host simulation delivers an asynchronous path
// result back into THE CORE; hosts call this once RequestPath's request id
// resolves.
type PathCallback func(requestID int64, result PathResult)
