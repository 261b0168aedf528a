package core

import "github.com/go-gl/mathgl/mgl64"

func init() {
	RegisterTaskKind(TaskGetWalkingPath, TaskHooks{
		Progress:    progressGetWalkingPath,
		RemoveAgent: removeAgentGetWalkingPath,
		RemoveAll:   removeAllGetWalkingPath,
		PauseAgent:  removeAgentGetWalkingPath,
	})
}

// DefaultPathResolutionModifier is the engine's most detailed pathfinder
// profile, the high end of the [-8, +8] range (§4.4), and the value a
// getWalkingPathData with no modifier set falls back to.
const DefaultPathResolutionModifier = 8

// getWalkingPathData is the task-wide input (§4.4): the destination, the
// surface to path on, and how close a found path must land to EndPosition.
// Zero is itself a valid PathResolutionModifier, so "unset" is tracked
// separately via modifierSet rather than overloading the zero value;
// callers that want the engine default just leave the modifier unset and
// progressGetWalkingPath substitutes DefaultPathResolutionModifier.
type getWalkingPathData struct {
	Surface                string
	EndPosition             mgl64.Vec2
	Radius                  float64
	PathResolutionModifier  int
	modifierSet             bool
}

// WithPathResolutionModifier overrides the default (most detailed)
// pathfinder profile for this request (§4.4).
func (d *getWalkingPathData) WithPathResolutionModifier(modifier int) *getWalkingPathData {
	d.PathResolutionModifier = modifier
	d.modifierSet = true
	return d
}

// getWalkingPathAgentData is the per-agent record: the outstanding request
// id (while waiting) and the delivered result (once completed).
type getWalkingPathAgentData struct {
	requestID int64
	awaiting  bool

	path    []Waypoint
	timeout bool
}

func progressGetWalkingPath(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	state := eng.Tasks.StateFor(t, agent)
	data, _ := state.Data.(*getWalkingPathAgentData)
	if data == nil {
		data = &getWalkingPathAgentData{}
		state.Data = data
	}

	if state.Status == AgentTaskCompleted {
		return 0, nil
	}

	if data.awaiting {
		return 1, &StateDetails{Text: "Looking for walking path", Severity: SeverityNormal}
	}

	input := t.Data.(*getWalkingPathData)
	if !input.modifierSet {
		input.PathResolutionModifier = DefaultPathResolutionModifier
		input.modifierSet = true
	}
	pos, _ := eng.Adapter.EntityPosition(agent.Entity)

	req := PathRequest{
		BoundingBox:            agentBoundingBox(eng, agent),
		CollisionMask:          agentCollisionMask(eng, agent),
		Start:                  pos,
		Goal:                   input.EndPosition,
		Force:                  agent.Force,
		Radius:                 input.Radius,
		IgnoreEntity:           agent.Entity,
		Flags:                  PathFlags{Cache: false, PreferStraightPath: false, HighPriority: true},
		PathResolutionModifier: input.PathResolutionModifier,
	}
	data.requestID = eng.Adapter.RequestPath(req)
	data.awaiting = true
	eng.PathReg.Register(data.requestID, agent, state)

	return 1, &StateDetails{Text: "Looking for walking path", Severity: SeverityNormal}
}

// deliverGetWalkingPathResult is invoked by Engine.DeliverPathResult once
// the Path Request Registry resolves a request id back to the agent and
// per-agent state that submitted it (§4.4, §4.10).
func deliverGetWalkingPathResult(eng *Engine, agent *Agent, state *TaskState, result PathResult) {
	data, _ := state.Data.(*getWalkingPathAgentData)
	if data == nil {
		return
	}
	data.awaiting = false
	data.timeout = result.TryAgainLater
	data.path = result.Path
	state.Status = AgentTaskCompleted

	for _, wp := range result.Path {
		if wp.NeedsDestroyToReach {
			eng.Log.Warn("pathfinder returned a destructive waypoint; core does not support destructive path following",
				"agent", agent.Name)
			break
		}
	}
}

func removeAgentGetWalkingPath(eng *Engine, t *Task, agent *Agent) {
	state, ok := t.PerAgent[agent]
	if !ok {
		return
	}
	eng.PathReg.RemoveForState(state)
}

func removeAllGetWalkingPath(eng *Engine, t *Task) {
	for _, state := range t.PerAgent {
		eng.PathReg.RemoveForState(state)
	}
}

// agentBoundingBox and agentCollisionMask read the prototype-driven
// footprint of an agent's world entity via the Prototype Attribute Cache
// (§4.11), falling back to a unit box/mask if the world doesn't know it.
func agentBoundingBox(eng *Engine, agent *Agent) BoundingBox {
	name := eng.Adapter.EntityName(agent.Entity)
	typ := eng.Adapter.EntityType(agent.Entity)
	if v, ok := eng.ProtoCache.Attribute(eng.Adapter, typ, name, "collision_box"); ok {
		if box, ok := v.(BoundingBox); ok {
			return box
		}
	}
	return BoundingBox{LeftTop: mgl64.Vec2{-0.4, -0.4}, RightBottom: mgl64.Vec2{0.4, 0.4}}
}

func agentCollisionMask(eng *Engine, agent *Agent) CollisionMask {
	name := eng.Adapter.EntityName(agent.Entity)
	typ := eng.Adapter.EntityType(agent.Entity)
	if v, ok := eng.ProtoCache.Attribute(eng.Adapter, typ, name, "collision_mask"); ok {
		if mask, ok := v.(CollisionMask); ok {
			return mask
		}
	}
	return 0
}
