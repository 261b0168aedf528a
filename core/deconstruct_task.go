package core

import "math"

func init() {
	RegisterTaskKind(TaskDeconstruct, TaskHooks{
		Progress:    progressDeconstruct,
		RemoveAgent: removeAgentDeconstruct,
		RemoveAll:   removeAllDeconstruct,
		PauseAgent:  pauseAgentDeconstruct,
	})
}

// DeconstructTimeDelay is the fixed per-mine overhead folded into
// ticksToWait alongside the prototype's scaled mining_time (§4.8, §8 S1).
const DeconstructTimeDelay = 30

// ChunkAssignState is a chunk's deconstruct-assignment lifecycle (§4.8,
// §5 "Chunk assignments form a total order").
type ChunkAssignState uint8

const (
	ChunkAvailable ChunkAssignState = iota
	ChunkAssigned
	ChunkCompleted
)

// ChunkState tracks one chunk's deconstruct assignment.
type ChunkState struct {
	Pos           ChunkPos
	State         ChunkAssignState
	AssignedAgent *Agent
}

// deconstructData is the task-wide input and shared mutable state (§4.8):
// the surface/chunk index/flat map from the scanned plan, a preferred
// starting chunk, and the per-chunk assignment table populated lazily on
// first activation.
type deconstructData struct {
	Surface    string
	Plan       *ScannedActionPlan
	StartChunk ChunkPos
	Center     ChunkPos

	chunksState map[ChunkPos]*ChunkState
}

func initDeconstructData(data *deconstructData) {
	if data.chunksState != nil {
		return
	}
	data.chunksState = make(map[ChunkPos]*ChunkState)
	data.Plan.Index.All(func(cd *ChunkDetails) {
		if !cd.Empty(ActionDeconstruct) {
			data.chunksState[cd.Pos] = &ChunkState{Pos: cd.Pos, State: ChunkAvailable}
		}
	})
}

// deconstructAgentData is the per-agent record: the assigned chunk, the
// current mining target, and an ad hoc WalkToLocation task spawned to reach
// it. The walk task is per-agent runtime state, not a planned child (§4.3
// "not runtime children per agent, which may differ in WalkToLocation"),
// so this task kind tears it down itself rather than relying on the
// generic propagator.
type deconstructAgentData struct {
	chunk     *ChunkState
	target    *EntityDetails
	walkChild *Task
}

func progressDeconstruct(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	data := t.Data.(*deconstructData)
	initDeconstructData(data)

	state := eng.Tasks.StateFor(t, agent)
	if t.State == TaskCompleted {
		state.Status = AgentTaskCompleted
		return 0, nil
	}
	adata, _ := state.Data.(*deconstructAgentData)
	if adata == nil {
		adata = &deconstructAgentData{}
		state.Data = adata
	}

	if adata.chunk == nil || adata.chunk.State == ChunkCompleted {
		from := data.StartChunk
		if adata.chunk != nil {
			from = adata.chunk.Pos
		}
		cs, ok := findAvailableChunkForRobot(data, from)
		if !ok {
			return uint(eng.Settings.Robot.EndOfTaskWaitTicks), &StateDetails{
				Text: "Waiting for an available chunk to deconstruct", Severity: SeverityNormal,
			}
		}
		cs.State = ChunkAssigned
		cs.AssignedAgent = agent
		adata.chunk = cs
	}

	if adata.target == nil {
		chunkDetails, _ := data.Plan.Index.Get(adata.chunk.Pos)
		target := nearestDeconstructTarget(eng, agent, chunkDetails)
		if target == nil {
			adata.chunk.State = ChunkCompleted
			return progressDeconstruct(eng, t, agent)
		}
		adata.target = target
	}

	pos, ok := eng.Adapter.EntityPosition(agent.Entity)
	if !ok || adata.target.Stale(eng.Adapter) {
		data.Plan.Remove(adata.target)
		adata.target = nil
		return progressDeconstruct(eng, t, agent)
	}

	if adata.walkChild == nil && euclideanDistance(pos, adata.target.Position) <= agent.MiningDistance {
		return mineTarget(eng, t, data, agent, adata)
	}

	if adata.walkChild == nil {
		adata.walkChild = newTask(TaskWalkToLocation, t.Job, t)
		adata.walkChild.Data = &walkToLocationData{
			Surface: data.Surface,
			Goal:    adata.target.Position,
			Radius:  math.Max(agent.MiningDistance-1, 0),
		}
	}
	ticks, _ := eng.Tasks.ProgressPrimaryTask(eng, adata.walkChild, agent)
	walkState := eng.Tasks.StateFor(adata.walkChild, agent)
	if walkState.Status == AgentTaskCompleted {
		eng.Tasks.RemovingRobotFromTask(eng, adata.walkChild, agent)
		adata.walkChild = nil
		return progressDeconstruct(eng, t, agent)
	}
	return ticks, &StateDetails{Text: "Pathing to deconstruction target: " + adata.target.Name, Severity: SeverityNormal}
}

func mineTarget(eng *Engine, t *Task, data *deconstructData, agent *Agent, adata *deconstructAgentData) (uint, *StateDetails) {
	target := adata.target

	miningTime := 0.5
	if v, ok := eng.ProtoCache.Attribute(eng.Adapter, target.Type, target.Name, "mining_time"); ok {
		if f, ok := v.(float64); ok {
			miningTime = f
		}
	}
	speed := agent.MiningSpeed
	if speed <= 0 {
		speed = 1
	}
	ticks := DeconstructTimeDelay + int(math.Ceil(miningTime*60/speed))
	if eng.Settings.Debug.FastDeconstruct {
		ticks = ticks / 10
		if ticks < 1 {
			ticks = 1
		}
	}

	res, err := eng.Adapter.MineEntity(target.Entity, agent.Entity)
	if err != nil || !res.OK {
		eng.Log.Error("deconstruct: mine operation failed", "entity", target.Name, "error", err)
		return uint(ticks), &StateDetails{Text: "Deconstructing target", Severity: SeverityError}
	}
	if !res.AllItemsFit {
		// §7: inventory overflow is a fatal-for-now condition; the
		// empty-and-retry loop is a v2 design item. The core logs and keeps
		// reporting the error rather than losing the target or crashing.
		eng.Log.Error("deconstruct: inventory overflow", "agent", agent.Name, "entity", target.Name, "err", ErrInventoryOverflow)
		return uint(ticks), &StateDetails{
			Text: "Deconstruction failed: inventory full", Severity: SeverityError, Err: ErrInventoryOverflow,
		}
	}

	data.Plan.Remove(target)
	adata.target = nil
	if chunkDetails, ok := data.Plan.Index.Get(adata.chunk.Pos); ok && chunkDetails.Empty(ActionDeconstruct) {
		adata.chunk.State = ChunkCompleted
		if len(data.Plan.FlatDeconstruct) == 0 {
			t.State = TaskCompleted
		}
	}
	return uint(ticks), &StateDetails{Text: "Deconstruction completed", Severity: SeverityNormal}
}

// nearestDeconstructTarget picks the nearest (Euclidean) entity in chunk's
// deconstruct map to agent's current position (§4.8 step 2). The cap at
// mining range mentioned in the spec is a performance hint only; omitted
// here since the chunk-sized search space is already small.
func nearestDeconstructTarget(eng *Engine, agent *Agent, chunk *ChunkDetails) *EntityDetails {
	if chunk == nil || len(chunk.ToBeDeconstructed) == 0 {
		return nil
	}
	pos, ok := eng.Adapter.EntityPosition(agent.Entity)
	if !ok {
		return nil
	}
	var best *EntityDetails
	bestDist := math.Inf(1)
	for _, d := range chunk.ToBeDeconstructed {
		dist := euclideanDistance(pos, d.Position)
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// findAvailableChunkForRobot implements §4.8's chunk-search policy: the
// starting chunk if still available, otherwise an outward Chebyshev ring
// search from the agent's current (or starting) position, each ring
// explored in an order biased away from the job's bounding-box center.
func findAvailableChunkForRobot(data *deconstructData, from ChunkPos) (*ChunkState, bool) {
	if start, ok := data.chunksState[data.StartChunk]; ok && start.State == ChunkAvailable {
		return start, true
	}

	minX, maxX, minY, maxY := data.Plan.Index.Bounds()
	maxRadius := max32(maxX-minX, maxY-minY)
	if maxRadius < 0 {
		maxRadius = 0
	}

	awayX := ringSign(from.X - data.Center.X)
	awayY := ringSign(from.Y - data.Center.Y)

	for d := int32(1); d <= maxRadius; d++ {
		for _, dx := range ringOffsets(d, awayX) {
			for _, dy := range ringOffsets(d, awayY) {
				if max32(abs32(dx), abs32(dy)) != d {
					continue
				}
				pos := ChunkPos{X: from.X + dx, Y: from.Y + dy}
				if cs, ok := data.chunksState[pos]; ok && cs.State == ChunkAvailable {
					return cs, true
				}
			}
		}
	}
	return nil, false
}

// ringOffsets returns the offsets -d..d in an order starting with the one
// furthest from the center along this axis (away > 0 explores positive
// offsets first, away < 0 negative first; ties favor the edge by exploring
// positive first, an arbitrary but stable convention).
func ringOffsets(d int32, away int32) []int32 {
	offsets := make([]int32, 0, 2*d+1)
	if away < 0 {
		for o := -d; o <= d; o++ {
			offsets = append(offsets, o)
		}
	} else {
		for o := d; o >= -d; o-- {
			offsets = append(offsets, o)
		}
	}
	return offsets
}

func ringSign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func releaseAgentChunk(agent *Agent, adata *deconstructAgentData) {
	if adata == nil || adata.chunk == nil {
		return
	}
	if adata.chunk.AssignedAgent == agent && adata.chunk.State == ChunkAssigned {
		adata.chunk.State = ChunkAvailable
		adata.chunk.AssignedAgent = nil
	}
}

func removeAgentDeconstruct(eng *Engine, t *Task, agent *Agent) {
	state, ok := t.PerAgent[agent]
	if !ok {
		return
	}
	adata, _ := state.Data.(*deconstructAgentData)
	if adata == nil {
		return
	}
	if adata.walkChild != nil {
		eng.Tasks.RemovingRobotFromTask(eng, adata.walkChild, agent)
	}
	releaseAgentChunk(agent, adata)
}

func removeAllDeconstruct(eng *Engine, t *Task) {
	for agent, state := range t.PerAgent {
		adata, _ := state.Data.(*deconstructAgentData)
		if adata == nil {
			continue
		}
		if adata.walkChild != nil {
			eng.Tasks.RemovingRobotFromTask(eng, adata.walkChild, agent)
		}
	}
}

func pauseAgentDeconstruct(eng *Engine, t *Task, agent *Agent) {
	state, ok := t.PerAgent[agent]
	if !ok {
		return
	}
	adata, _ := state.Data.(*deconstructAgentData)
	if adata == nil {
		return
	}
	if adata.walkChild != nil {
		eng.Tasks.PausingRobotForTask(eng, adata.walkChild, agent)
	}
}
