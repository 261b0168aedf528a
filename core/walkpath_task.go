package core

import "github.com/go-gl/mathgl/mgl64"

func init() {
	RegisterTaskKind(TaskWalkPath, TaskHooks{
		Progress:    progressWalkPath,
		RemoveAgent: removeAgentWalkPath,
		RemoveAll:   removeAllWalkPath,
		PauseAgent:  removeAgentWalkPath,
	})
}

// walkPathAgentData is the per-agent record (§4.5): the waypoint list, the
// index of the next unvisited waypoint, and the agent's position as of the
// previous tick (used for the one-tick stall stuck heuristic).
type walkPathAgentData struct {
	waypoints  []Waypoint
	targetIdx  int
	lastPos    mgl64.Vec2
	hasLastPos bool
}

// progressWalkPath expects the caller to have populated state.Data with a
// *walkPathAgentData carrying this agent's waypoint list before the first
// call (each agent walks a different path, so the list cannot live on the
// task-wide Data the way a single-path task kind would use it).
func progressWalkPath(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	state := eng.Tasks.StateFor(t, agent)
	data, _ := state.Data.(*walkPathAgentData)
	if data == nil {
		data = &walkPathAgentData{}
		state.Data = data
	}

	pos, ok := eng.Adapter.EntityPosition(agent.Entity)
	if !ok {
		state.Status = AgentTaskStuck
		eng.Adapter.ClearWalkingCommand(agent.Entity)
		return 0, nil
	}

	for data.targetIdx < len(data.waypoints) && withinWalkAccuracy(pos, data.waypoints[data.targetIdx].Position) {
		data.targetIdx++
	}
	if data.targetIdx >= len(data.waypoints) {
		eng.Adapter.ClearWalkingCommand(agent.Entity)
		state.Status = AgentTaskCompleted
		return 0, nil
	}

	if data.hasLastPos && data.lastPos == pos {
		state.Status = AgentTaskStuck
		eng.Adapter.ClearWalkingCommand(agent.Entity)
		return 0, nil
	}
	data.lastPos = pos
	data.hasLastPos = true

	target := data.waypoints[data.targetIdx].Position
	dir := DirectionFromOffset(target.X()-pos.X(), target.Y()-pos.Y())
	eng.Adapter.SetWalkingCommand(agent.Entity, WalkingCommand{Walking: true, Direction: dir})
	state.Status = AgentTaskActive

	return 1, &StateDetails{Text: "Walking the path", Severity: SeverityNormal}
}

func removeAgentWalkPath(eng *Engine, t *Task, agent *Agent) {
	state, ok := t.PerAgent[agent]
	if !ok {
		return
	}
	if state.Status == AgentTaskActive {
		eng.Adapter.ClearWalkingCommand(agent.Entity)
	}
}

func removeAllWalkPath(eng *Engine, t *Task) {
	for agent, state := range t.PerAgent {
		if state.Status == AgentTaskActive {
			eng.Adapter.ClearWalkingCommand(agent.Entity)
		}
	}
}
