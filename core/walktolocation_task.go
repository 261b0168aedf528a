package core

import "github.com/go-gl/mathgl/mgl64"

func init() {
	RegisterTaskKind(TaskWalkToLocation, TaskHooks{
		Progress:    progressWalkToLocation,
		RemoveAgent: removeAgentWalkToLocation,
		RemoveAll:   removeAllWalkToLocation,
		PauseAgent:  removeAgentWalkToLocation,
	})
}

// walkToLocationData is the task-wide input (§4.6): the destination, the
// surface it lives on, and the radius the path must land within.
type walkToLocationData struct {
	Surface string
	Goal    mgl64.Vec2
	Radius  float64
}

// walkToLocationAgentData is the per-agent record. waitingUntilTick backs
// the pathfinder-timeout retry delay.
type walkToLocationAgentData struct {
	walkChild        *Task
	waitingUntilTick int64
	renderHandle     RenderHandle
	hasRender        bool
}

// planWalkToLocationChildren constructs GetWalkingPath and WalkPath
// unconditionally on first progress so later ticks can index them
// deterministically regardless of which agent reaches the task first
// (§4.6: "Planned children at first progress ... constructed
// unconditionally").
func planWalkToLocationChildren(t *Task, input *walkToLocationData) {
	if len(t.Children) != 0 {
		return
	}
	pathChild := newTask(TaskGetWalkingPath, t.Job, t)
	pathChild.Data = &getWalkingPathData{
		Surface:     input.Surface,
		EndPosition: input.Goal,
		Radius:      input.Radius,
	}
	walkChild := newTask(TaskWalkPath, t.Job, t)
	t.Children = []*Task{pathChild, walkChild}
}

func progressWalkToLocation(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	input := t.Data.(*walkToLocationData)
	planWalkToLocationChildren(t, input)
	pathChild, walkChild := t.Children[0], t.Children[1]

	state := eng.Tasks.StateFor(t, agent)
	data, _ := state.Data.(*walkToLocationAgentData)
	if data == nil {
		data = &walkToLocationAgentData{}
		state.Data = data
	}

	if state.Status == AgentTaskCompleted || state.Status == AgentTaskNoPath {
		return 0, nil
	}

	if data.waitingUntilTick > eng.Adapter.CurrentTick() {
		return 1, &StateDetails{Text: "Going to start a new path search", Severity: SeverityWarning}
	}

	if data.walkChild == nil {
		ticks, details := eng.Tasks.ProgressPrimaryTask(eng, pathChild, agent)
		pathState := eng.Tasks.StateFor(pathChild, agent)
		if pathState.Status != AgentTaskCompleted {
			return ticks, details
		}

		pathData := pathState.Data.(*getWalkingPathAgentData)
		if pathData.timeout {
			eng.Tasks.RemovingRobotFromTask(eng, pathChild, agent)
			data.waitingUntilTick = eng.Adapter.CurrentTick() + int64(eng.Settings.Robot.EndOfTaskWaitTicks)
			return uint(eng.Settings.Robot.EndOfTaskWaitTicks), &StateDetails{
				Text: "Going to start a new path search", Severity: SeverityWarning, Err: ErrPathTimeout,
			}
		}
		if pathData.path == nil {
			state.Status = AgentTaskNoPath
			if t.Parent == nil {
				agent.Scheduling = AgentStandby
			}
			return 0, &StateDetails{Text: "No path found", Severity: SeverityWarning, Err: ErrNoPath}
		}

		walkState := eng.Tasks.StateFor(walkChild, agent)
		walkState.Data = &walkPathAgentData{waypoints: pathData.path}
		walkState.Status = AgentTaskActive
		if eng.Settings.Debug.ShowPathWalking {
			data.renderHandle = eng.Adapter.RenderPath(input.Surface, pathData.path)
			data.hasRender = true
		}
		data.walkChild = walkChild
		state.CurrentChildIndex = 1
	}

	ticks, details := eng.Tasks.ProgressPrimaryTask(eng, walkChild, agent)
	walkState := eng.Tasks.StateFor(walkChild, agent)

	switch walkState.Status {
	case AgentTaskStuck:
		eng.Tasks.RemovingRobotFromTask(eng, t, agent)
		return progressWalkToLocation(eng, t, agent)
	case AgentTaskCompleted:
		if data.hasRender {
			eng.Adapter.DestroyRender(data.renderHandle)
			data.hasRender = false
		}
		state.Status = AgentTaskCompleted
		return 0, &StateDetails{Text: "Robot arrived", Severity: SeverityNormal}
	default:
		return ticks, details
	}
}

// removeAgentWalkToLocation releases only this task's own per-agent
// resource (the debug path render); the generic propagator
// (TaskManager.RemovingRobotFromTask) has already recursed into our planned
// children before calling this hook, and deletes our per-agent record
// immediately after.
func removeAgentWalkToLocation(eng *Engine, t *Task, agent *Agent) {
	state, ok := t.PerAgent[agent]
	if !ok {
		return
	}
	if data, _ := state.Data.(*walkToLocationAgentData); data != nil && data.hasRender {
		eng.Adapter.DestroyRender(data.renderHandle)
	}
}

func removeAllWalkToLocation(eng *Engine, t *Task) {
	for agent, state := range t.PerAgent {
		if data, _ := state.Data.(*walkToLocationAgentData); data != nil && data.hasRender {
			eng.Adapter.DestroyRender(data.renderHandle)
		}
	}
}
