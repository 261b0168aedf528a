package core

import "math"

func init() {
	RegisterTaskKind(TaskCompleteArea, TaskHooks{
		Progress: progressCompleteArea,
	})
}

// completeAreaData is the task-wide input (§4.9): the area to scan and the
// four planned children it drives through in order.
type completeAreaData struct {
	Surface string
	Areas   []Rect
	Force   Force
}

// planCompleteAreaChildren constructs Scan, Deconstruct, Upgrade and Build
// unconditionally at first progress (§4.6's "constructed unconditionally"
// pattern, reused here for the same reason: deterministic indexing
// regardless of which agent reaches the task first).
func planCompleteAreaChildren(t *Task, input *completeAreaData) {
	if len(t.Children) != 0 {
		return
	}
	scan := newTask(TaskScanAreas, t.Job, t)
	scan.Data = &scanAreasData{Surface: input.Surface, Force: input.Force, Areas: input.Areas}

	deconstruct := newTask(TaskDeconstruct, t.Job, t)
	upgrade := newTask(TaskUpgrade, t.Job, t)
	build := newTask(TaskBuild, t.Job, t)

	t.Children = []*Task{scan, deconstruct, upgrade, build}
}

func progressCompleteArea(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	input := t.Data.(*completeAreaData)
	planCompleteAreaChildren(t, input)
	scan, deconstruct, upgrade, build := t.Children[0], t.Children[1], t.Children[2], t.Children[3]

	state := eng.Tasks.StateFor(t, agent)
	if t.State == TaskCompleted {
		state.Status = AgentTaskCompleted
		return 0, nil
	}

	// t.CurrentChildIndex is shared task-wide progress, not per-agent
	// (§5: "advances when the task's shared progress advances ... not when
	// an individual agent transitions"): every agent drives whichever
	// child is currently active, and the phase only moves forward once
	// that child's own State (not any one agent's per-agent state) reports
	// completed.
	switch t.CurrentChildIndex {
	case 0:
		ticks, details := eng.Tasks.ProgressPrimaryTask(eng, scan, agent)
		if scan.State != TaskCompleted {
			return ticks, details
		}
		scanData := scan.Data.(*scanAreasData)
		activateDeconstruct(deconstruct, scanData.plan)
		t.CurrentChildIndex = 1
		fallthrough
	case 1:
		if deconstruct.Data == nil {
			t.CurrentChildIndex = 2
			return progressCompleteArea(eng, t, agent)
		}
		ticks, details := eng.Tasks.ProgressPrimaryTask(eng, deconstruct, agent)
		if deconstruct.State != TaskCompleted {
			return ticks, details
		}
		dData := deconstruct.Data.(*deconstructData)
		upgrade.Data = &upgradeStubData{Plan: dData.Plan}
		build.Data = &buildStubData{Plan: dData.Plan}
		t.CurrentChildIndex = 2
		fallthrough
	case 2:
		ticks, details := eng.Tasks.ProgressPrimaryTask(eng, upgrade, agent)
		if upgrade.State != TaskCompleted {
			return ticks, details
		}
		t.CurrentChildIndex = 3
		fallthrough
	case 3:
		ticks, details := eng.Tasks.ProgressPrimaryTask(eng, build, agent)
		if build.State != TaskCompleted {
			return ticks, details
		}
		t.State = TaskCompleted
		state.Status = AgentTaskCompleted
		return 0, &StateDetails{Text: "Area complete", Severity: SeverityNormal}
	}
	return 1, &StateDetails{Text: "Completing area", Severity: SeverityNormal}
}

// activateDeconstruct wires the scanned plan into the Deconstruct child,
// skipping activation entirely when there is no deconstruct work (signalled
// to progressCompleteArea by leaving Data nil).
func activateDeconstruct(deconstruct *Task, plan *ScannedActionPlan) {
	if len(plan.FlatDeconstruct) == 0 {
		return
	}
	minX, maxX, minY, maxY := plan.Index.Bounds()
	deconstruct.Data = &deconstructData{
		Surface:    plan.Surface,
		Plan:       plan,
		StartChunk: outerCornerNearestOrigin(minX, maxX, minY, maxY),
		Center:     ChunkPos{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
	}
}

// outerCornerNearestOrigin picks the outer corner of the scanned bounds
// closest to world origin, per §4.9's starting-chunk rule.
func outerCornerNearestOrigin(minX, maxX, minY, maxY int32) ChunkPos {
	corners := []ChunkPos{
		{X: minX, Y: minY}, {X: minX, Y: maxY},
		{X: maxX, Y: minY}, {X: maxX, Y: maxY},
	}
	best := corners[0]
	bestDist := math.Hypot(float64(best.X), float64(best.Y))
	for _, c := range corners[1:] {
		d := math.Hypot(float64(c.X), float64(c.Y))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
