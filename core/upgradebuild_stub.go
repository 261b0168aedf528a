package core

// Upgrade and Build execution are explicitly out of scope for this core
// (PURPOSE & SCOPE non-goals); these stub task kinds only exist so
// CompleteArea can drive the same four-stage protocol a full
// implementation would. They complete on first progress, logging once
// that the backlog they were handed (if any) goes unconsumed.

func init() {
	RegisterTaskKind(TaskUpgrade, TaskHooks{Progress: progressUpgradeStub})
	RegisterTaskKind(TaskBuild, TaskHooks{Progress: progressBuildStub})
}

type upgradeStubData struct {
	Plan *ScannedActionPlan
}

type buildStubData struct {
	Plan *ScannedActionPlan
}

func progressUpgradeStub(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	state := eng.Tasks.StateFor(t, agent)
	if t.State != TaskCompleted {
		if data, _ := t.Data.(*upgradeStubData); data != nil && len(data.Plan.FlatUpgrade) > 0 {
			eng.Log.Warn("upgrade execution is not implemented in this core; backlog left untouched",
				"count", len(data.Plan.FlatUpgrade))
		}
		t.State = TaskCompleted
	}
	state.Status = AgentTaskCompleted
	return 0, nil
}

func progressBuildStub(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	state := eng.Tasks.StateFor(t, agent)
	if t.State != TaskCompleted {
		if data, _ := t.Data.(*buildStubData); data != nil && len(data.Plan.FlatBuild) > 0 {
			eng.Log.Warn("build execution is not implemented in this core; backlog left untouched",
				"count", len(data.Plan.FlatBuild))
		}
		t.State = TaskCompleted
	}
	state.Status = AgentTaskCompleted
	return 0, nil
}
