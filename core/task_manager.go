package core

// TaskProgressFunc advances a task by one per-agent step. It returns the
// number of ticks before this agent should be called again (0 consents to
// same-tick re-entry, §4.1) and optional state text.
type TaskProgressFunc func(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails)

// TaskRemoveAgentFunc releases any kind-specific resources a single agent
// holds in this task (registered path requests, walking commands, debug
// overlays) before the generic per-agent record is dropped.
type TaskRemoveAgentFunc func(eng *Engine, t *Task, agent *Agent)

// TaskRemoveAllFunc releases kind-specific resources for the whole task
// (every agent) before the branch is torn down.
type TaskRemoveAllFunc func(eng *Engine, t *Task)

// TaskHooks is the per-kind operations table a task kind registers at
// init time (§9 "Dynamic dispatch by kind").
type TaskHooks struct {
	Progress     TaskProgressFunc
	RemoveAgent  TaskRemoveAgentFunc
	RemoveAll    TaskRemoveAllFunc
	PauseAgent   TaskRemoveAgentFunc
}

var taskKindRegistry = make(map[TaskKind]TaskHooks)

// RegisterTaskKind installs the operations table for kind. Called from each
// task kind file's init(), never persisted (§6.3, §9).
func RegisterTaskKind(kind TaskKind, hooks TaskHooks) {
	taskKindRegistry[kind] = hooks
}

// TaskManager provides the generic task object, per-agent task state, and
// the four propagation helpers every task kind with children calls through
// (§4.3).
type TaskManager struct{}

// NewTaskManager returns a ready TaskManager. It carries no state of its
// own; every Task/TaskState it creates is owned by the job/task tree.
func NewTaskManager() *TaskManager { return &TaskManager{} }

// NewTask constructs a Task of kind under job and parent (nil for a
// primary task). Children are NOT planned here — composite task kinds plan
// their own children unconditionally on first progress, per §4.6.
func (tm *TaskManager) NewTask(kind TaskKind, job *Job, parent *Task) *Task {
	return newTask(kind, job, parent)
}

// StateFor returns t's per-agent state for agent, creating it lazily on the
// agent's first call into the task (§3).
func (tm *TaskManager) StateFor(t *Task, agent *Agent) *TaskState {
	if s, ok := t.PerAgent[agent]; ok {
		return s
	}
	s := &TaskState{Agent: agent, Task: t}
	t.PerAgent[agent] = s
	return s
}

// HasState reports whether agent already has per-agent state in t, without
// creating one.
func (tm *TaskManager) HasState(t *Task, agent *Agent) bool {
	_, ok := t.PerAgent[agent]
	return ok
}

// ProgressPrimaryTask dispatches into primary's registered kind handler for
// agent (§4.2). It is also used internally to drive child task progress,
// since the dispatch is identical regardless of tree position.
func (tm *TaskManager) ProgressPrimaryTask(eng *Engine, primary *Task, agent *Agent) (uint, *StateDetails) {
	hooks, ok := taskKindRegistry[primary.Kind]
	if !ok || hooks.Progress == nil {
		return 1, &StateDetails{Text: "Unimplemented task kind: " + string(primary.Kind), Severity: SeverityError}
	}
	return hooks.Progress(eng, primary, agent)
}

// RemovingRobotFromTask removes agent from this branch of the tree: t's own
// per-agent state plus, recursively, every planned child's per-agent state
// (§4.3, §5 cancellation semantics). Kind-specific resources are released
// via the RemoveAgent hook before the generic record is dropped.
func (tm *TaskManager) RemovingRobotFromTask(eng *Engine, t *Task, agent *Agent) {
	if t == nil {
		return
	}
	for _, child := range t.Children {
		tm.RemovingRobotFromTask(eng, child, agent)
	}
	if hooks, ok := taskKindRegistry[t.Kind]; ok && hooks.RemoveAgent != nil {
		hooks.RemoveAgent(eng, t, agent)
	}
	delete(t.PerAgent, agent)
}

// RemovingTask tears down the whole branch rooted at t: every agent still
// present, then recursively every planned child (§4.3, §5).
func (tm *TaskManager) RemovingTask(eng *Engine, t *Task) {
	if t == nil {
		return
	}
	for _, child := range t.Children {
		tm.RemovingTask(eng, child)
	}
	if hooks, ok := taskKindRegistry[t.Kind]; ok && hooks.RemoveAll != nil {
		hooks.RemoveAll(eng, t)
	}
	t.PerAgent = make(map[*Agent]*TaskState)
	t.Children = nil
	t.Data = nil
	t.State = TaskCompleted
}

// PausingRobotForTask propagates a pause for agent through t and its
// planned children, releasing only what must be released to safely leave
// the agent idle (e.g. clearing a walking command) without discarding its
// progress the way RemovingRobotFromTask would (§5).
func (tm *TaskManager) PausingRobotForTask(eng *Engine, t *Task, agent *Agent) {
	if t == nil {
		return
	}
	for _, child := range t.Children {
		tm.PausingRobotForTask(eng, child, agent)
	}
	if hooks, ok := taskKindRegistry[t.Kind]; ok && hooks.PauseAgent != nil {
		hooks.PauseAgent(eng, t, agent)
	}
}
