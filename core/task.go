package core

// TaskKind tags which operations table a Task dispatches through. Kinds are
// a closed tagged variant built at init time (§9 "Dynamic dispatch by
// kind") rather than persisted function pointers.
type TaskKind string

const (
	TaskGetWalkingPath TaskKind = "get_walking_path"
	TaskWalkPath       TaskKind = "walk_path"
	TaskWalkToLocation TaskKind = "walk_to_location"
	TaskScanAreas      TaskKind = "scan_areas_for_actions"
	TaskDeconstruct    TaskKind = "deconstruct_entities_in_chunk_details"
	TaskUpgrade        TaskKind = "upgrade_entities_in_chunk_details"
	TaskBuild          TaskKind = "build_entities_in_chunk_details"
	TaskCompleteArea   TaskKind = "complete_area"
)

// TaskTopState is a task's top-level state in {active, completed} (§3).
type TaskTopState uint8

const (
	TaskActive TaskTopState = iota
	TaskCompleted
)

// AgentTaskStatus is a per-agent task state. The base set is
// {active, completed, stuck, noPath}; individual task kinds only ever use
// the subset relevant to them (§3 "some task kinds extend the set").
type AgentTaskStatus uint8

const (
	AgentTaskActive AgentTaskStatus = iota
	AgentTaskCompleted
	AgentTaskStuck
	AgentTaskNoPath
)

// Task is a shared unit of work under a job (§3). It may have planned
// child tasks (constructed once, shared by every agent that reaches them)
// and a per-agent state map. Child tasks and per-agent state are owned
// exclusively by the Task; Job and Parent are non-owning back-references
// (§9 "Back-references").
type Task struct {
	Kind TaskKind
	Job  *Job
	Parent *Task

	Children          []*Task
	CurrentChildIndex int // shared across all agents; advances with the task's own progress, not per-agent

	State TaskTopState

	PerAgent map[*Agent]*TaskState

	// Data holds kind-specific task-wide state (e.g. *scanAreasData,
	// *deconstructData). Each task kind owns and type-asserts its own
	// Data; this mirrors the teacher's habit of type-switching on
	// world.Block implementations (tx.Block(pos).(NeighbourUpdateTicker))
	// rather than threading a generic type parameter through the whole
	// task tree.
	Data any
}

// TaskState is the per-agent progression record for a Task (§3): a
// back-pointer to the agent and task, a per-agent current-child-index, a
// status, and kind-specific per-agent data.
type TaskState struct {
	Agent *Agent
	Task  *Task

	CurrentChildIndex int
	Status            AgentTaskStatus

	Data any
}

// newTask constructs a Task of the given kind under parent (nil for a
// primary task), without planning children — callers plan children
// explicitly since WalkToLocation requires them constructed unconditionally
// at first progress (§4.6) while leaf tasks never have any.
func newTask(kind TaskKind, job *Job, parent *Task) *Task {
	return &Task{
		Kind:     kind,
		Job:      job,
		Parent:   parent,
		PerAgent: make(map[*Agent]*TaskState),
	}
}
