package core

import "log/slog"

// Engine ties the World Adapter, Path Request Registry, Prototype
// Attribute Cache, settings, task/job/agent managers and logger together
// for use by task-kind implementations, mirroring the way the teacher's
// world.World and world.Tx bundle the pieces a block/entity behaviour
// needs to run (world/world.go, world/tick.go).
type Engine struct {
	Adapter    WorldAdapter
	PathReg    *PathRequestRegistry
	ProtoCache *PrototypeAttributeCache
	Settings   *Settings
	Log        *slog.Logger

	Tasks  *TaskManager
	Jobs   *JobManager
	Agents *AgentManager
}

// NewEngine wires a fresh Engine around adapter. settings and log may be
// nil, in which case DefaultSettings() and slog.Default() are used.
func NewEngine(adapter WorldAdapter, settings *Settings, log *slog.Logger) *Engine {
	if settings == nil {
		settings = DefaultSettings()
	}
	if log == nil {
		log = slog.Default()
	}
	tasks := NewTaskManager()
	jobs := NewJobManager(tasks)
	eng := &Engine{
		Adapter:    adapter,
		PathReg:    NewPathRequestRegistry(),
		ProtoCache: NewPrototypeAttributeCache(),
		Settings:   settings,
		Log:        log,
		Tasks:      tasks,
		Jobs:       jobs,
	}
	eng.Agents = NewAgentManager(eng)
	return eng
}

// DeliverPathResult is called by the host simulation when an outstanding
// RequestPath resolves (§4.10, §6.1). A request id with no registered
// awaiter is a safe no-op (it may have raced with task teardown).
func (e *Engine) DeliverPathResult(requestID int64, result PathResult) {
	agent, state, ok := e.PathReg.Resolve(requestID)
	if !ok {
		return
	}
	deliverGetWalkingPathResult(e, agent, state, result)
}
