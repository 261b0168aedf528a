package core

import "errors"

// maxSameTickReentries bounds the chain of ticksToWait == 0 re-entries a
// single task may trigger for one agent within one tick (§9 "Same-tick
// re-entry... implementations must bound recursion depth"). It guards
// against a task-kind bug where everything returns 0 turning into an
// infinite loop.
const maxSameTickReentries = 8

// AgentManager runs the per-tick agent scheduling loop (§4.1) and owns the
// agent registry.
type AgentManager struct {
	eng    *Engine
	nextID AgentID
	byID   map[AgentID]*Agent
}

// NewAgentManager returns an AgentManager bound to eng.
func NewAgentManager(eng *Engine) *AgentManager {
	return &AgentManager{eng: eng, byID: make(map[AgentID]*Agent)}
}

// Spawn creates and registers a new Agent.
func (am *AgentManager) Spawn(entity EntityID, force Force, master, name string) *Agent {
	am.nextID++
	a := NewAgent(am.nextID, entity, force, master, name)
	am.byID[a.ID] = a
	return a
}

// Remove destroys an agent, e.g. once its world entity is destroyed (§3).
func (am *AgentManager) Remove(id AgentID) {
	delete(am.byID, id)
}

// Get returns the agent with the given id, if still registered.
func (am *AgentManager) Get(id AgentID) (*Agent, bool) {
	a, ok := am.byID[id]
	return a, ok
}

// All returns every registered agent in an unspecified order, for
// iteration by callers such as the debug console.
func (am *AgentManager) All() []*Agent {
	out := make([]*Agent, 0, len(am.byID))
	for _, a := range am.byID {
		out = append(out, a)
	}
	return out
}

// NextID returns the id counter agents are currently allocated from, for
// snapshotting alongside the agent set (persist.Store.SaveAgents).
func (am *AgentManager) NextID() AgentID {
	return am.nextID
}

// AgentRecord is the serializable projection of an Agent a persistence
// layer snapshots and restores (§6.3). It lives in core, not persist, so
// that Restore can accept it without persist importing back into core.
type AgentRecord struct {
	ID             uint64
	Entity         uint64
	Force          string
	Master         string
	Name           string
	MiningDistance float64
	MiningSpeed    float64
	Scheduling     uint8
}

// Snapshot projects every registered agent into AgentRecords, for a
// persistence layer to encode.
func (am *AgentManager) Snapshot() []AgentRecord {
	out := make([]AgentRecord, 0, len(am.byID))
	for _, a := range am.byID {
		out = append(out, AgentRecord{
			ID:             uint64(a.ID),
			Entity:         uint64(a.Entity),
			Force:          string(a.Force),
			Master:         a.Master,
			Name:           a.Name,
			MiningDistance: a.MiningDistance,
			MiningSpeed:    a.MiningSpeed,
			Scheduling:     uint8(a.Scheduling),
		})
	}
	return out
}

// Restore repopulates the agent registry from previously persisted
// records, keeping each agent's persisted scheduling state. Restored agents
// come back with no jobs: task trees and agent job lists are never
// persisted (§6.3). It is called once, at startup, before any agent has
// been spawned.
func (am *AgentManager) Restore(records []AgentRecord, nextID AgentID) {
	for _, r := range records {
		a := NewAgent(AgentID(r.ID), EntityID(r.Entity), Force(r.Force), r.Master, r.Name)
		a.MiningDistance = r.MiningDistance
		a.MiningSpeed = r.MiningSpeed
		a.Scheduling = AgentSchedulingState(r.Scheduling)
		am.byID[a.ID] = a
	}
	if nextID > am.nextID {
		am.nextID = nextID
	}
}

// Tick advances every active, due agent by one scheduling step (§4.1).
func (am *AgentManager) Tick(currentTick int64) {
	for _, agent := range am.byID {
		if agent.Scheduling != AgentActive {
			continue
		}
		if agent.BusyUntilTick > currentTick {
			continue
		}
		am.tickAgent(agent, currentTick)
	}
}

func (am *AgentManager) tickAgent(agent *Agent, currentTick int64) {
	eng := am.eng
	var (
		gotText bool
		details StateDetails
	)

	for len(agent.Jobs) > 0 {
		job := agent.Jobs[0]

		var (
			ticks     uint
			state     *StateDetails
			reentries int
		)
		for {
			if agent.activatedJob[job] {
				ticks, state = eng.Jobs.ProgressActivatedJobForAgent(eng, job, agent)
			} else {
				ticks, state = eng.Jobs.ProgressJobForAgent(eng, job, agent)
				agent.activatedJob[job] = true
			}
			agent.BusyUntilTick = currentTick + int64(ticks)
			if state != nil {
				details = *state
				gotText = true
			}

			if eng.Jobs.IsJobCompleteForAgent(job, agent) {
				// Completion ends the re-entry chain regardless of ticks;
				// the ticks value from this call still governs whether we
				// fall through to the next job in the same tick below.
				break
			}
			if ticks != 0 {
				// Task asked to wait: stop re-entering the same job.
				break
			}
			reentries++
			if reentries >= maxSameTickReentries {
				eng.Log.Warn("agent hit same-tick re-entry bound, forcing a tick of delay",
					"agent", agent.Name, "job_kind", string(job.Kind))
				agent.BusyUntilTick = currentTick + 1
				break
			}
			// ticks == 0 and the job isn't done: this is a consented
			// same-tick chain transition (§4.1), loop and call again.
		}

		if eng.Jobs.IsJobCompleteForAgent(job, agent) {
			eng.Jobs.RemoveAgentFromJob(job, agent)
			if ticks == 0 {
				// Consented same-tick continuation into the next job,
				// which now sits at index 0 (§4.1 step 3).
				continue
			}
		}
		break
	}

	if !gotText {
		details = StateDetails{Text: "Idle", Severity: SeverityNormal}
	}
	logTaskError(eng, agent, details.Err)
	ApplyAgentStateText(eng.Adapter, agent, details)
}

// logTaskError logs a non-nil task-reported error at a level matching how
// retryable it is: timeouts and no-path are routine enough to warn about,
// everything else (inventory overflow, an unrecognised internal state) is
// an error. Checked with errors.Is rather than comparing Text, per §4.4's
// "sentinel errors checked with errors.Is".
func logTaskError(eng *Engine, agent *Agent, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ErrPathTimeout):
		eng.Log.Warn("agent pathfind timed out", "agent", agent.Name, "err", err)
	case errors.Is(err, ErrNoPath):
		eng.Log.Warn("agent found no path", "agent", agent.Name, "err", err)
	default:
		eng.Log.Error("agent task reported an error", "agent", agent.Name, "err", err)
	}
}
