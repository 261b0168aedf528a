package core

import (
	"encoding/json"
	"fmt"
)

// JobManager owns job lifecycle: creation, per-agent progression,
// completion propagation and pause/resume (§4.2).
type JobManager struct {
	tasks   *TaskManager
	nextID  JobID
	byID    map[JobID]*Job
}

// NewJobManager returns a JobManager driving tasks through tm.
func NewJobManager(tm *TaskManager) *JobManager {
	return &JobManager{tasks: tm, byID: make(map[JobID]*Job)}
}

// Create builds a new Job of kind for creator, owning data as its
// kind-specific immutable input. The job starts pending; its primary task
// is not constructed until the first agent progresses it.
func (jm *JobManager) Create(kind JobKind, creator string, data any) (*Job, error) {
	spec, ok := jobKindRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("fleetcore: unknown job kind %q", kind)
	}
	jm.nextID++
	job := &Job{
		ID:              jm.nextID,
		Kind:            kind,
		Creator:         creator,
		State:           JobPending,
		PrimaryTaskKind: spec.PrimaryTaskKind,
		Participants:    make(map[*Agent]bool),
		Data:            data,
	}
	jm.byID[job.ID] = job
	return job, nil
}

// Get returns the job with the given id, if it is still tracked.
func (jm *JobManager) Get(id JobID) (*Job, bool) {
	j, ok := jm.byID[id]
	return j, ok
}

// All returns every tracked job in an unspecified order, for iteration by
// callers such as the debug console.
func (jm *JobManager) All() []*Job {
	out := make([]*Job, 0, len(jm.byID))
	for _, j := range jm.byID {
		out = append(out, j)
	}
	return out
}

// NextID returns the id counter jobs are currently allocated from, for
// snapshotting alongside the job set (persist.Store.SaveJobs).
func (jm *JobManager) NextID() JobID {
	return jm.nextID
}

// JobRecord is the serializable projection of a Job a persistence layer
// snapshots and restores (§6.3). It lives in core, not persist, for the
// same reason AgentRecord does: Restore needs it without persist importing
// back into core.
type JobRecord struct {
	ID      uint64
	Kind    string
	Creator string
	State   uint8
	Data    json.RawMessage
}

// Restore repopulates the job registry from previously persisted records,
// grouped by creator the way persist.Store.LoadJobs returns them. Every
// restored job comes back with its primary task unbuilt (§6.3: task trees
// are never persisted), ready for ProgressJobForAgent to (re)activate it
// from scratch the next time an agent reaches it. A record whose kind is
// no longer registered, or whose Data fails to decode, is logged and
// skipped rather than aborting the whole restore.
func (jm *JobManager) Restore(eng *Engine, byCreator map[string][]JobRecord, nextID JobID) {
	for creator, records := range byCreator {
		for _, r := range records {
			spec, ok := jobKindRegistry[JobKind(r.Kind)]
			if !ok {
				eng.Log.Error("persist: skipping job with unknown kind", "id", r.ID, "kind", r.Kind)
				continue
			}
			var data any
			if spec.DecodeData != nil {
				decoded, err := spec.DecodeData(r.Data)
				if err != nil {
					eng.Log.Error("persist: skipping job with undecodable data", "id", r.ID, "kind", r.Kind, "err", err)
					continue
				}
				data = decoded
			}
			job := &Job{
				ID:              JobID(r.ID),
				Kind:            JobKind(r.Kind),
				Creator:         creator,
				State:           JobState(r.State),
				PrimaryTaskKind: spec.PrimaryTaskKind,
				Participants:    make(map[*Agent]bool),
				Data:            data,
			}
			jm.byID[job.ID] = job
		}
	}
	if nextID > jm.nextID {
		jm.nextID = nextID
	}
}

// AssignAgent appends job to the tail of agent's priority-ordered job list
// (§3 "agent.jobs ... priority-ordered"), so the Agent Manager's tick loop
// picks it up on agent's next due tick. A job already present is left
// untouched rather than duplicated.
func (jm *JobManager) AssignAgent(job *Job, agent *Agent) {
	for _, j := range agent.Jobs {
		if j == job {
			return
		}
	}
	agent.Jobs = append(agent.Jobs, job)
}

// ProgressJobForAgent drives job forward for agent (§4.2). On the first
// call for the job (across any agent), it activates the primary task via
// the job kind's registered factory; subsequent calls dispatch straight
// into TaskManager.ProgressPrimaryTask. A job that has already completed
// performs no work and no side effects, satisfying invariant 4 generalised
// to jobs: every future call after completion is a no-op.
func (jm *JobManager) ProgressJobForAgent(eng *Engine, job *Job, agent *Agent) (uint, *StateDetails) {
	if job.State == JobCompleted {
		return 0, nil
	}
	if job.State == JobPending {
		job.State = JobActive
	}
	if job.PrimaryTask == nil {
		spec := jobKindRegistry[job.Kind]
		job.PrimaryTask = jm.tasks.NewTask(spec.PrimaryTaskKind, job, nil)
		job.PrimaryTask.Data = spec.NewPrimaryTaskData(job)
	}
	job.Participants[agent] = true

	ticks, details := jm.tasks.ProgressPrimaryTask(eng, job.PrimaryTask, agent)
	jm.checkCompletion(job)
	return ticks, details
}

// ProgressActivatedJobForAgent dispatches directly into the task manager
// for an agent that has already activated job on a previous tick, skipping
// the job-kind construction check the first activation requires (§4.1:
// "For subsequent ticks, call the primary task's Progress(agent)
// directly"). It still checks and propagates job completion.
func (jm *JobManager) ProgressActivatedJobForAgent(eng *Engine, job *Job, agent *Agent) (uint, *StateDetails) {
	if job.State == JobCompleted || job.PrimaryTask == nil {
		return 0, nil
	}
	ticks, details := jm.tasks.ProgressPrimaryTask(eng, job.PrimaryTask, agent)
	jm.checkCompletion(job)
	return ticks, details
}

// checkCompletion promotes job to JobCompleted once its primary task
// reports completed, clearing the primary-task reference so the scanned
// plan and task tree can be collected (§4.2). Job completion is detected
// exactly once; later calls with job.PrimaryTask already nil are no-ops.
func (jm *JobManager) checkCompletion(job *Job) {
	if job.PrimaryTask != nil && job.PrimaryTask.State == TaskCompleted {
		job.State = JobCompleted
		job.PrimaryTask = nil
	}
}

// IsJobCompleteForAgent reports whether job has completed. Job completion
// is global, not per-agent (§9 open question 2).
func (jm *JobManager) IsJobCompleteForAgent(job *Job, _ *Agent) bool {
	return job.State == JobCompleted
}

// RemoveAgentFromJob splices agent out of job's participant set and removes
// job from agent.Jobs (the Agent Manager calls this as its per-tick splice,
// §4.1 step 3).
func (jm *JobManager) RemoveAgentFromJob(job *Job, agent *Agent) {
	delete(job.Participants, agent)
	agent.RemoveJob(job)
}

// Pause propagates a pause for agent through job's task tree and marks the
// agent standby. Resume is intentionally unimplemented: resumption
// semantics are left to v2 (§5 "resumption is not specified in the core").
func (jm *JobManager) Pause(eng *Engine, job *Job, agent *Agent) {
	if job.PrimaryTask != nil {
		jm.tasks.PausingRobotForTask(eng, job.PrimaryTask, agent)
	}
	agent.Scheduling = AgentStandby
}
