package core

import "encoding/json"

// JobKind tags a job's kind-specific behaviour, dispatched through the job
// kind registry the same way Task kinds are (§9).
type JobKind string

// JobID identifies a Job within the engine.
type JobID uint64

// JobState is a job's lifecycle state (§3).
type JobState uint8

const (
	JobPending JobState = iota
	JobActive
	JobCompleted
)

// Job is a player-issued unit of work exposing a single primary task
// (§3). Data carries kind-specific immutable input (surface, rectangles,
// force, target position, …) set once at creation.
type Job struct {
	ID      JobID
	Kind    JobKind
	Creator string
	State   JobState

	PrimaryTaskKind TaskKind
	PrimaryTask     *Task

	Participants map[*Agent]bool

	Data any
}

// JobKindSpec is the operations table a job kind registers at init time:
// which task kind is its primary task, and how to build that task's
// task-wide Data from the job's own Data the first time any agent reaches
// it (§4.2 "On first progress for a job, the job's kind-specific Activate
// constructs the primary task").
type JobKindSpec struct {
	PrimaryTaskKind    TaskKind
	NewPrimaryTaskData func(job *Job) any

	// DecodeData unmarshals a persisted job's kind-specific Data back into
	// its concrete type (§6.3). Only needed by callers that restore jobs
	// from a persist.Store snapshot; RegisterJobKind leaves it nil-safe.
	DecodeData func(raw json.RawMessage) (any, error)
}

var jobKindRegistry = make(map[JobKind]JobKindSpec)

// RegisterJobKind installs spec for kind. Never persisted (§6.3, §9).
func RegisterJobKind(kind JobKind, spec JobKindSpec) {
	jobKindRegistry[kind] = spec
}
