package core

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/segmentio/fasthash/fnv1a"
)

// AgentSchedulingState is an agent's scheduling state in {active, standby}
// (§3). Standby agents are skipped entirely by the Agent Manager's tick
// loop (§4.1, §5).
type AgentSchedulingState uint8

const (
	AgentActive AgentSchedulingState = iota
	AgentStandby
)

// AgentID identifies an Agent within the engine.
type AgentID uint64

// Color is a simple RGB triple used for an agent's above-head text and
// debug overlays.
type Color struct {
	R, G, B uint8
}

// Agent is an autonomous worker entity operating on behalf of a master
// player (§3). Agent owns its job list and scheduling bookkeeping; the
// world entity backing it is referenced only by EntityID, read through
// WorldAdapter.
type Agent struct {
	ID     AgentID
	Entity EntityID
	Force  Force
	Master string
	Name   string
	Color  Color

	Jobs []*Job // priority-ordered, head-first

	Scheduling    AgentSchedulingState
	BusyUntilTick int64

	MiningDistance float64
	MiningSpeed    float64

	render     RenderHandle
	lastText   StateDetails
	hasText    bool
	lastPos    mgl64.Vec2
	lastHasPos bool

	activatedJob map[*Job]bool // per-job "has this agent's progress been activated" flag
}

// NewAgent constructs an Agent with a deterministic display color derived
// from its name via FNV-1a (fasthash), so two agents never need a random
// source to look visually distinct and the same name always reproduces the
// same color across restarts.
func NewAgent(id AgentID, entity EntityID, force Force, master, name string) *Agent {
	h := fnv1a.HashString32(name)
	return &Agent{
		ID:             id,
		Entity:         entity,
		Force:          force,
		Master:         master,
		Name:           name,
		Color:          Color{R: uint8(h), G: uint8(h >> 8), B: uint8(h >> 16)},
		Scheduling:     AgentActive,
		MiningDistance: 3,
		MiningSpeed:    1,
		activatedJob:   make(map[*Job]bool),
	}
}

// RemoveJob splices job out of the agent's job list, if present.
func (a *Agent) RemoveJob(job *Job) {
	for i, j := range a.Jobs {
		if j == job {
			a.Jobs = append(a.Jobs[:i], a.Jobs[i+1:]...)
			delete(a.activatedJob, job)
			return
		}
	}
}
