package core

import (
	"sync"

	"github.com/brentp/intintmap"
)

// pathAwaiter is the per-agent task state waiting on a path request's
// result. It is intentionally narrow: only what GetWalkingPath needs to
// finish resolving the request is stored here.
type pathAwaiter struct {
	agent     *Agent
	state     *TaskState
	requestID int64
	inUse     bool
}

// PathRequestRegistry correlates outstanding pathfinder requests to the
// per-agent task state that issued them (§4.10). Lookups are O(1) via an
// intintmap keyed on the int64 request id; values are arena indices into a
// growable slab, which keeps the hot path allocation-free the same way the
// teacher avoids per-tick allocation in its block-collision scratch pool
// (entity.blockBBoxPool).
type PathRequestRegistry struct {
	mu      sync.Mutex
	index   *intintmap.Map
	arena   []pathAwaiter
	freelist []int64
}

// NewPathRequestRegistry returns an empty registry.
func NewPathRequestRegistry() *PathRequestRegistry {
	return &PathRequestRegistry{
		index: intintmap.New(64, 0.75),
	}
}

// Register records that requestID's result should be delivered to state.
func (r *PathRequestRegistry) Register(requestID int64, agent *Agent, state *TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slot int64
	entry := pathAwaiter{agent: agent, state: state, requestID: requestID, inUse: true}
	if n := len(r.freelist); n > 0 {
		slot = r.freelist[n-1]
		r.freelist = r.freelist[:n-1]
		r.arena[slot] = entry
	} else {
		slot = int64(len(r.arena))
		r.arena = append(r.arena, entry)
	}
	r.index.Put(requestID, slot)
}

// Resolve looks up and removes the awaiter for requestID, returning false if
// none is registered — a safe no-op, since a completion callback may race
// with teardown (§4.10, §8.7).
func (r *PathRequestRegistry) Resolve(requestID int64) (*Agent, *TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.index.Get(requestID)
	if !ok {
		return nil, nil, false
	}
	r.index.Del(requestID)
	entry := r.arena[slot]
	r.arena[slot] = pathAwaiter{}
	r.freelist = append(r.freelist, slot)
	if !entry.inUse {
		return nil, nil, false
	}
	return entry.agent, entry.state, true
}

// RemoveForState removes any registered request id pointed at state,
// without knowing its request id. Used during task teardown, which knows
// the per-agent state it owns but not the outstanding request ids (§4.4
// teardown, §5 cancellation semantics). This is a linear scan over the
// arena; outstanding requests per task are expected to be O(1) per agent so
// this stays cheap in practice.
func (r *PathRequestRegistry) RemoveForState(state *TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.arena {
		if r.arena[i].inUse && r.arena[i].state == state {
			r.index.Del(r.arena[i].requestID)
			r.arena[i] = pathAwaiter{}
			r.freelist = append(r.freelist, int64(i))
		}
	}
}

// Len reports the number of live registrations, for tests and diagnostics.
func (r *PathRequestRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index.Size()
}
