package core

import "errors"

// ErrPathTimeout indicates the pathfinder replied try_again_later; retryable.
var ErrPathTimeout = errors.New("fleetcore: pathfinder timed out")

// ErrNoPath indicates the pathfinder found no path at all; fatal for the
// request that produced it.
var ErrNoPath = errors.New("fleetcore: no path found")

// ErrInventoryOverflow is returned by the deconstruct task when the host
// reports the agent's inventory could not hold mined items. Handling this
// gracefully (empty inventory, then resume) is an acknowledged v2 item
// (§7, §9); THE CORE surfaces it as an error instead of panicking so the
// tick handler never crashes. The agent keeps its target, so its next
// progress call attempts the same mine again.
var ErrInventoryOverflow = errors.New("fleetcore: agent inventory overflowed during deconstruction")

// ErrUnknownActionClass is an internal invariant violation: a dedup entry
// carried an action class tag the resolver does not recognise.
var ErrUnknownActionClass = errors.New("fleetcore: unknown action class")
