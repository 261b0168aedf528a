package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestWalkToLocationEndToEnd(t *testing.T) {
	world := newFakeWorld()
	eng := NewEngine(world, nil, nil)

	agent := eng.Agents.Spawn(1, "red", "player1", "Scout")
	world.addEntity(agent.Entity, "Scout", "robot", mgl64.Vec2{0, 0}, agent.Force, false)

	primary := eng.Tasks.NewTask(TaskWalkToLocation, nil, nil)
	primary.Data = &walkToLocationData{Surface: "overworld", Goal: mgl64.Vec2{5, 0}, Radius: 1}

	ticks, details := eng.Tasks.ProgressPrimaryTask(eng, primary, agent)
	if ticks == 0 {
		t.Fatalf("expected a waiting tick while the path request is outstanding")
	}
	if details == nil || details.Text == "" {
		t.Fatalf("expected state text while searching for a path")
	}
	if eng.PathReg.Len() != 1 {
		t.Fatalf("expected exactly one outstanding path request, got %d", eng.PathReg.Len())
	}

	world.DeliverQueued(eng)

	for i := 0; i < 20; i++ {
		state := eng.Tasks.StateFor(primary, agent)
		if state.Status == AgentTaskCompleted {
			break
		}
		eng.Tasks.ProgressPrimaryTask(eng, primary, agent)
		world.step(agent.Entity, mgl64.Vec2{1, 0})
	}

	state := eng.Tasks.StateFor(primary, agent)
	if state.Status != AgentTaskCompleted {
		t.Fatalf("expected walk to location to complete, got status %d", state.Status)
	}
}

func TestWalkToLocationTimeoutRetriesWithoutStandby(t *testing.T) {
	world := newFakeWorld()
	eng := NewEngine(world, nil, nil)
	agent := eng.Agents.Spawn(1, "red", "player1", "Scout")
	world.addEntity(agent.Entity, "Scout", "robot", mgl64.Vec2{0, 0}, agent.Force, false)

	primary := eng.Tasks.NewTask(TaskWalkToLocation, nil, nil)
	primary.Data = &walkToLocationData{Surface: "overworld", Goal: mgl64.Vec2{5, 0}, Radius: 1}

	eng.Tasks.ProgressPrimaryTask(eng, primary, agent)

	// Deliver a "try again later" timeout instead of a real path.
	reqID := world.queuedPaths[0].requestID
	world.queuedPaths = nil
	eng.DeliverPathResult(reqID, PathResult{TryAgainLater: true})

	ticks, details := eng.Tasks.ProgressPrimaryTask(eng, primary, agent)
	if ticks == 0 {
		t.Fatalf("expected a retry delay after a path timeout")
	}
	if details == nil || details.Severity != SeverityWarning {
		t.Fatalf("expected a warning severity after a path timeout")
	}
	if agent.Scheduling != AgentActive {
		t.Fatalf("a path timeout should not standby the agent, only a confirmed no-path result")
	}
}
