package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// TestDeconstructAreaJobEndToEnd drives a whole DeconstructArea job for one
// agent standing next to its only target, through the Agent Manager's
// per-tick scheduling loop, exercising job creation, assignment,
// CompleteArea's phase sequencing, Scan, Deconstruct and the Upgrade/Build
// stubs end to end.
func TestDeconstructAreaJobEndToEnd(t *testing.T) {
	world := newFakeWorld()
	eng := NewEngine(world, nil, nil)
	eng.Settings.Debug.FastDeconstruct = true

	agent := eng.Agents.Spawn(1, "red", "player1", "Miner")
	agent.MiningDistance = 3
	world.addEntity(agent.Entity, "Miner", "robot", mgl64.Vec2{0, 0}, agent.Force, false)

	rockID := EntityID(100)
	world.addEntity(rockID, "Rock", "rock", mgl64.Vec2{1, 0}, agent.Force, true)

	area := NewRect(mgl64.Vec2{-5, -5}, mgl64.Vec2{5, 5})
	job, err := eng.Jobs.Create(JobDeconstructArea, "player1", &DeconstructAreaJobData{
		Surface: "overworld",
		Areas:   []Rect{area},
		Force:   agent.Force,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	eng.Jobs.AssignAgent(job, agent)

	var tick int64
	for i := 0; i < 1000 && job.State != JobCompleted; i++ {
		tick++
		eng.Agents.Tick(tick)
	}

	if job.State != JobCompleted {
		t.Fatalf("expected job to complete, state=%d", job.State)
	}
	if world.mineCalls != 1 {
		t.Fatalf("expected exactly one mine call, got %d", world.mineCalls)
	}
	if len(agent.Jobs) != 0 {
		t.Fatalf("expected the completed job to be spliced out of the agent's job list")
	}
}

func TestDeconstructAreaJobWithNoMatchingEntitiesCompletesQuickly(t *testing.T) {
	world := newFakeWorld()
	eng := NewEngine(world, nil, nil)

	agent := eng.Agents.Spawn(1, "red", "player1", "Idle")
	world.addEntity(agent.Entity, "Idle", "robot", mgl64.Vec2{0, 0}, agent.Force, false)

	area := NewRect(mgl64.Vec2{-5, -5}, mgl64.Vec2{5, 5})
	job, err := eng.Jobs.Create(JobDeconstructArea, "player1", &DeconstructAreaJobData{
		Surface: "overworld",
		Areas:   []Rect{area},
		Force:   agent.Force,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	eng.Jobs.AssignAgent(job, agent)

	var tick int64
	for i := 0; i < 100 && job.State != JobCompleted; i++ {
		tick++
		eng.Agents.Tick(tick)
	}
	if job.State != JobCompleted {
		t.Fatalf("expected an empty-area job to complete quickly, state=%d", job.State)
	}
	if world.mineCalls != 0 {
		t.Fatalf("expected no mine calls when nothing matched the scan")
	}
}
