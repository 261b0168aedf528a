package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// buildPlanWithOneTarget builds a minimal ScannedActionPlan containing a
// single deconstruct target at pos, the way progressScanAreas would after
// resolving one entity.
func buildPlanWithOneTarget(surface string, force Force, id StableID, entity EntityID, pos mgl64.Vec2) *ScannedActionPlan {
	plan := newScannedActionPlan(surface, force)
	chunk := plan.Index.getOrCreate(ChunkPosFromPosition(pos))
	details := &EntityDetails{
		StableID: id,
		Entity:   entity,
		Name:     "Rock",
		Type:     "rock",
		Position: pos,
		Chunk:    chunk,
		Action:   ActionDeconstruct,
		checksum: entityChecksum(id.String(), "Rock", pos.X(), pos.Y()),
	}
	plan.install(details)
	return plan
}

func TestDeconstructMinesTargetWithinRange(t *testing.T) {
	world := newFakeWorld()
	eng := NewEngine(world, nil, nil)
	eng.Settings.Debug.FastDeconstruct = true

	agent := eng.Agents.Spawn(1, "red", "player1", "Miner")
	agent.MiningDistance = 3
	world.addEntity(agent.Entity, "Miner", "robot", mgl64.Vec2{0, 0}, agent.Force, false)

	rockID := EntityID(100)
	world.addEntity(rockID, "Rock", "rock", mgl64.Vec2{1, 0}, agent.Force, true)

	plan := buildPlanWithOneTarget("overworld", agent.Force, UnitNumberID(1), rockID, mgl64.Vec2{1, 0})

	primary := eng.Tasks.NewTask(TaskDeconstruct, nil, nil)
	primary.Data = &deconstructData{Surface: "overworld", Plan: plan, StartChunk: ChunkPos{}, Center: ChunkPos{}}

	var completed bool
	for i := 0; i < 10; i++ {
		ticks, details := eng.Tasks.ProgressPrimaryTask(eng, primary, agent)
		_ = details
		if primary.State == TaskCompleted {
			completed = true
			break
		}
		if ticks == 0 {
			continue
		}
	}

	if !completed {
		t.Fatalf("expected deconstruct task to complete once its single target is mined")
	}
	if world.mineCalls != 1 {
		t.Fatalf("expected exactly one mine call, got %d", world.mineCalls)
	}
	if len(plan.FlatDeconstruct) != 0 {
		t.Fatalf("expected the plan's flat deconstruct map to be empty after mining, got %d entries", len(plan.FlatDeconstruct))
	}
}

func TestDeconstructWalksToOutOfRangeTarget(t *testing.T) {
	world := newFakeWorld()
	eng := NewEngine(world, nil, nil)

	agent := eng.Agents.Spawn(1, "red", "player1", "Miner")
	agent.MiningDistance = 1
	world.addEntity(agent.Entity, "Miner", "robot", mgl64.Vec2{0, 0}, agent.Force, false)

	rockID := EntityID(100)
	world.addEntity(rockID, "Rock", "rock", mgl64.Vec2{10, 0}, agent.Force, true)
	plan := buildPlanWithOneTarget("overworld", agent.Force, UnitNumberID(1), rockID, mgl64.Vec2{10, 0})

	primary := eng.Tasks.NewTask(TaskDeconstruct, nil, nil)
	primary.Data = &deconstructData{Surface: "overworld", Plan: plan}

	ticks, details := eng.Tasks.ProgressPrimaryTask(eng, primary, agent)
	if ticks == 0 {
		t.Fatalf("expected the agent to begin walking toward the out-of-range target")
	}
	if details == nil || details.Text == "" {
		t.Fatalf("expected walking state text")
	}
	if world.mineCalls != 0 {
		t.Fatalf("should not mine before the agent is within mining distance")
	}
}
