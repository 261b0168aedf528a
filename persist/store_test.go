package persist

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/openhaul/fleetcore/core"
)

func TestSaveLoadAgentsRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "snapshot"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	records := []core.AgentRecord{
		{ID: 1, Entity: 42, Force: "red", Master: "player1", Name: "Scout", MiningDistance: 3, MiningSpeed: 1, Scheduling: 0},
		{ID: 2, Entity: 43, Force: "blue", Master: "player2", Name: "Digger", MiningDistance: 4, MiningSpeed: 1.5, Scheduling: 1},
	}
	if err := store.SaveAgents(records, 2); err != nil {
		t.Fatalf("save agents: %v", err)
	}

	loaded, nextID, err := store.LoadAgents()
	if err != nil {
		t.Fatalf("load agents: %v", err)
	}
	if nextID != 2 {
		t.Fatalf("expected next id 2, got %d", nextID)
	}
	if len(loaded) != 2 || loaded[0].Name != "Scout" || loaded[1].Name != "Digger" {
		t.Fatalf("unexpected loaded agents: %+v", loaded)
	}
}

func TestLoadAgentsMissingBucketIsNotAnError(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "snapshot"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	records, nextID, err := store.LoadAgents()
	if err != nil {
		t.Fatalf("expected no error on first run, got %v", err)
	}
	if records != nil || nextID != 0 {
		t.Fatalf("expected an empty snapshot on first run, got %+v / %d", records, nextID)
	}
}

func TestSaveLoadJobsRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "snapshot"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	tasks := core.NewTaskManager()
	jobs := core.NewJobManager(tasks)
	job, err := jobs.Create(core.JobDeconstructArea, "player1", &core.DeconstructAreaJobData{Surface: "overworld"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	byCreator := map[string][]*core.Job{"player1": {job}}
	marshal := func(j *core.Job) (json.RawMessage, error) {
		return json.Marshal(j.Data)
	}
	if err := store.SaveJobs(byCreator, 1, marshal); err != nil {
		t.Fatalf("save jobs: %v", err)
	}

	loaded, nextID, err := store.LoadJobs()
	if err != nil {
		t.Fatalf("load jobs: %v", err)
	}
	if nextID != 1 {
		t.Fatalf("expected next id 1, got %d", nextID)
	}
	records, ok := loaded["player1"]
	if !ok || len(records) != 1 {
		t.Fatalf("expected one job record for player1, got %+v", loaded)
	}
	if records[0].Kind != string(core.JobDeconstructArea) {
		t.Fatalf("unexpected job kind %q", records[0].Kind)
	}
}
