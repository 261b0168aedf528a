// Package persist snapshots the engine's top-level persisted state (§6.3)
// to a LevelDB key-value store, the way the teacher's world package backs
// chunk storage with github.com/df-mc/goleveldb (world/world.go).
//
// Snapshotted here: agents and their next-id counter, and jobs and their
// next-id counter. Settings are not in this store; they live in their own
// TOML file (core.LoadSettings). Task trees are not serialized — they hold
// live *Agent/*TaskState pointers and kind-specific closures that cannot
// survive a restart (§6.3 "Function references are never persisted"); a
// restored job comes back with its persisted state and no primary task,
// which JobManager.ProgressJobForAgent rebuilds the next time an agent
// reaches it. The Path Request Registry is deliberately not
// persisted either: its entries correlate to exactly the same live
// per-agent task state a task tree would need restored first, so any
// request still outstanding at snapshot time is simply lost — the owning
// task resubmits it once the job rebuilds.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/google/uuid"

	"github.com/openhaul/fleetcore/core"
)

// Store is a snapshot store backed by a single LevelDB database directory.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if absent) the LevelDB database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("persist: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// agentsSnapshot is the whole agents bucket: every agent record plus the
// next-id counter agents were allocated from (§6.3).
type agentsSnapshot struct {
	Revision string
	NextID   uint64
	Agents   []core.AgentRecord
}

const agentsKey = "agents"

// SaveAgents snapshots records (as produced by AgentManager.Snapshot),
// tagging the snapshot with a fresh revision id so concurrent readers can
// detect a torn read across process restarts.
func (s *Store) SaveAgents(records []core.AgentRecord, nextID core.AgentID) error {
	snap := agentsSnapshot{
		Revision: uuid.NewString(),
		NextID:   uint64(nextID),
		Agents:   records,
	}
	encoded, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: marshal agents: %w", err)
	}
	return s.db.Put([]byte(agentsKey), encoded, nil)
}

// LoadAgents reads back the agents bucket. A missing bucket (first run) is
// not an error; it returns an empty snapshot.
func (s *Store) LoadAgents() ([]core.AgentRecord, core.AgentID, error) {
	raw, err := s.db.Get([]byte(agentsKey), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("persist: read agents: %w", err)
	}
	var snap agentsSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, 0, fmt.Errorf("persist: unmarshal agents: %w", err)
	}
	return snap.Agents, core.AgentID(snap.NextID), nil
}

type jobsSnapshot struct {
	Revision string
	NextID   uint64
	Jobs     map[string][]core.JobRecord // keyed by creator (player index), per §6.3
}

const jobsKey = "jobs"

// SaveJobs snapshots jobs grouped by creator, with marshalled kind-specific
// Data. Callers supply their own marshaller per job since Job.Data is an
// opaque any the core package does not know how to encode generically.
func (s *Store) SaveJobs(byCreator map[string][]*core.Job, nextID core.JobID, marshalData func(*core.Job) (json.RawMessage, error)) error {
	snap := jobsSnapshot{
		Revision: uuid.NewString(),
		NextID:   uint64(nextID),
		Jobs:     make(map[string][]core.JobRecord, len(byCreator)),
	}
	for creator, jobs := range byCreator {
		records := make([]core.JobRecord, 0, len(jobs))
		for _, j := range jobs {
			data, err := marshalData(j)
			if err != nil {
				return fmt.Errorf("persist: marshal job %d data: %w", j.ID, err)
			}
			records = append(records, core.JobRecord{
				ID:      uint64(j.ID),
				Kind:    string(j.Kind),
				Creator: j.Creator,
				State:   uint8(j.State),
				Data:    data,
			})
		}
		snap.Jobs[creator] = records
	}
	encoded, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: marshal jobs: %w", err)
	}
	return s.db.Put([]byte(jobsKey), encoded, nil)
}

// LoadJobs reads back the jobs bucket. A missing bucket is not an error.
func (s *Store) LoadJobs() (map[string][]core.JobRecord, core.JobID, error) {
	raw, err := s.db.Get([]byte(jobsKey), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("persist: read jobs: %w", err)
	}
	var snap jobsSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, 0, fmt.Errorf("persist: unmarshal jobs: %w", err)
	}
	return snap.Jobs, core.JobID(snap.NextID), nil
}
