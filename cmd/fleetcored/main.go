// Command fleetcored runs a standalone fleetcore engine: it loads
// settings and a persisted snapshot, wires a WorldAdapter, and drives the
// engine's tick loop while a debug console accepts commands, the way the
// teacher's cmd/dragonfly wires server.Config and an interactive console
// around a running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openhaul/fleetcore/console"
	"github.com/openhaul/fleetcore/core"
	"github.com/openhaul/fleetcore/persist"
)

const tickInterval = 50 * time.Millisecond // 20 ticks/sec, matching the host simulation's tick rate

func main() {
	var (
		dataDir      = flag.String("data", "fleetcore_data", "directory holding settings.toml and the snapshot store")
		settingsPath = flag.String("settings", "", "path to settings.toml (defaults to <data>/settings.toml)")
	)
	flag.Parse()

	log := slog.Default()

	if *settingsPath == "" {
		*settingsPath = *dataDir + string(os.PathSeparator) + "settings.toml"
	}
	settings, err := core.LoadSettings(*settingsPath)
	if err != nil {
		log.Error("load settings", "err", err)
		os.Exit(1)
	}

	store, err := persist.Open(*dataDir + string(os.PathSeparator) + "snapshot")
	if err != nil {
		log.Error("open snapshot store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	adapter := newStandaloneAdapter(log)
	eng := core.NewEngine(adapter, settings, log)

	if err := restoreAgents(eng, store); err != nil {
		log.Error("restore agents", "err", err)
	}
	if err := restoreJobs(eng, store); err != nil {
		log.Error("restore jobs", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runTickLoop(ctx, eng, adapter, store, log)

	con := console.New(eng, log)
	con.Run(ctx)

	if err := persistAgents(eng, store); err != nil {
		log.Error("persist agents on shutdown", "err", err)
	}
	if err := persistJobs(eng, store); err != nil {
		log.Error("persist jobs on shutdown", "err", err)
	}
}

func runTickLoop(ctx context.Context, eng *core.Engine, adapter *standaloneAdapter, store *persist.Store, log *slog.Logger) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var tick int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			adapter.drainPaths(eng)
			eng.Agents.Tick(tick)
			if tick%(20*60) == 0 { // snapshot roughly once a minute
				if err := persistAgents(eng, store); err != nil {
					log.Error("periodic snapshot", "err", err)
				}
				if err := persistJobs(eng, store); err != nil {
					log.Error("periodic snapshot", "err", err)
				}
			}
		}
	}
}

func persistAgents(eng *core.Engine, store *persist.Store) error {
	return store.SaveAgents(eng.Agents.Snapshot(), eng.Agents.NextID())
}

func restoreAgents(eng *core.Engine, store *persist.Store) error {
	records, nextID, err := store.LoadAgents()
	if err != nil {
		return err
	}
	eng.Agents.Restore(records, nextID)
	return nil
}

// persistJobs snapshots every tracked job, grouped by creator (§6.3 "jobs
// per player-index"), marshalling each job's kind-specific Data as plain
// JSON since Job.Data is an opaque any the core package doesn't encode
// generically.
func persistJobs(eng *core.Engine, store *persist.Store) error {
	byCreator := make(map[string][]*core.Job)
	for _, j := range eng.Jobs.All() {
		byCreator[j.Creator] = append(byCreator[j.Creator], j)
	}
	return store.SaveJobs(byCreator, eng.Jobs.NextID(), func(j *core.Job) (json.RawMessage, error) {
		return json.Marshal(j.Data)
	})
}

func restoreJobs(eng *core.Engine, store *persist.Store) error {
	records, nextID, err := store.LoadJobs()
	if err != nil {
		return err
	}
	eng.Jobs.Restore(eng, records, nextID)
	return nil
}
