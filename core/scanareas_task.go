package core

func init() {
	RegisterTaskKind(TaskScanAreas, TaskHooks{
		Progress:  progressScanAreas,
		RemoveAll: removeAllScanAreas,
	})
}

// EntitiesDedupedPerBatch bounds how many raw entity entries stage 2
// (dedup) processes in a single Progress call (§4.7).
const EntitiesDedupedPerBatch = 1000

// EntitiesHandledPerBatch bounds how many dedup entries stage 3
// (resolve & index) processes in a single Progress call (§4.7).
const EntitiesHandledPerBatch = 100

// scanAreasData is the task-wide state of the pipeline (§4.7): the input
// rectangles, the raw per-area buckets, the running dedup maps, and the
// plan under construction.
type scanAreasData struct {
	Surface string
	Force   Force
	Areas   []Rect

	rawDeconstructOwn     [][]EntityID
	rawDeconstructNeutral [][]EntityID
	rawUpgrade            [][]EntityID
	rawGhost              [][]EntityID

	allRawDataObtained bool

	dedupDeconstruct map[StableID]EntityID
	dedupUpgrade     map[StableID]EntityID
	dedupBuild       map[StableID]EntityID
	neutralPending   []EntityID

	allDataDeduped bool

	resolveOrder []ActionClass
	resolveIdx   int

	plan                    *ScannedActionPlan
	requiredManipulateItems map[string]struct{}
	renders                 []RenderHandle
}

func progressScanAreas(eng *Engine, t *Task, agent *Agent) (uint, *StateDetails) {
	data, _ := t.Data.(*scanAreasData)
	if data == nil {
		return 1, &StateDetails{Text: "Scan not initialised", Severity: SeverityError}
	}
	state := eng.Tasks.StateFor(t, agent)

	if t.State == TaskCompleted {
		state.Status = AgentTaskCompleted
		return 0, nil
	}

	if !data.allRawDataObtained {
		collectRawData(eng, data)
		data.allRawDataObtained = true
		return 1, &StateDetails{Text: "Scanning areas", Severity: SeverityNormal}
	}

	if !data.allDataDeduped {
		dedupBatch(eng, data)
		return 1, &StateDetails{Text: "Scanning areas", Severity: SeverityNormal}
	}

	if data.resolveIdx < len(data.resolveOrder) {
		resolveBatch(eng, data)
		if data.resolveIdx >= len(data.resolveOrder) {
			finishScan(eng, t, data)
			state.Status = AgentTaskCompleted
			return 0, &StateDetails{Text: "Scan complete", Severity: SeverityNormal}
		}
		return 1, &StateDetails{Text: "Indexing scanned actions", Severity: SeverityNormal}
	}

	finishScan(eng, t, data)
	state.Status = AgentTaskCompleted
	return 0, &StateDetails{Text: "Scan complete", Severity: SeverityNormal}
}

// collectRawData is stage 1 (§4.7): one agent's single call gathers four
// raw entity lists per rectangle. Rectangles may overlap; dedup happens in
// stage 2.
func collectRawData(eng *Engine, data *scanAreasData) {
	n := len(data.Areas)
	data.rawDeconstructOwn = make([][]EntityID, n)
	data.rawDeconstructNeutral = make([][]EntityID, n)
	data.rawUpgrade = make([][]EntityID, n)
	data.rawGhost = make([][]EntityID, n)

	for i, rect := range data.Areas {
		data.rawDeconstructOwn[i] = eng.Adapter.FindEntities(data.Surface, rect, EntityFilter{
			Force: data.Force, ToBeDeconstructed: true,
		})
		data.rawDeconstructNeutral[i] = eng.Adapter.FindEntities(data.Surface, rect, EntityFilter{
			ToBeDeconstructed: true, AnyForceNeutralTree: true,
		})
		data.rawUpgrade[i] = eng.Adapter.FindEntities(data.Surface, rect, EntityFilter{
			Force: data.Force, ToBeUpgraded: true,
		})
		data.rawGhost[i] = eng.Adapter.FindEntities(data.Surface, rect, EntityFilter{
			Force: data.Force, Ghost: true,
		})
	}

	data.dedupDeconstruct = make(map[StableID]EntityID)
	data.dedupUpgrade = make(map[StableID]EntityID)
	data.dedupBuild = make(map[StableID]EntityID)
}

// dedupBatch is stage 2 (§4.7): drains up to EntitiesDedupedPerBatch raw
// entries per call across the four buckets, keying by stable id. Budget
// left once the other three buckets are drained goes to the
// neutral-deconstruction post-pass; allDataDeduped flips once all four are
// empty.
func dedupBatch(eng *Engine, data *scanAreasData) {
	budget := EntitiesDedupedPerBatch

	budget = drainBucket(eng, data.rawDeconstructOwn, data.dedupDeconstruct, budget)
	budget = drainBucket(eng, data.rawUpgrade, data.dedupUpgrade, budget)
	budget = drainBucket(eng, data.rawGhost, data.dedupBuild, budget)
	drainNeutralBucket(eng, data, budget)

	if bucketsEmpty(data.rawDeconstructOwn) && bucketsEmpty(data.rawUpgrade) &&
		bucketsEmpty(data.rawGhost) && bucketsEmpty(data.rawDeconstructNeutral) {
		data.allDataDeduped = true
		data.resolveOrder = []ActionClass{ActionDeconstruct, ActionUpgrade, ActionBuild}
		data.resolveIdx = 0
	}
}

func bucketsEmpty(buckets [][]EntityID) bool {
	for _, b := range buckets {
		if len(b) != 0 {
			return false
		}
	}
	return true
}

func drainBucket(eng *Engine, buckets [][]EntityID, dedup map[StableID]EntityID, budget int) int {
	for i := range buckets {
		for budget > 0 && len(buckets[i]) > 0 {
			entity := buckets[i][len(buckets[i])-1]
			buckets[i] = buckets[i][:len(buckets[i])-1]
			id := stableIDFor(eng.Adapter, entity)
			dedup[id] = entity
			budget--
		}
		if budget == 0 {
			break
		}
	}
	return budget
}

// drainNeutralBucket is the post-pass (§4.7 stage 2): a neutral tree/rock
// already captured by the force-owned deconstruct bucket is dropped; one
// newly registered for deconstruction on this task's force is merged in.
func drainNeutralBucket(eng *Engine, data *scanAreasData, budget int) int {
	for i := range data.rawDeconstructNeutral {
		for budget > 0 && len(data.rawDeconstructNeutral[i]) > 0 {
			bucket := data.rawDeconstructNeutral[i]
			entity := bucket[len(bucket)-1]
			data.rawDeconstructNeutral[i] = bucket[:len(bucket)-1]
			budget--

			id := stableIDFor(eng.Adapter, entity)
			if _, already := data.dedupDeconstruct[id]; already {
				continue
			}
			if eng.Adapter.IsRegisteredForDeconstruction(entity, data.Force) {
				data.dedupDeconstruct[id] = entity
			}
		}
		if budget == 0 {
			break
		}
	}
	return budget
}

// resolveBatch is stage 3 (§4.7): walks the dedup maps in order
// deconstruct, upgrade, build, resolving required/guaranteed items, computing
// chunk placement and installing EntityDetails into the plan.
func resolveBatch(eng *Engine, data *scanAreasData) {
	if data.plan == nil {
		data.plan = newScannedActionPlan(data.Surface, data.Force)
	}
	budget := EntitiesHandledPerBatch

	for budget > 0 && data.resolveIdx < len(data.resolveOrder) {
		action := data.resolveOrder[data.resolveIdx]
		dedup, ok := data.dedupFor(action)
		if !ok {
			eng.Log.Error("scan: skipping unrecognised action class", "err", ErrUnknownActionClass)
			data.resolveIdx++
			continue
		}
		if len(dedup) == 0 {
			data.resolveIdx++
			continue
		}
		var id StableID
		var entity EntityID
		for k, v := range dedup {
			id, entity = k, v
			break
		}
		delete(dedup, id)
		budget--

		if !eng.Adapter.EntityValid(entity) {
			continue
		}
		resolveEntity(eng, data, action, id, entity)
	}
}

// dedupFor returns action's dedup map. ok is false only for an action
// class the resolver does not recognise (ErrUnknownActionClass) — an
// internal invariant violation, since resolveOrder is built from exactly
// the three known classes.
func (d *scanAreasData) dedupFor(action ActionClass) (dedup map[StableID]EntityID, ok bool) {
	switch action {
	case ActionDeconstruct:
		return d.dedupDeconstruct, true
	case ActionUpgrade:
		return d.dedupUpgrade, true
	case ActionBuild:
		return d.dedupBuild, true
	}
	return nil, false
}

func resolveEntity(eng *Engine, data *scanAreasData, action ActionClass, id StableID, entity EntityID) {
	pos, ok := eng.Adapter.EntityPosition(entity)
	if !ok {
		return
	}
	name := eng.Adapter.EntityName(entity)
	typ := eng.Adapter.EntityType(entity)
	chunk := data.plan.Index.getOrCreate(ChunkPosFromPosition(pos))

	requiredItem, requiredCount := "", 0
	switch action {
	case ActionUpgrade:
		requiredItem, requiredCount = resolveUpgradeItem(eng, data, name, typ)
	case ActionBuild:
		resolveGuaranteedOutputs(eng, data, name, typ)
	}

	details := &EntityDetails{
		StableID:      id,
		Entity:        entity,
		Name:          name,
		Type:          typ,
		Position:      pos,
		Chunk:         chunk,
		Action:        action,
		RequiredItem:  requiredItem,
		RequiredCount: requiredCount,
		checksum:      entityChecksum(id.String(), name, pos.X(), pos.Y()),
	}
	data.plan.install(details)
}

// resolveUpgradeItem implements §4.7 step 2's item-resolution rule for
// upgrades: a same-name "upgrade" is really a rotation, consuming one
// manipulate-required item tracked separately rather than per action; any
// other upgrade target consumes one of the new type's placement item.
func resolveUpgradeItem(eng *Engine, data *scanAreasData, name, typ string) (string, int) {
	targetName := name
	if v, ok := eng.ProtoCache.Attribute(eng.Adapter, typ, name, "upgrade_target_name"); ok {
		if s, ok := v.(string); ok && s != "" {
			targetName = s
		}
	}
	item := targetName
	if v, ok := eng.ProtoCache.Attribute(eng.Adapter, typ, targetName, "placeable_item"); ok {
		if s, ok := v.(string); ok && s != "" {
			item = s
		}
	}
	if targetName == name {
		if data.requiredManipulateItems == nil {
			data.requiredManipulateItems = make(map[string]struct{})
		}
		data.requiredManipulateItems[item] = struct{}{}
		return item, 0
	}
	data.plan.RequiredInputItems[item]++
	return item, 1
}

// resolveGuaranteedOutputs implements §4.7 step 2's output-resolution rule:
// the mined products of the current entity whose probability is exactly 1
// and whose amount is at least 1 are guaranteed, so Deconstruct/Build
// planning can rely on them without a probabilistic model.
func resolveGuaranteedOutputs(eng *Engine, data *scanAreasData, name, typ string) {
	v, ok := eng.ProtoCache.Attribute(eng.Adapter, typ, name, "mine_results")
	if !ok {
		return
	}
	results, ok := v.(map[string]struct {
		Probability float64
		Amount      int
	})
	if !ok {
		return
	}
	for item, r := range results {
		if r.Probability == 1 && r.Amount >= 1 {
			data.plan.GuaranteedOutputItems[item] += r.Amount
		}
	}
}

// finishScan merges _requiredManipulateItems into RequiredInputItems
// (§4.7: "each absent key gets value 1"), destroys debug overlays and marks
// the task complete; its Data becomes the immutable plan CompleteArea and
// Deconstruct consume.
func finishScan(eng *Engine, t *Task, data *scanAreasData) {
	if t.State == TaskCompleted {
		return
	}
	for item := range data.requiredManipulateItems {
		if _, ok := data.plan.RequiredInputItems[item]; !ok {
			data.plan.RequiredInputItems[item] = 1
		}
	}
	for _, h := range data.renders {
		eng.Adapter.DestroyRender(h)
	}
	data.renders = nil
	t.State = TaskCompleted
}

func removeAllScanAreas(eng *Engine, t *Task) {
	data, _ := t.Data.(*scanAreasData)
	if data == nil {
		return
	}
	for _, h := range data.renders {
		eng.Adapter.DestroyRender(h)
	}
	data.renders = nil
}
