package core

import "github.com/go-gl/mathgl/mgl64"

// ActionClass is one of {deconstruct, upgrade, build}, the unit of
// classification in the scanned plan (GLOSSARY).
type ActionClass uint8

const (
	ActionDeconstruct ActionClass = iota
	ActionUpgrade
	ActionBuild
)

func (a ActionClass) String() string {
	switch a {
	case ActionDeconstruct:
		return "deconstruct"
	case ActionUpgrade:
		return "upgrade"
	case ActionBuild:
		return "build"
	default:
		return "unknown"
	}
}

// EntityDetails describes one entity the scan found actionable (§3).
type EntityDetails struct {
	StableID      StableID
	Entity        EntityID
	Name          string
	Type          string
	Position      mgl64.Vec2
	Chunk         *ChunkDetails
	Action        ActionClass
	RequiredItem  string
	RequiredCount int
	// checksum is the staleness checksum described in SPEC_FULL.md; a
	// mismatch on re-derivation means the world handle at StableID no
	// longer refers to the same entity and the record must be dropped
	// rather than acted on.
	checksum uint64
}

// Stale reports whether adapter's current view of d's entity no longer
// matches the checksum captured at resolution time.
func (d *EntityDetails) Stale(adapter WorldAdapter) bool {
	if !adapter.EntityValid(d.Entity) {
		return true
	}
	pos, ok := adapter.EntityPosition(d.Entity)
	if !ok {
		return true
	}
	name := adapter.EntityName(d.Entity)
	return entityChecksum(d.StableID.String(), name, pos.X(), pos.Y()) != d.checksum
}

// ChunkDetails is the per-chunk bucket of actionable entities (§3).
type ChunkDetails struct {
	Pos ChunkPos

	// ToBeDeconstructed is a flat deduped mapping keyed by stable id.
	ToBeDeconstructed map[StableID]*EntityDetails

	// ToBeUpgraded and ToBeBuilt are grouped by entity name, as §4.7 step 3
	// requires for those two action classes.
	ToBeUpgraded map[string]map[StableID]*EntityDetails
	ToBeBuilt    map[string]map[StableID]*EntityDetails
}

func newChunkDetails(pos ChunkPos) *ChunkDetails {
	return &ChunkDetails{
		Pos:               pos,
		ToBeDeconstructed: make(map[StableID]*EntityDetails),
		ToBeUpgraded:      make(map[string]map[StableID]*EntityDetails),
		ToBeBuilt:         make(map[string]map[StableID]*EntityDetails),
	}
}

func (c *ChunkDetails) install(d *EntityDetails) {
	switch d.Action {
	case ActionDeconstruct:
		c.ToBeDeconstructed[d.StableID] = d
	case ActionUpgrade:
		group, ok := c.ToBeUpgraded[d.Name]
		if !ok {
			group = make(map[StableID]*EntityDetails)
			c.ToBeUpgraded[d.Name] = group
		}
		group[d.StableID] = d
	case ActionBuild:
		group, ok := c.ToBeBuilt[d.Name]
		if !ok {
			group = make(map[StableID]*EntityDetails)
			c.ToBeBuilt[d.Name] = group
		}
		group[d.StableID] = d
	}
}

func (c *ChunkDetails) remove(d *EntityDetails) {
	switch d.Action {
	case ActionDeconstruct:
		delete(c.ToBeDeconstructed, d.StableID)
	case ActionUpgrade:
		if group, ok := c.ToBeUpgraded[d.Name]; ok {
			delete(group, d.StableID)
			if len(group) == 0 {
				delete(c.ToBeUpgraded, d.Name)
			}
		}
	case ActionBuild:
		if group, ok := c.ToBeBuilt[d.Name]; ok {
			delete(group, d.StableID)
			if len(group) == 0 {
				delete(c.ToBeBuilt, d.Name)
			}
		}
	}
}

// Empty reports whether the chunk has no remaining work for action.
func (c *ChunkDetails) Empty(action ActionClass) bool {
	switch action {
	case ActionDeconstruct:
		return len(c.ToBeDeconstructed) == 0
	case ActionUpgrade:
		return len(c.ToBeUpgraded) == 0
	case ActionBuild:
		return len(c.ToBeBuilt) == 0
	}
	return true
}

// chunkColumn is the inner level of the two-level chunk index: one X
// column's set of chunk rows plus that column's own Y bounds.
type chunkColumn struct {
	minY, maxY int32
	rows       map[int32]*ChunkDetails
}

// ChunkIndex is the two-level column-then-row chunk index described in §3:
// outer key chunk X, inner key chunk Y, with per-column and global bounds
// tracked as chunks are lazily created.
type ChunkIndex struct {
	columns map[int32]*chunkColumn
	minX, maxX int32
	minY, maxY int32
	initialised bool
}

func newChunkIndex() *ChunkIndex {
	return &ChunkIndex{columns: make(map[int32]*chunkColumn)}
}

// getOrCreate returns the ChunkDetails for pos, creating the column/row and
// updating bounds lazily as §4.7 step 1 requires.
func (idx *ChunkIndex) getOrCreate(pos ChunkPos) *ChunkDetails {
	col, ok := idx.columns[pos.X]
	if !ok {
		col = &chunkColumn{minY: pos.Y, maxY: pos.Y, rows: make(map[int32]*ChunkDetails)}
		idx.columns[pos.X] = col
	}
	if !idx.initialised {
		idx.minX, idx.maxX = pos.X, pos.X
		idx.minY, idx.maxY = pos.Y, pos.Y
		idx.initialised = true
	} else {
		idx.minX = min32(idx.minX, pos.X)
		idx.maxX = max32(idx.maxX, pos.X)
		idx.minY = min32(idx.minY, pos.Y)
		idx.maxY = max32(idx.maxY, pos.Y)
	}
	col.minY = min32(col.minY, pos.Y)
	col.maxY = max32(col.maxY, pos.Y)

	cd, ok := col.rows[pos.Y]
	if !ok {
		cd = newChunkDetails(pos)
		col.rows[pos.Y] = cd
	}
	return cd
}

// Get returns the ChunkDetails at pos, if any.
func (idx *ChunkIndex) Get(pos ChunkPos) (*ChunkDetails, bool) {
	col, ok := idx.columns[pos.X]
	if !ok {
		return nil, false
	}
	cd, ok := col.rows[pos.Y]
	return cd, ok
}

// Bounds returns the global chunk-position bounds observed so far.
func (idx *ChunkIndex) Bounds() (minX, maxX, minY, maxY int32) {
	return idx.minX, idx.maxX, idx.minY, idx.maxY
}

// All iterates every ChunkDetails in the index, column by column. Both
// levels are Go maps, so the visiting order is not defined.
func (idx *ChunkIndex) All(fn func(*ChunkDetails)) {
	for _, col := range idx.columns {
		for _, cd := range col.rows {
			fn(cd)
		}
	}
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// ScannedActionPlan is the output of ScanAreasForActionsToComplete (§3): a
// chunk-indexed, deduped set of actions plus the flat per-class maps that
// share the same *EntityDetails values as the chunk maps (invariant 1).
//
// Deviation from §3/§4.7 step 3: the flat maps here are keyed by StableID
// rather than a freshly assigned sequential key. StableID is already a
// unique, stable key for the lifetime of the plan (the same property a
// sequential key would buy), and keying by it directly lets Remove and the
// chunk-level maps share one identity instead of threading a second
// synthetic key alongside it. Invariant 1/2 hold either way.
type ScannedActionPlan struct {
	Surface string
	Force   Force
	Index   *ChunkIndex

	FlatDeconstruct map[StableID]*EntityDetails
	FlatUpgrade     map[StableID]*EntityDetails
	FlatBuild       map[StableID]*EntityDetails

	RequiredInputItems    map[string]int
	GuaranteedOutputItems map[string]int
}

func newScannedActionPlan(surface string, force Force) *ScannedActionPlan {
	return &ScannedActionPlan{
		Surface:               surface,
		Force:                 force,
		Index:                 newChunkIndex(),
		FlatDeconstruct:       make(map[StableID]*EntityDetails),
		FlatUpgrade:           make(map[StableID]*EntityDetails),
		FlatBuild:             make(map[StableID]*EntityDetails),
		RequiredInputItems:    make(map[string]int),
		GuaranteedOutputItems: make(map[string]int),
	}
}

func (p *ScannedActionPlan) flatFor(action ActionClass) map[StableID]*EntityDetails {
	switch action {
	case ActionDeconstruct:
		return p.FlatDeconstruct
	case ActionUpgrade:
		return p.FlatUpgrade
	case ActionBuild:
		return p.FlatBuild
	}
	return nil
}

// install adds d to both its chunk's grouping and the matching flat map,
// preserving invariant 1 (every EntityDetails referenced by a ChunkDetails
// is also present in the matching flat map).
func (p *ScannedActionPlan) install(d *EntityDetails) {
	d.Chunk.install(d)
	p.flatFor(d.Action)[d.StableID] = d
}

// Remove deletes d from both maps atomically, as invariant 1/2 require of
// any action executor.
func (p *ScannedActionPlan) Remove(d *EntityDetails) {
	d.Chunk.remove(d)
	delete(p.flatFor(d.Action), d.StableID)
}
