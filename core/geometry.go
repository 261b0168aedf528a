package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ChunkSize is the number of world units along one edge of a chunk. Chunk
// positions are computed as floor(x/ChunkSize), floor(y/ChunkSize) — the
// host simulation's tile-to-chunk divisor is a fixed constant of the host
// engine, mirrored here rather than configured.
const ChunkSize = 32.0

// ChunkPos identifies a chunk by its integer column/row coordinates.
type ChunkPos struct {
	X, Y int32
}

// ChunkPosFromPosition returns the chunk a world position falls in.
func ChunkPosFromPosition(pos mgl64.Vec2) ChunkPos {
	return ChunkPos{
		X: int32(math.Floor(pos.X() / ChunkSize)),
		Y: int32(math.Floor(pos.Y() / ChunkSize)),
	}
}

// Rect is an axis-aligned rectangle in world space, min inclusive and max
// exclusive, matching the rectangles a player draws for an area job.
type Rect struct {
	Min, Max mgl64.Vec2
}

// NewRect returns a Rect normalised so Min is the lesser corner.
func NewRect(a, b mgl64.Vec2) Rect {
	return Rect{
		Min: mgl64.Vec2{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y())},
		Max: mgl64.Vec2{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y())},
	}
}

// Contains reports whether pos lies within the rectangle.
func (r Rect) Contains(pos mgl64.Vec2) bool {
	return pos.X() >= r.Min.X() && pos.X() < r.Max.X() && pos.Y() >= r.Min.Y() && pos.Y() < r.Max.Y()
}

// walkAccuracy is the per-axis distance within which a waypoint is
// considered reached. Checked on x and y independently — never diagonal
// distance, since diagonal movement at 45 degrees would otherwise trigger
// spurious arrival on one axis alone.
const walkAccuracy = 0.3

func withinWalkAccuracy(pos, target mgl64.Vec2) bool {
	return math.Abs(pos.X()-target.X()) <= walkAccuracy && math.Abs(pos.Y()-target.Y()) <= walkAccuracy
}

func euclideanDistance(a, b mgl64.Vec2) float64 {
	return a.Sub(b).Len()
}
