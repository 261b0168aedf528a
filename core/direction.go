package core

import "github.com/go-gl/mathgl/mgl64"

// Direction is one of the 8 compass directions the host simulation's
// walking command accepts, numbered clockwise from north per §6.1.
type Direction uint8

const (
	DirectionNorth Direction = iota
	DirectionNorthEast
	DirectionEast
	DirectionSouthEast
	DirectionSouth
	DirectionSouthWest
	DirectionWest
	DirectionNorthWest
)

// unitVectors gives the unit offset vector for each Direction, used only to
// verify the direction-encoding round-trip property (§8.5); production code
// never needs to go from Direction back to a vector.
var unitVectors = [8]mgl64.Vec2{
	DirectionNorth:     {0, -1},
	DirectionNorthEast: {0.7071067811865476, -0.7071067811865476},
	DirectionEast:      {1, 0},
	DirectionSouthEast: {0.7071067811865476, 0.7071067811865476},
	DirectionSouth:     {0, 1},
	DirectionSouthWest: {-0.7071067811865476, 0.7071067811865476},
	DirectionWest:      {-1, 0},
	DirectionNorthWest: {-0.7071067811865476, -0.7071067811865476},
}

// Unit returns the unit vector corresponding to d.
func (d Direction) Unit() mgl64.Vec2 {
	return unitVectors[d&7]
}

// DirectionFromOffset maps the sign of (dx, dy) to the 8-direction encoding:
// N=0, NE=1, E=2, SE=3, S=4, SW=5, W=6, NW=7 (§4.5).
func DirectionFromOffset(dx, dy float64) Direction {
	sx := sign(dx)
	sy := sign(dy)
	switch {
	case sx == 0 && sy < 0:
		return DirectionNorth
	case sx > 0 && sy < 0:
		return DirectionNorthEast
	case sx > 0 && sy == 0:
		return DirectionEast
	case sx > 0 && sy > 0:
		return DirectionSouthEast
	case sx == 0 && sy > 0:
		return DirectionSouth
	case sx < 0 && sy > 0:
		return DirectionSouthWest
	case sx < 0 && sy == 0:
		return DirectionWest
	case sx < 0 && sy < 0:
		return DirectionNorthWest
	default:
		// dx == 0 && dy == 0: no movement needed, direction is arbitrary.
		return DirectionNorth
	}
}

func sign(v float64) int {
	switch {
	case v > 1e-9:
		return 1
	case v < -1e-9:
		return -1
	default:
		return 0
	}
}
