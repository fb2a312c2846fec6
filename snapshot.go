package rubikal

import "math"

// Settled returns the cubelets as they would rest if the active rotation
// snapped to its nearest quarter turn. Renderers that draw on the integer
// grid use it to show a turn in progress. At rest it equals Cubelets.
func (s Snapshot) Settled() []Cubelet {
	out := make([]Cubelet, len(s.Cubelets))
	copy(out, s.Cubelets)

	if s.Active == nil {
		return out
	}

	axis := s.Active.Slice.Axis
	quarters := int(math.Round(s.Angle / (math.Pi / 2)))
	residual := float64(quarters)*math.Pi/2 - s.Angle

	turn := Identity()
	step := quarterTurn(axis, DirectionUp)
	if quarters < 0 {
		step = quarterTurn(axis, DirectionDown)
	}
	for i := 0; i < abs(quarters); i++ {
		turn = step.Mul(turn)
	}

	for i := range out {
		c := &out[i]
		// Rotation about an axis leaves that component alone
		if layerOf(c.Position.Component(axis)) != s.Active.Slice.Index {
			continue
		}
		c.Position = rotate(c.Position, axis, residual).Round()
		c.Orientation = turn.Mul(c.Orientation)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
