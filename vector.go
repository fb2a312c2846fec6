package rubikal

import (
	"fmt"
	"math"
)

// Vec3 is a position in cube space. The cube is centered on the origin,
// so a cubelet at rest sits on a coordinate in {-1, 0, 1} on every axis.
type Vec3 struct {
	X, Y, Z float64
}

// Component returns the coordinate along the given axis.
func (v Vec3) Component(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// Round snaps every coordinate to its nearest integer.
func (v Vec3) Round() Vec3 {
	return Vec3{X: snap(v.X), Y: snap(v.Y), Z: snap(v.Z)}
}

// snap rounds f and folds -0 into 0.
func snap(f float64) float64 {
	return math.Round(f) + 0
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}

// rotate turns v by angle radians about the given axis through the origin.
// Positive angles follow the right-hand rule.
func rotate(v Vec3, a Axis, angle float64) Vec3 {
	s, c := math.Sincos(angle)
	switch a {
	case AxisX:
		return Vec3{X: v.X, Y: v.Y*c - v.Z*s, Z: v.Y*s + v.Z*c}
	case AxisY:
		return Vec3{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
	default:
		return Vec3{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c, Z: v.Z}
	}
}

// Mat3 is an integer rotation matrix describing a cubelet's orientation
// relative to its initial placement. Only the 24 proper cube rotations occur.
type Mat3 [3][3]int

// Identity returns the orientation of a cubelet that has never turned.
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return r
}

// Apply rotates an integer direction vector.
func (m Mat3) Apply(v [3]int) [3]int {
	return [3]int{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// quarterTurn returns the exact 90° rotation about a, positive for DirectionUp.
func quarterTurn(a Axis, d Direction) Mat3 {
	s := d.sign()
	switch a {
	case AxisX:
		return Mat3{{1, 0, 0}, {0, 0, -s}, {0, s, 0}}
	case AxisY:
		return Mat3{{0, 0, s}, {0, 1, 0}, {-s, 0, 0}}
	default:
		return Mat3{{0, -s, 0}, {s, 0, 0}, {0, 0, 1}}
	}
}
