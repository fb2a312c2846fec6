package rubikal

import (
	"fmt"
	"strconv"
	"strings"
)

// CubeletCount is the number of cubelets in a 3x3x3 cube.
const CubeletCount = 27

// DisplayState is how a cubelet is drawn. It is orthogonal to position:
// no move ever changes it, only emphasis and initial setup do.
type DisplayState int

const (
	DisplayNormal DisplayState = iota // Stickered faces
	DisplayBlank                      // Plain blank faces
)

func (d DisplayState) String() string {
	switch d {
	case DisplayNormal:
		return "normal"
	case DisplayBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// Coord is a grid coordinate with each component in 0..2.
// It is the form used by whitelist configuration ("x,y,z").
type Coord struct {
	X, Y, Z int
}

// ParseCoord parses an "x,y,z" string such as "1,1,1".
func ParseCoord(s string) (Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 2 {
			return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
		}
		v[i] = n
	}

	return Coord{X: v[0], Y: v[1], Z: v[2]}, nil
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// Position returns the centered cube-space position of the coordinate.
func (c Coord) Position() Vec3 {
	return Vec3{X: float64(c.X - 1), Y: float64(c.Y - 1), Z: float64(c.Z - 1)}
}

// Cubelet is one of the 27 sub-cubes.
type Cubelet struct {
	ID          int          // Stable identity, 0..26
	Home        Coord        // Grid coordinate at initialization
	Position    Vec3         // Current position, integral when at rest
	Orientation Mat3         // Rotation relative to Home
	Display     DisplayState // Current display state

	saved DisplayState // Display state captured by emphasis
}

// grid owns the cubelets for the lifetime of a cube.
type grid struct {
	cubelets [CubeletCount]Cubelet
}

// newGrid lays the cubelets out y-major, then x, then z. If whitelist is
// non-empty, only the listed coordinates start non-blank.
func newGrid(whitelist map[Coord]bool) *grid {
	g := &grid{}
	id := 0
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			for z := 0; z < 3; z++ {
				home := Coord{X: x, Y: y, Z: z}
				display := DisplayNormal
				if len(whitelist) > 0 && !whitelist[home] {
					display = DisplayBlank
				}
				g.cubelets[id] = Cubelet{
					ID:          id,
					Home:        home,
					Position:    home.Position(),
					Orientation: Identity(),
					Display:     display,
				}
				id++
			}
		}
	}
	return g
}

// correctPositions snaps every cubelet back onto the integer grid.
// Incremental rotation leaves floating error that must not reach the indexer.
func (g *grid) correctPositions() {
	for i := range g.cubelets {
		g.cubelets[i].Position = g.cubelets[i].Position.Round()
	}
}
