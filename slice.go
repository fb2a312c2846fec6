package rubikal

import (
	"fmt"
	"math"
)

// Axis names one of the three cube axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Slice addresses one layer of the cube: an axis plus a layer index 0..2.
// Index 0 is the layer at -1 along the axis, index 2 the layer at +1.
// A slice is a derived view over positions, never a stored entity.
type Slice struct {
	Axis  Axis
	Index int
}

// ParseSlice parses a two-character slice name such as "x2".
func ParseSlice(name string) (Slice, error) {
	if len(name) != 2 {
		return Slice{}, fmt.Errorf("%w: %q", ErrSliceLookup, name)
	}

	var axis Axis
	switch name[0] {
	case 'x':
		axis = AxisX
	case 'y':
		axis = AxisY
	case 'z':
		axis = AxisZ
	default:
		return Slice{}, fmt.Errorf("%w: %q", ErrSliceLookup, name)
	}

	if name[1] < '0' || name[1] > '2' {
		return Slice{}, fmt.Errorf("%w: %q", ErrSliceLookup, name)
	}

	return Slice{Axis: axis, Index: int(name[1] - '0')}, nil
}

// String returns the slice name, e.g. "x2".
func (s Slice) String() string {
	return fmt.Sprintf("%s%d", s.Axis, s.Index)
}

func (s Slice) valid() bool {
	return s.Axis >= AxisX && s.Axis <= AxisZ && s.Index >= 0 && s.Index <= 2
}

// layerOf maps a centered coordinate to a slice index.
func layerOf(f float64) int {
	return int(math.Round(f)) + 1
}

// sliceIndex is the membership table: for each axis and layer, the IDs of
// the cubelets currently in that layer, in cubelet order. It is a cache over
// positions and is rebuilt after every completed rotation.
type sliceIndex struct {
	members [3][3][]int
}

// reindex rebuilds the table from current positions. Positions must already
// be corrected; out-of-range layers are left for validate to report.
func (ix *sliceIndex) reindex(g *grid) {
	for a := range ix.members {
		for i := range ix.members[a] {
			ix.members[a][i] = ix.members[a][i][:0]
		}
	}

	for _, c := range g.cubelets {
		for _, a := range []Axis{AxisX, AxisY, AxisZ} {
			layer := layerOf(c.Position.Component(a))
			if layer < 0 || layer > 2 {
				continue
			}
			ix.members[a][layer] = appendUnique(ix.members[a][layer], c.ID)
		}
	}
}

func appendUnique(ids []int, id int) []int {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// slice returns the IDs in s. The returned slice is owned by the index.
func (ix *sliceIndex) slice(s Slice) []int {
	return ix.members[s.Axis][s.Index]
}

// nonRotating returns the 18 IDs on the other two layers of s's axis.
func (ix *sliceIndex) nonRotating(s Slice) []int {
	ids := make([]int, 0, 2*9)
	for i := 0; i < 3; i++ {
		if i == s.Index {
			continue
		}
		ids = append(ids, ix.members[s.Axis][i]...)
	}
	return ids
}

// validate checks the partition invariant: every layer holds exactly 9
// distinct cubelets and every cubelet sits in exactly one layer per axis.
func (ix *sliceIndex) validate() error {
	for a := AxisX; a <= AxisZ; a++ {
		var seen [CubeletCount]int
		for i := 0; i < 3; i++ {
			s := Slice{Axis: a, Index: i}
			if n := len(ix.members[a][i]); n != 9 {
				return fmt.Errorf("%w: slice %s has %d cubelets", ErrInvariantViolation, s, n)
			}
			for _, id := range ix.members[a][i] {
				seen[id]++
			}
		}
		for id, n := range seen {
			if n != 1 {
				return fmt.Errorf("%w: cubelet %d in %d %s slices", ErrInvariantViolation, id, n, a)
			}
		}
	}
	return nil
}
