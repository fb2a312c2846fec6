package rubikal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Face represents a cube face in move notation.
type Face string

const (
	FaceR Face = "R" // Right
	FaceL Face = "L" // Left
	FaceU Face = "U" // Up
	FaceD Face = "D" // Down
	FaceF Face = "F" // Front
	FaceB Face = "B" // Back
)

// Faces lists every face in notation order.
var Faces = []Face{FaceU, FaceD, FaceL, FaceR, FaceF, FaceB}

// Slice returns the outer layer turned by the face.
func (f Face) Slice() (Slice, error) {
	switch f {
	case FaceR:
		return Slice{Axis: AxisX, Index: 2}, nil
	case FaceL:
		return Slice{Axis: AxisX, Index: 0}, nil
	case FaceU:
		return Slice{Axis: AxisY, Index: 2}, nil
	case FaceD:
		return Slice{Axis: AxisY, Index: 0}, nil
	case FaceF:
		return Slice{Axis: AxisZ, Index: 2}, nil
	case FaceB:
		return Slice{Axis: AxisZ, Index: 0}, nil
	default:
		return Slice{}, fmt.Errorf("%w: face %q", ErrInvalidMove, string(f))
	}
}

// Token returns the move token for the face, with the inverse marker if requested.
func (f Face) Token(inverse bool) string {
	if inverse {
		return string(f) + "i"
	}
	return string(f)
}

// Direction is the sense of a slice rotation about its axis.
// DirectionUp adds to the pivot angle, DirectionDown subtracts from it.
type Direction int

const (
	DirectionDown Direction = iota // Plain face token
	DirectionUp                    // Inverse face token
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "unknown"
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}
	return DirectionUp
}

func (d Direction) sign() int {
	if d == DirectionUp {
		return 1
	}
	return -1
}

// Rotation is a request to turn one slice a quarter turn.
// It is immutable once enqueued.
type Rotation struct {
	Slice     Slice
	Direction Direction
}

// String returns e.g. "x2:down".
func (r Rotation) String() string {
	return r.Slice.String() + ":" + r.Direction.String()
}

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation {
	return Rotation{Slice: r.Slice, Direction: r.Direction.Opposite()}
}

// Token returns the face token that produces r, or "" for a middle slice.
func (r Rotation) Token() string {
	for _, f := range Faces {
		if s, _ := f.Slice(); s == r.Slice {
			return f.Token(r.Direction == DirectionUp)
		}
	}
	return ""
}

// ParseMove translates a face-turn token into a rotation.
// The first character is one of U, D, L, R, F, B (uppercase only).
// Any second character marks the inverse turn, e.g. "Ri" or "R'".
func ParseMove(token string) (Rotation, error) {
	n := utf8.RuneCountInString(token)
	if n < 1 || n > 2 {
		return Rotation{}, fmt.Errorf("%w: %q", ErrInvalidMove, token)
	}

	slice, err := Face(token[:1]).Slice()
	if err != nil {
		return Rotation{}, fmt.Errorf("%w: %q", ErrInvalidMove, token)
	}

	dir := DirectionDown
	if n > 1 {
		dir = DirectionUp
	}

	return Rotation{Slice: slice, Direction: dir}, nil
}

// ParseMoves parses a whitespace-separated sequence of tokens.
// It fails on the first invalid token and returns no rotations.
func ParseMoves(s string) ([]Rotation, error) {
	parts := strings.Fields(s)
	rotations := make([]Rotation, 0, len(parts))

	for _, part := range parts {
		r, err := ParseMove(part)
		if err != nil {
			return nil, err
		}
		rotations = append(rotations, r)
	}

	return rotations, nil
}

// FormatMoves formats rotations as space-separated tokens.
// Middle-slice rotations are written in slice form.
func FormatMoves(rotations []Rotation) string {
	parts := make([]string, len(rotations))
	for i, r := range rotations {
		if tok := r.Token(); tok != "" {
			parts[i] = tok
		} else {
			parts[i] = r.String()
		}
	}
	return strings.Join(parts, " ")
}
