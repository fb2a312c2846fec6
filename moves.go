package rubikal

// Predefined rotations for convenience.
// Use these with Cube.Rotate instead of constructing Rotation structs manually.
//
// Example:
//
//	cube.Rotate(rubikal.R)
//	cube.Rotate(rubikal.Ui)
var (
	// Right face (x2)
	R  = Rotation{Slice: Slice{Axis: AxisX, Index: 2}, Direction: DirectionDown}
	Ri = Rotation{Slice: Slice{Axis: AxisX, Index: 2}, Direction: DirectionUp}

	// Left face (x0)
	L  = Rotation{Slice: Slice{Axis: AxisX, Index: 0}, Direction: DirectionDown}
	Li = Rotation{Slice: Slice{Axis: AxisX, Index: 0}, Direction: DirectionUp}

	// Up face (y2)
	U  = Rotation{Slice: Slice{Axis: AxisY, Index: 2}, Direction: DirectionDown}
	Ui = Rotation{Slice: Slice{Axis: AxisY, Index: 2}, Direction: DirectionUp}

	// Down face (y0)
	D  = Rotation{Slice: Slice{Axis: AxisY, Index: 0}, Direction: DirectionDown}
	Di = Rotation{Slice: Slice{Axis: AxisY, Index: 0}, Direction: DirectionUp}

	// Front face (z2)
	F  = Rotation{Slice: Slice{Axis: AxisZ, Index: 2}, Direction: DirectionDown}
	Fi = Rotation{Slice: Slice{Axis: AxisZ, Index: 2}, Direction: DirectionUp}

	// Back face (z0)
	B  = Rotation{Slice: Slice{Axis: AxisZ, Index: 0}, Direction: DirectionDown}
	Bi = Rotation{Slice: Slice{Axis: AxisZ, Index: 0}, Direction: DirectionUp}
)

// SexyMove is R U Ri Ui; six repetitions return the cube to its start.
var SexyMove = []Rotation{R, U, Ri, Ui}
