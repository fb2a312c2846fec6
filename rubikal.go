// Package rubikal models an animated 3x3x3 Rubik's cube as 27 addressable
// cubelets and plays face turns as queued, stepped slice rotations.
//
// # Features
//
//   - Slice addressing ("x0".."z2") derived from cubelet positions
//   - Face-turn tokens (U, D, L, R, F, B with an optional inverse marker)
//   - A FIFO rotation queue with one active rotation and a settle pause
//   - Incremental stepping driven by an external per-frame Tick
//   - Optional emphasis that blanks non-rotating cubelets during a turn
//
// # Quick Start
//
//	cube, err := rubikal.New(rubikal.WithUpdatesPerRotation(30))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := cube.RotateFace("R"); err != nil {
//	    log.Fatal(err)
//	}
//	cube.RotateFace("Ui")
//
//	// Call once per rendered frame
//	for cube.Busy() {
//	    cube.Tick()
//	    draw(cube.Snapshot())
//	}
//
// # Move Tokens
//
// A token is a face letter optionally followed by any one character that
// marks the inverse turn:
//
//	R  -> slice x2, direction down
//	Ri -> slice x2, direction up
//	L  -> x0    U -> y2    D -> y0    F -> z2    B -> z0
//
// # Slices
//
// A slice name is an axis letter and a layer index. Layer 0 is the layer
// at -1 along the axis, layer 2 the layer at +1. At rest every cubelet is in
// exactly one slice per axis and every slice holds nine cubelets.
package rubikal
