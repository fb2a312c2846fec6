package rubikal

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func newTestCube(t *testing.T, opts ...Option) *Cube {
	t.Helper()
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func tickN(c *Cube, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

// complete runs until idle and fails the test if that takes too long.
func complete(t *testing.T, c *Cube) {
	t.Helper()
	if _, err := c.RunUntilIdle(10000); err != nil {
		t.Fatal(err)
	}
}

func assertPartition(t *testing.T, c *Cube) {
	t.Helper()
	for _, axis := range []string{"x", "y", "z"} {
		seen := make(map[int]int)
		for i := 0; i < 3; i++ {
			name := axis + string(rune('0'+i))
			members, err := c.Slice(name)
			if err != nil {
				t.Fatalf("Slice(%s): %v", name, err)
			}
			if len(members) != 9 {
				t.Errorf("slice %s has %d cubelets, want 9", name, len(members))
			}
			for _, m := range members {
				seen[m.ID]++
				if got := layerOf(m.Position.Component(axisFromLetter(axis))); got != i {
					t.Errorf("cubelet %d listed in %s but sits on layer %d", m.ID, name, got)
				}
			}
		}
		if len(seen) != CubeletCount {
			t.Errorf("%s slices cover %d cubelets, want %d", axis, len(seen), CubeletCount)
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("cubelet %d appears in %d %s slices", id, n, axis)
			}
		}
	}
}

func axisFromLetter(s string) Axis {
	switch s {
	case "x":
		return AxisX
	case "y":
		return AxisY
	default:
		return AxisZ
	}
}

func assertAtHome(t *testing.T, c *Cube) {
	t.Helper()
	for _, cl := range c.Snapshot().Cubelets {
		if cl.Position != cl.Home.Position() {
			t.Errorf("cubelet %d at %v, want home %v", cl.ID, cl.Position, cl.Home.Position())
		}
		if cl.Orientation != Identity() {
			t.Errorf("cubelet %d orientation %v, want identity", cl.ID, cl.Orientation)
		}
	}
}

func positionsOf(cubelets []Cubelet) map[int]Vec3 {
	out := make(map[int]Vec3, len(cubelets))
	for _, cl := range cubelets {
		out[cl.ID] = cl.Position
	}
	return out
}

func TestNewCubeIsAtRest(t *testing.T) {
	c := newTestCube(t)
	if c.State() != StateIdle {
		t.Errorf("new cube state = %v, want idle", c.State())
	}
	if c.Busy() {
		t.Error("new cube should not be busy")
	}
	assertAtHome(t, c)
	assertPartition(t, c)
}

func TestNewCubeLayout(t *testing.T) {
	c := newTestCube(t)
	// Cubelets are created y-major, then x, then z.
	first, _ := c.Cubelet(0)
	if first.Home != (Coord{0, 0, 0}) {
		t.Errorf("cubelet 0 home = %v, want 0,0,0", first.Home)
	}
	second, _ := c.Cubelet(1)
	if second.Home != (Coord{0, 0, 1}) {
		t.Errorf("cubelet 1 home = %v, want 0,0,1", second.Home)
	}
	ninth, _ := c.Cubelet(9)
	if ninth.Home != (Coord{0, 1, 0}) {
		t.Errorf("cubelet 9 home = %v, want 0,1,0", ninth.Home)
	}
	if _, ok := c.Cubelet(CubeletCount); ok {
		t.Error("Cubelet(27) should not exist")
	}
}

func TestRotateFaceR_QuarterTurnAboutX(t *testing.T) {
	c := newTestCube(t)
	before, _ := c.Slice("x2")
	start := positionsOf(before)

	if err := c.RotateFace("R"); err != nil {
		t.Fatal(err)
	}

	tickN(c, c.UpdatesPerRotation()-1)
	if c.State() != StateStepping {
		t.Fatalf("after %d ticks state = %v, want stepping", c.UpdatesPerRotation()-1, c.State())
	}

	c.Tick()
	if c.State() != StateIdle {
		t.Fatalf("after %d ticks state = %v, want idle", c.UpdatesPerRotation(), c.State())
	}

	// R is x2 "down": (x, y, z) -> (x, z, -y)
	for id, p := range start {
		cl, _ := c.Cubelet(id)
		want := Vec3{X: p.X, Y: p.Z, Z: snap(-p.Y)}
		if cl.Position != want {
			t.Errorf("cubelet %d at %v, want %v", id, cl.Position, want)
		}
	}

	after, _ := c.Slice("x2")
	if len(after) != 9 {
		t.Errorf("x2 has %d cubelets after R, want 9", len(after))
	}
	for _, cl := range after {
		if _, ok := start[cl.ID]; !ok {
			t.Errorf("cubelet %d joined x2 during R", cl.ID)
		}
	}
	assertPartition(t, c)
}

func TestRotateFace_OnlySliceMoves(t *testing.T) {
	c := newTestCube(t)
	others, _ := c.NonRotating("y2")
	start := positionsOf(others)

	c.RotateFace("U")
	complete(t, c)

	for id, p := range start {
		cl, _ := c.Cubelet(id)
		if cl.Position != p {
			t.Errorf("non-rotating cubelet %d moved from %v to %v", id, p, cl.Position)
		}
	}
}

func TestRotationChangesMembershipOffAxis(t *testing.T) {
	c := newTestCube(t)
	// Corner 2,2,2 sits in x2, y2 and z2.
	corner := -1
	for _, cl := range c.Snapshot().Cubelets {
		if cl.Home == (Coord{2, 2, 2}) {
			corner = cl.ID
		}
	}

	c.RotateFace("R")
	complete(t, c)

	cl, _ := c.Cubelet(corner)
	if got := layerOf(cl.Position.X); got != 2 {
		t.Errorf("corner left x2: layer %d", got)
	}
	if layerOf(cl.Position.Y) == 2 && layerOf(cl.Position.Z) == 2 {
		t.Error("corner should change y or z layer after R")
	}
}

func TestPositionsAreFractionalMidTurn(t *testing.T) {
	c := newTestCube(t, WithEmphasis(false))
	c.RotateFace("F")
	tickN(c, c.UpdatesPerRotation()/2)

	snap := c.Snapshot()
	if snap.State != StateStepping {
		t.Fatalf("state = %v, want stepping", snap.State)
	}
	if math.Abs(math.Abs(snap.Angle)-math.Pi/4) > 1e-9 {
		t.Errorf("angle = %v, want ±π/4", snap.Angle)
	}

	fractional := false
	for _, cl := range snap.Cubelets {
		p := cl.Position
		if p != p.Round() {
			fractional = true
		}
	}
	if !fractional {
		t.Error("expected off-grid positions halfway through a turn")
	}
}

func TestR_Ri_RestoresSlice(t *testing.T) {
	c := newTestCube(t)
	before, _ := c.Slice("x2")
	start := positionsOf(before)

	c.RotateFace("R")
	complete(t, c)
	c.RotateFace("Ri")
	complete(t, c)

	for id, p := range start {
		cl, _ := c.Cubelet(id)
		if cl.Position != p {
			t.Errorf("cubelet %d at %v after R Ri, want %v", id, cl.Position, p)
		}
	}
	assertAtHome(t, c)
}

func TestFourQuarterTurns_ReturnHome_AllFaces(t *testing.T) {
	for _, face := range Faces {
		c := newTestCube(t)
		for i := 0; i < 4; i++ {
			if err := c.RotateFace(string(face)); err != nil {
				t.Fatal(err)
			}
		}
		complete(t, c)
		assertAtHome(t, c)
		assertPartition(t, c)

		c = newTestCube(t)
		for i := 0; i < 4; i++ {
			c.RotateFace(face.Token(true))
		}
		complete(t, c)
		assertAtHome(t, c)
	}
}

func TestSingleMoveLeavesHome(t *testing.T) {
	c := newTestCube(t)
	c.RotateFace("R")
	complete(t, c)

	moved := 0
	for _, cl := range c.Snapshot().Cubelets {
		if cl.Position != cl.Home.Position() {
			moved++
		}
	}
	// The x2 center turns in place; the other eight move.
	if moved != 8 {
		t.Errorf("%d cubelets moved after R, want 8", moved)
	}
}

func TestSexyMove_6Times_ReturnsHome(t *testing.T) {
	c := newTestCube(t, WithPause(0))
	for i := 0; i < 6; i++ {
		if err := c.RotateFaces("R", "U", "Ri", "Ui"); err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			complete(t, c)
			snap := c.Snapshot()
			home := true
			for _, cl := range snap.Cubelets {
				if cl.Position != cl.Home.Position() {
					home = false
				}
			}
			if home {
				t.Error("one R U Ri Ui should not return every cubelet home")
			}
		}
	}
	complete(t, c)
	assertAtHome(t, c)
}

func TestQueue_FIFO_NoOverlap(t *testing.T) {
	var (
		order  []Rotation
		active int
		maxAct int
		events []RotationEvent
	)
	c := newTestCube(t,
		OnRotationStart(func(r Rotation) {
			order = append(order, r)
			active++
			if active > maxAct {
				maxAct = active
			}
		}),
		OnRotationComplete(func(ev RotationEvent) {
			active--
			events = append(events, ev)
		}),
	)

	c.RotateFace("R")
	c.Tick() // R is now stepping
	c.RotateFace("U")
	c.RotateFace("F")
	c.RotateFace("Li")

	if n := len(c.Pending()); n != 3 {
		t.Fatalf("pending = %d, want 3", n)
	}

	complete(t, c)

	want := []string{"R", "U", "F", "Li"}
	if len(order) != len(want) {
		t.Fatalf("started %d rotations, want %d", len(order), len(want))
	}
	for i, r := range order {
		if r.Token() != want[i] {
			t.Errorf("rotation %d = %s, want %s", i, r.Token(), want[i])
		}
	}
	if maxAct != 1 {
		t.Errorf("max concurrent rotations = %d, want 1", maxAct)
	}
	for i, ev := range events {
		if ev.Seq != uint64(i+1) {
			t.Errorf("event %d seq = %d", i, ev.Seq)
		}
		if i > 0 && ev.StartTick <= events[i-1].CompleteTick {
			t.Errorf("rotation %d started at tick %d before previous completed at %d", i, ev.StartTick, events[i-1].CompleteTick)
		}
		if got := ev.CompleteTick - ev.StartTick + 1; got != uint64(c.UpdatesPerRotation()) {
			t.Errorf("rotation %d took %d steps", i, got)
		}
	}
	assertPartition(t, c)
}

func TestQueue_PauseBetweenMoves(t *testing.T) {
	c := newTestCube(t)
	pause := c.PauseTicks()
	if pause != 3 {
		t.Fatalf("default pause = %d ticks, want 3 (40ms at 60Hz)", pause)
	}

	c.RotateFace("R")
	c.RotateFace("U")
	tickN(c, c.UpdatesPerRotation())

	// Next tick dequeues U and starts its pause.
	c.Tick()
	if c.State() != StateStarting {
		t.Fatalf("state = %v, want starting", c.State())
	}
	if !c.Paused() {
		t.Fatal("expected settle pause after dequeue")
	}

	before := c.Snapshot()
	for i := 0; i < pause; i++ {
		c.Tick()
		snap := c.Snapshot()
		if snap.Step != 0 || snap.Angle != 0 {
			t.Fatalf("pause tick %d stepped the rotation", i)
		}
		for j, cl := range snap.Cubelets {
			if cl.Position != before.Cubelets[j].Position {
				t.Fatalf("cubelet %d moved during pause", cl.ID)
			}
		}
	}
	if c.Paused() {
		t.Fatal("pause should be over")
	}

	c.Tick()
	if snap := c.Snapshot(); snap.State != StateStepping || snap.Step != 1 {
		t.Errorf("after pause: state %v step %d, want stepping step 1", snap.State, snap.Step)
	}
}

func TestQueue_ZeroPause(t *testing.T) {
	c := newTestCube(t, WithPause(0))
	c.RotateFaces("R", "U")
	tickN(c, c.UpdatesPerRotation()+1)
	c.Tick()
	if snap := c.Snapshot(); snap.Step != 1 {
		t.Errorf("step = %d, want 1 with no pause", snap.Step)
	}
}

func TestRotateFace_Invalid(t *testing.T) {
	c := newTestCube(t)
	c.RotateFace("R")
	c.RotateFace("U")
	pending := len(c.Pending())

	for _, tok := range []string{"Q", "", "r", "x2", "RRR", "é"} {
		err := c.RotateFace(tok)
		if !errors.Is(err, ErrInvalidMove) {
			t.Errorf("RotateFace(%q) error = %v, want ErrInvalidMove", tok, err)
		}
	}
	if got := len(c.Pending()); got != pending {
		t.Errorf("pending changed from %d to %d", pending, got)
	}
}

func TestRotateFaces_AllOrNothing(t *testing.T) {
	c := newTestCube(t)
	err := c.RotateFaces("R", "U", "Q")
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("error = %v, want ErrInvalidMove", err)
	}
	if c.Busy() {
		t.Error("no rotation should be queued when one token is invalid")
	}
}

func TestSliceLookup(t *testing.T) {
	c := newTestCube(t)
	for _, name := range []string{"y5", "q1", "x3", "x", "x22", "", "X1"} {
		if _, err := c.Slice(name); !errors.Is(err, ErrSliceLookup) {
			t.Errorf("Slice(%q) error = %v, want ErrSliceLookup", name, err)
		}
		if _, err := c.NonRotating(name); !errors.Is(err, ErrSliceLookup) {
			t.Errorf("NonRotating(%q) error = %v, want ErrSliceLookup", name, err)
		}
	}
}

func TestNonRotating(t *testing.T) {
	c := newTestCube(t)
	others, err := c.NonRotating("z1")
	if err != nil {
		t.Fatal(err)
	}
	if len(others) != 18 {
		t.Fatalf("NonRotating(z1) = %d cubelets, want 18", len(others))
	}
	for _, cl := range others {
		if layerOf(cl.Position.Z) == 1 {
			t.Errorf("cubelet %d is in z1", cl.ID)
		}
	}
}

func TestWhitelist_CenterOnly(t *testing.T) {
	c := newTestCube(t, WithWhitelist("1,1,1"))

	check := func(when string) {
		t.Helper()
		normal := 0
		for _, cl := range c.Snapshot().Cubelets {
			if cl.Display == DisplayNormal {
				normal++
				if cl.Home != (Coord{1, 1, 1}) {
					t.Errorf("%s: cubelet %v should be blank", when, cl.Home)
				}
			}
		}
		if normal != 1 {
			t.Errorf("%s: %d non-blank cubelets, want 1", when, normal)
		}
	}

	check("after init")
	c.RotateFaces("R", "U", "Fi", "D", "Bi", "L")
	complete(t, c)
	check("after moves")
}

func TestWhitelist_Invalid(t *testing.T) {
	for _, coord := range []string{"3,0,0", "1,1", "a,b,c", "-1,0,0"} {
		if _, err := New(WithWhitelist(coord)); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("WithWhitelist(%q) error = %v, want ErrInvalidCoordinate", coord, err)
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cases := map[string]Option{
		"zero updates":   WithUpdatesPerRotation(0),
		"negative pause": WithPause(-1),
		"zero interval":  WithFrameInterval(0),
	}
	for name, opt := range cases {
		if _, err := New(opt); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: error = %v, want ErrInvalidConfig", name, err)
		}
	}
}

func TestUpdatesPerRotation(t *testing.T) {
	c := newTestCube(t, WithUpdatesPerRotation(1))
	c.RotateFace("D")
	c.Tick()
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle after a one-step rotation", c.State())
	}
	assertPartition(t, c)
}

func TestRotate_MiddleSlice(t *testing.T) {
	c := newTestCube(t)
	m := Rotation{Slice: Slice{Axis: AxisX, Index: 1}, Direction: DirectionUp}
	for i := 0; i < 4; i++ {
		if err := c.Rotate(m); err != nil {
			t.Fatal(err)
		}
	}
	complete(t, c)
	assertAtHome(t, c)

	if err := c.Rotate(Rotation{Slice: Slice{Axis: AxisY, Index: 3}}); !errors.Is(err, ErrSliceLookup) {
		t.Errorf("Rotate(y3) error = %v, want ErrSliceLookup", err)
	}
}

func TestClearPending(t *testing.T) {
	c := newTestCube(t)
	c.RotateFaces("R", "U", "F")
	if n := c.ClearPending(); n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}
	complete(t, c)

	// Only R ran.
	snap := c.Snapshot()
	if snap.Completed != 1 {
		t.Errorf("completed = %d, want 1", snap.Completed)
	}
}

func TestRunUntilIdle_Budget(t *testing.T) {
	c := newTestCube(t)
	c.RotateFace("R")
	if _, err := c.RunUntilIdle(5); !errors.Is(err, ErrTickBudget) {
		t.Errorf("error = %v, want ErrTickBudget", err)
	}
	n, err := c.RunUntilIdle(1000)
	if err != nil {
		t.Fatal(err)
	}
	if n != c.UpdatesPerRotation()-5 {
		t.Errorf("took %d more ticks, want %d", n, c.UpdatesPerRotation()-5)
	}
}

func TestConcurrentProducers(t *testing.T) {
	var completed int
	var mu sync.Mutex
	c := newTestCube(t, WithPause(0), OnRotationComplete(func(RotationEvent) {
		mu.Lock()
		completed++
		mu.Unlock()
	}))

	const producers, perProducer = 4, 8
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(face Face) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := c.RotateFace(string(face)); err != nil {
					t.Error(err)
				}
			}
		}(Faces[p])
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			complete(t, c)
			mu.Lock()
			defer mu.Unlock()
			if completed != producers*perProducer {
				t.Errorf("completed %d rotations, want %d", completed, producers*perProducer)
			}
			assertPartition(t, c)
			return
		default:
			c.Tick()
		}
	}
}
