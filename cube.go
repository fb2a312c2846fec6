package rubikal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Renderer is the display side of a cube. CreateCubelet is called once per
// cubelet from New; SetDisplayState whenever emphasis changes a cubelet.
// SetDisplayState is called from Tick after the cube is unlocked, so it may
// read the cube back.
// Positions are not pushed: renderers read them from Snapshot each frame.
type Renderer interface {
	CreateCubelet(id int, position Vec3, state DisplayState)
	SetDisplayState(id int, state DisplayState)
}

type nopRenderer struct{}

func (nopRenderer) CreateCubelet(int, Vec3, DisplayState) {}
func (nopRenderer) SetDisplayState(int, DisplayState)     {}

// Cube is an animated 3x3x3 puzzle. Moves are queued with RotateFace and
// played out one step per Tick by the rotation engine.
//
// A driver calls Tick once per frame:
//
//	cube, err := rubikal.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cube.RotateFace("R")
//	for cube.Busy() {
//	    cube.Tick()
//	}
//
// All methods are safe for concurrent use; producers on other goroutines
// may call RotateFace while the driver ticks.
type Cube struct {
	mu     sync.Mutex
	grid   *grid
	index  sliceIndex
	queue  rotationQueue
	engine rotationEngine
	ticks  uint64

	config     *config
	logger     *slog.Logger
	pauseTicks int
}

// Snapshot is a copy of the cube's state for rendering and inspection.
type Snapshot struct {
	Tick      uint64
	State     EngineState
	Active    *Rotation  // Nil when idle
	Step      int        // Steps taken by the active rotation
	Angle     float64    // Current pivot angle in radians
	Distance  float64    // Radians swept so far by the active rotation, always >= 0
	Paused    bool       // Active rotation is waiting out the settle pause
	Pending   []Rotation // Queued rotations, front first
	Completed uint64
	Cubelets  []Cubelet
}

// New creates a cube at rest with every cubelet on its home coordinate.
func New(opts ...Option) (*Cube, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	whitelist, err := cfg.whitelistSet()
	if err != nil {
		return nil, err
	}

	c := &Cube{
		grid:       newGrid(whitelist),
		config:     cfg,
		logger:     cfg.logger,
		pauseTicks: cfg.pauseTicks(),
	}
	c.engine = newRotationEngine(cfg.updatesPerRotation, emphasis{enabled: cfg.emphasize})

	for _, cl := range c.grid.cubelets {
		cfg.renderer.CreateCubelet(cl.ID, cl.Position, cl.Display)
	}

	c.grid.correctPositions()
	c.index.reindex(c.grid)
	if err := c.index.validate(); err != nil {
		panic(err)
	}

	return c, nil
}

// RotateFace validates a face token and queues its rotation.
// Invalid tokens return an error wrapping ErrInvalidMove and queue nothing.
func (c *Cube) RotateFace(token string) error {
	r, err := ParseMove(token)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(r)
	return nil
}

// RotateFaces queues several tokens in order. If any token is invalid,
// nothing is queued.
func (c *Cube) RotateFaces(tokens ...string) error {
	rotations := make([]Rotation, 0, len(tokens))
	for _, tok := range tokens {
		r, err := ParseMove(tok)
		if err != nil {
			return err
		}
		rotations = append(rotations, r)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(rotations...)
	return nil
}

// Rotate queues an arbitrary slice rotation, including middle slices.
func (c *Cube) Rotate(r Rotation) error {
	if !r.Slice.valid() {
		return fmt.Errorf("%w: %s", ErrSliceLookup, r.Slice)
	}
	if r.Direction != DirectionUp && r.Direction != DirectionDown {
		return fmt.Errorf("%w: direction %d", ErrInvalidMove, int(r.Direction))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(r)
	return nil
}

// enqueue activates the first rotation immediately when idle and queues
// the rest. Must hold c.mu.
func (c *Cube) enqueue(rotations ...Rotation) {
	for _, r := range rotations {
		c.logger.Debug("rotate", "slice", r.Slice.String(), "direction", r.Direction.String())
		if !c.engine.busy() {
			c.engine.activate(r, 0)
			continue
		}
		c.queue.push(r)
	}
}

// Tick advances the animation by one frame. With a rotation active it
// takes one step, unless the settle pause is still running. When idle it
// dequeues the next rotation and starts its pause. Tick never blocks.
//
// A broken slice partition after a rotation is unrecoverable and panics
// with an error wrapping ErrInvariantViolation.
func (c *Cube) Tick() {
	c.mu.Lock()
	c.ticks++
	tick := c.ticks

	var started *Rotation
	var done *RotationEvent

	if c.engine.busy() {
		active := c.engine.active
		ok, ev, err := c.engine.advance(c.grid, &c.index, tick)
		if err != nil {
			c.mu.Unlock()
			c.logger.Error("slice index corrupted", "error", err)
			panic(err)
		}
		if ok {
			started = &active
		}
		done = ev
	} else if r, ok := c.queue.pop(); ok {
		c.engine.activate(r, c.pauseTicks)
	}

	changes := c.engine.takeChanges()
	renderer := c.config.renderer
	onStart, onComplete := c.config.onStart, c.config.onComplete
	c.mu.Unlock()

	// Fire callbacks outside the lock
	for _, ch := range changes {
		renderer.SetDisplayState(ch.id, ch.state)
	}
	if started != nil && onStart != nil {
		onStart(*started)
	}
	if done != nil {
		c.logger.Debug("rotation complete",
			"slice", done.Rotation.Slice.String(),
			"direction", done.Rotation.Direction.String(),
			"seq", done.Seq)
		if onComplete != nil {
			onComplete(*done)
		}
	}
}

// RunUntilIdle ticks until no rotation is active or pending. It returns the
// number of ticks taken, or ErrTickBudget if maxTicks ran out first.
func (c *Cube) RunUntilIdle(maxTicks int) (int, error) {
	for n := 0; n < maxTicks; n++ {
		if !c.Busy() {
			return n, nil
		}
		c.Tick()
	}
	if c.Busy() {
		return maxTicks, fmt.Errorf("%w: %d ticks", ErrTickBudget, maxTicks)
	}
	return maxTicks, nil
}

// Busy returns true while a rotation is active or pending.
func (c *Cube) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.busy() || c.queue.len() > 0
}

// State returns the rotation engine's state.
func (c *Cube) State() EngineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.state
}

// Paused returns true while an active rotation waits out the settle pause.
func (c *Cube) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.busy() && c.engine.pause > 0
}

// Pending returns the queued rotations, front first. The active rotation
// is not included.
func (c *Cube) Pending() []Rotation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.snapshot()
}

// ClearPending drops queued rotations that have not started. The active
// rotation, if any, always runs to completion.
func (c *Cube) ClearPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.queue.clear()
	if n > 0 {
		c.logger.Debug("cleared pending rotations", "count", n)
	}
	return n
}

// Slice returns the cubelets of a slice such as "x2", in cubelet order.
// During a rotation it reports membership as of the last completed move.
func (c *Cube) Slice(name string) ([]Cubelet, error) {
	s, err := ParseSlice(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cubeletsByID(c.index.slice(s)), nil
}

// NonRotating returns the 18 cubelets on the other two layers of the
// named slice's axis.
func (c *Cube) NonRotating(name string) ([]Cubelet, error) {
	s, err := ParseSlice(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cubeletsByID(c.index.nonRotating(s)), nil
}

func (c *Cube) cubeletsByID(ids []int) []Cubelet {
	out := make([]Cubelet, len(ids))
	for i, id := range ids {
		out[i] = c.grid.cubelets[id]
	}
	return out
}

// Cubelet returns a copy of the cubelet with the given ID.
func (c *Cube) Cubelet(id int) (Cubelet, bool) {
	if id < 0 || id >= CubeletCount {
		return Cubelet{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.cubelets[id], true
}

// DisplayState returns a cubelet's current display state.
func (c *Cube) DisplayState(id int) DisplayState {
	cl, ok := c.Cubelet(id)
	if !ok {
		return DisplayBlank
	}
	return cl.Display
}

// Snapshot returns a copy of the cube's current state.
func (c *Cube) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Tick:      c.ticks,
		State:     c.engine.state,
		Step:      c.engine.steps,
		Angle:     c.engine.frame.angle,
		Distance:  c.engine.distance,
		Paused:    c.engine.busy() && c.engine.pause > 0,
		Pending:   c.queue.snapshot(),
		Completed: c.engine.completed,
		Cubelets:  c.cubeletsByID(allIDs[:]),
	}
	if c.engine.busy() {
		active := c.engine.active
		snap.Active = &active
	}
	return snap
}

var allIDs = func() (ids [CubeletCount]int) {
	for i := range ids {
		ids[i] = i
	}
	return ids
}()

// Ticks returns the number of Tick calls so far.
func (c *Cube) Ticks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// UpdatesPerRotation returns the number of steps in a quarter turn.
func (c *Cube) UpdatesPerRotation() int {
	return c.config.updatesPerRotation
}

// PauseTicks returns the settle pause in ticks.
func (c *Cube) PauseTicks() int {
	return c.pauseTicks
}

// FrameInterval returns the configured time between ticks.
func (c *Cube) FrameInterval() time.Duration {
	return c.config.frameInterval
}
