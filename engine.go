package rubikal

import (
	"fmt"
	"math"
)

// EngineState is the rotation engine's state.
type EngineState int

const (
	StateIdle       EngineState = iota // No active rotation
	StateStarting                      // Rotation accepted, slice not yet grouped
	StateStepping                      // Slice grouped and turning one step per tick
	StateCompleting                    // Final snap and reindex in progress
)

// String returns the string representation of the engine state.
func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateStepping:
		return "stepping"
	case StateCompleting:
		return "completing"
	default:
		return "unknown"
	}
}

// RotationEvent describes a finished rotation.
type RotationEvent struct {
	Rotation     Rotation
	Seq          uint64 // 1 for the first rotation completed by this cube
	StartTick    uint64 // Tick that took the first step
	CompleteTick uint64 // Tick that took the last step
}

// rotationFrame is the transient pivot for one rotation. Members keep their
// start positions relative to the pivot (the origin), and their effective
// positions are recomputed from those at the current angle. The frame is
// reset at completion and never outlives the rotation.
type rotationFrame struct {
	members     []int
	rel         []Vec3
	nonRotating []int
	angle       float64
}

func (f *rotationFrame) reset() {
	f.members = f.members[:0]
	f.rel = f.rel[:0]
	f.nonRotating = nil
	f.angle = 0
}

// rotationEngine drives at most one rotation at a time.
type rotationEngine struct {
	state     EngineState
	active    Rotation
	frame     rotationFrame
	steps     int
	distance  float64
	pause     int
	changes   []displayChange
	startTick uint64
	completed uint64

	updatesPerRotation int
	increment          float64
	emphasis           emphasis
}

func newRotationEngine(updatesPerRotation int, em emphasis) rotationEngine {
	return rotationEngine{
		state:              StateIdle,
		updatesPerRotation: updatesPerRotation,
		increment:          math.Pi / 2 / float64(updatesPerRotation),
		emphasis:           em,
	}
}

// activate makes r the active rotation. pause ticks pass before it steps.
func (e *rotationEngine) activate(r Rotation, pause int) {
	e.active = r
	e.state = StateStarting
	e.pause = pause
}

func (e *rotationEngine) busy() bool {
	return e.state != StateIdle
}

// advance runs one tick of the active rotation. It reports whether the
// rotation took its first step on this tick and, on the final step, the
// completion event.
func (e *rotationEngine) advance(g *grid, ix *sliceIndex, tick uint64) (started bool, done *RotationEvent, err error) {
	if e.state == StateIdle {
		return false, nil, nil
	}

	if e.pause > 0 {
		e.pause--
		return false, nil, nil
	}

	if e.state == StateStarting {
		e.begin(g, ix, tick)
		started = true
	}

	e.step(g)

	if e.steps < e.updatesPerRotation {
		return started, nil, nil
	}

	ev, err := e.complete(g, ix, tick)
	return started, ev, err
}

// takeChanges returns and clears the display changes made since the last call.
func (e *rotationEngine) takeChanges() []displayChange {
	changes := e.changes
	e.changes = nil
	return changes
}

// begin groups the active slice under the pivot and applies emphasis.
func (e *rotationEngine) begin(g *grid, ix *sliceIndex, tick uint64) {
	s := e.active.Slice
	e.frame.reset()
	e.frame.nonRotating = ix.nonRotating(s)
	e.changes = append(e.changes, e.emphasis.dim(g, e.frame.nonRotating)...)

	for _, id := range ix.slice(s) {
		e.frame.members = append(e.frame.members, id)
		e.frame.rel = append(e.frame.rel, g.cubelets[id].Position)
	}

	e.startTick = tick
	e.state = StateStepping
}

// step turns the pivot by one increment and updates effective positions.
func (e *rotationEngine) step(g *grid) {
	e.frame.angle += float64(e.active.Direction.sign()) * e.increment
	e.distance += e.increment
	e.steps++

	axis := e.active.Slice.Axis
	for i, id := range e.frame.members {
		g.cubelets[id].Position = rotate(e.frame.rel[i], axis, e.frame.angle)
	}
}

// complete ungroups the slice, snaps the grid and rebuilds membership.
func (e *rotationEngine) complete(g *grid, ix *sliceIndex, tick uint64) (*RotationEvent, error) {
	e.state = StateCompleting
	e.changes = append(e.changes, e.emphasis.restore(g, e.frame.nonRotating)...)

	turn := quarterTurn(e.active.Slice.Axis, e.active.Direction)
	for _, id := range e.frame.members {
		c := &g.cubelets[id]
		c.Orientation = turn.Mul(c.Orientation)
	}

	g.correctPositions()
	ix.reindex(g)

	e.completed++
	ev := &RotationEvent{
		Rotation:     e.active,
		Seq:          e.completed,
		StartTick:    e.startTick,
		CompleteTick: tick,
	}

	e.frame.reset()
	e.active = Rotation{}
	e.steps = 0
	e.distance = 0
	e.state = StateIdle

	if err := ix.validate(); err != nil {
		return ev, fmt.Errorf("after %s: %w", ev.Rotation, err)
	}
	return ev, nil
}
