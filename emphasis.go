package rubikal

// displayChange is a display update waiting to be sent to the renderer.
type displayChange struct {
	id    int
	state DisplayState
}

// emphasis blanks the cubelets that are not turning so the moving slice
// stands out. It keeps no state beyond the per-cubelet saved display.
// Changes are returned rather than pushed so the caller can notify the
// renderer once the cube is unlocked.
type emphasis struct {
	enabled bool
}

// dim saves each cubelet's display state and blanks it.
func (e emphasis) dim(g *grid, ids []int) []displayChange {
	if !e.enabled {
		return nil
	}
	changes := make([]displayChange, 0, len(ids))
	for _, id := range ids {
		c := &g.cubelets[id]
		c.saved = c.Display
		c.Display = DisplayBlank
		changes = append(changes, displayChange{id: id, state: DisplayBlank})
	}
	return changes
}

// restore puts back exactly what dim saved.
func (e emphasis) restore(g *grid, ids []int) []displayChange {
	if !e.enabled {
		return nil
	}
	changes := make([]displayChange, 0, len(ids))
	for _, id := range ids {
		c := &g.cubelets[id]
		c.Display = c.saved
		changes = append(changes, displayChange{id: id, state: c.Display})
	}
	return changes
}
