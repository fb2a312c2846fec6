package rubikal

// rotationQueue holds pending rotations in FIFO order. It is unbounded and
// never rejects. Callers serialize access through the owning Cube's lock.
type rotationQueue struct {
	pending []Rotation
}

func (q *rotationQueue) push(r ...Rotation) {
	q.pending = append(q.pending, r...)
}

// pop removes and returns the front rotation.
func (q *rotationQueue) pop() (Rotation, bool) {
	if len(q.pending) == 0 {
		return Rotation{}, false
	}
	r := q.pending[0]
	q.pending[0] = Rotation{}
	q.pending = q.pending[1:]
	if len(q.pending) == 0 {
		q.pending = nil
	}
	return r, true
}

func (q *rotationQueue) len() int {
	return len(q.pending)
}

// clear discards every pending rotation and reports how many were dropped.
func (q *rotationQueue) clear() int {
	n := len(q.pending)
	q.pending = nil
	return n
}

func (q *rotationQueue) snapshot() []Rotation {
	out := make([]Rotation, len(q.pending))
	copy(out, q.pending)
	return out
}
