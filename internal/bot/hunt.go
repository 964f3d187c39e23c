package bot

import "battleship-solver/internal/game"

// Direction is the axis of the ship under pursuit.
type Direction uint8

const (
	Undetermined Direction = iota
	Horizontal
	Vertical
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "undetermined"
	}
}

type huntState uint8

const (
	huntIdle huntState = iota
	huntFirstHit
	huntHorizontal
	huntVertical
)

func (s huntState) String() string {
	switch s {
	case huntIdle:
		return "idle"
	case huntFirstHit:
		return "first-hit"
	case huntHorizontal:
		return "tracking-horizontal"
	case huntVertical:
		return "tracking-vertical"
	default:
		return "unknown"
	}
}

type huntEvent uint8

const (
	eventNewHunt huntEvent = iota
	eventRowHit
	eventColumnHit
	eventSunk
)

// nextState is the hunt transition table.
func nextState(s huntState, ev huntEvent) huntState {
	switch ev {
	case eventNewHunt:
		return huntFirstHit
	case eventRowHit:
		return huntHorizontal
	case eventColumnHit:
		return huntVertical
	case eventSunk:
		return huntIdle
	}
	return s
}

func (s huntState) direction() Direction {
	switch s {
	case huntHorizontal:
		return Horizontal
	case huntVertical:
		return Vertical
	default:
		return Undetermined
	}
}

// hunt holds the sink-mode bookkeeping: the hits of the ship being chased
// and a LIFO of cells to try next.
type hunt struct {
	state huntState
	hits  []game.Point
	stack []game.Point
}

func (h *hunt) apply(ev huntEvent) { h.state = nextState(h.state, ev) }

func (h *hunt) active() bool { return len(h.hits) > 0 }

func (h *hunt) first() game.Point { return h.hits[0] }

func (h *hunt) push(p game.Point) { h.stack = append(h.stack, p) }

func (h *hunt) pop() (game.Point, bool) {
	if len(h.stack) == 0 {
		return game.Point{}, false
	}
	p := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return p, true
}

func (h *hunt) reset() {
	h.hits = h.hits[:0]
	h.stack = h.stack[:0]
	h.apply(eventSunk)
}

// lastTwo returns the most recent hit and the one before it. With a single
// hit both are the same point.
func (h *hunt) lastTwo() (last, prev game.Point) {
	n := len(h.hits)
	last = h.hits[n-1]
	prev = h.hits[max(n-2, 0)]
	return last, prev
}
