package bot

import (
	"sort"

	"battleship-solver/internal/game"
)

const size = game.Size

// skewFactor boosts parity cells while hunting the last two-cell ship.
const skewFactor = 1.5

// neighbour offsets in the order candidates are generated.
var neighbourDeltas = [...]game.Point{
	{Row: -1, Col: 0}, // up
	{Row: 1, Col: 0},  // down
	{Row: 0, Col: 1},  // right
	{Row: 0, Col: -1}, // left
}

// Field is the bot's picture of the opponent board: what every square is
// known to be, a placement heat map, the ships still afloat and the
// sink-mode state.
type Field struct {
	cells   [size][size]Cell
	alive   []int
	maxHits int
	hunt    hunt
}

// NewField builds an empty view for a fleet of the given lengths.
func NewField(shipSizes []int) *Field {
	f := &Field{alive: append([]int(nil), shipSizes...)}
	for _, s := range shipSizes {
		f.maxHits += s
	}
	return f
}

func (f *Field) cell(p game.Point) *Cell { return &f.cells[p.Row][p.Col] }

// Cell returns a copy of the square at p.
func (f *Field) Cell(p game.Point) Cell { return f.cells[p.Row][p.Col] }

// MaxHits is the number of ship cells at game start.
func (f *Field) MaxHits() int { return f.maxHits }

// AliveShips returns the lengths still believed afloat.
func (f *Field) AliveShips() []int { return append([]int(nil), f.alive...) }

// HitPoints returns the hits of the ship being chased, oldest first.
func (f *Field) HitPoints() []game.Point { return append([]game.Point(nil), f.hunt.hits...) }

// SinkStack returns the pending candidates, bottom first.
func (f *Field) SinkStack() []game.Point { return append([]game.Point(nil), f.hunt.stack...) }

// Direction is the axis established for the current hunt.
func (f *Field) Direction() Direction { return f.hunt.state.direction() }

// Hunting reports whether a hit ship is being chased.
func (f *Field) Hunting() bool { return f.hunt.active() }

// CountState counts squares in the given state.
func (f *Field) CountState(state CellState) int {
	n := 0
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if f.cells[r][c].state == state {
				n++
			}
		}
	}
	return n
}

func (f *Field) hitOrSunk() int { return f.CountState(Hit) + f.CountState(Sunk) }

// MarkMiss records water at p.
func (f *Field) MarkMiss(p game.Point) { f.cell(p).SetState(Miss) }

// MarkSunk records p as part of a sunk ship.
func (f *Field) MarkSunk(p game.Point) { f.cell(p).SetState(Sunk) }

// emptyNeighbours lists the in-bounds Empty neighbours of p.
func (f *Field) emptyNeighbours(p game.Point) []game.Point {
	out := make([]game.Point, 0, len(neighbourDeltas))
	for _, d := range neighbourDeltas {
		n := game.Point{Row: p.Row + d.Row, Col: p.Col + d.Col}
		if n.InBounds() && f.cell(n).IsEmpty() {
			out = append(out, n)
		}
	}
	return out
}

// UpdateProbability rebuilds the heat map. Every in-bounds horizontal and
// vertical placement of every alive ship that avoids Miss and Sunk squares
// adds one to each square it covers.
func (f *Field) UpdateProbability() {
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			f.cells[r][c].ResetProbability()
		}
	}

	for _, length := range f.alive {
		if length <= 0 {
			continue
		}
		for line := 0; line < size; line++ {
			for start := 0; start+length <= size; start++ {
				if f.fits(line, start, length, false) {
					for i := 0; i < length; i++ {
						f.cells[line][start+i].IncrementProbability()
					}
				}
				if f.fits(start, line, length, true) {
					for i := 0; i < length; i++ {
						f.cells[start+i][line].IncrementProbability()
					}
				}
			}
		}
	}
}

func (f *Field) fits(row, col, length int, vertical bool) bool {
	for i := 0; i < length; i++ {
		r, c := row, col+i
		if vertical {
			r, c = row+i, col
		}
		if f.cells[r][c].blocksPlacement() {
			return false
		}
	}
	return true
}

// NextShot picks the Empty square with the highest weight. Among equal
// weights the last one in row-major order wins. When a single ship cell is
// left, or the map is flat zero, it falls back to the first Empty neighbour
// of any Hit or Sunk square.
func (f *Field) NextShot() (game.Point, bool) {
	var (
		best    game.Point
		found   bool
		maxProb = -1.0
	)
	hits := f.hitOrSunk()

	if hits < f.maxHits-1 {
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				cell := &f.cells[r][c]
				if !cell.IsEmpty() {
					continue
				}
				if cell.probability >= maxProb {
					best, found = game.Point{Row: r, Col: c}, true
					maxProb = cell.probability
				}
			}
		}
	}

	if hits == f.maxHits-1 || maxProb == 0 {
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				cell := &f.cells[r][c]
				if !cell.IsHit() && !cell.IsSunk() {
					continue
				}
				if n := f.emptyNeighbours(game.Point{Row: r, Col: c}); len(n) > 0 {
					return n[0], true
				}
			}
		}
	}

	return best, found
}

// DiagonalSkew multiplies the weight of the two interleaved parity lattices
// by skewFactor and returns the boosted squares. A square qualifies when the
// guard square at its transposed coordinate and that guard's four
// neighbours are all Empty.
func (f *Field) DiagonalSkew() []game.Point {
	var boosted []game.Point
	lattices := [2][2]int{{2, 1}, {1, 2}}
	for _, l := range lattices {
		for a := l[0]; a < size-1; a += 2 {
			for b := l[1]; b < size-1; b += 2 {
				if !f.clearAround(game.Point{Row: a, Col: b}) {
					continue
				}
				p := game.Point{Row: b, Col: a}
				boosted = append(boosted, p)
				c := f.cell(p)
				c.SetProbability(c.Probability() * skewFactor)
			}
		}
	}
	return boosted
}

func (f *Field) clearAround(p game.Point) bool {
	if !f.cell(p).IsEmpty() {
		return false
	}
	for _, d := range neighbourDeltas {
		if !f.cells[p.Row+d.Row][p.Col+d.Col].IsEmpty() {
			return false
		}
	}
	return true
}

// HandleShotHit records a hit at shot and queues follow-up candidates.
func (f *Field) HandleShotHit(shot game.Point) {
	f.cell(shot).SetState(Hit)

	if !f.hunt.active() {
		f.hunt.apply(eventNewHunt)
	}

	if len(f.hunt.stack) == 0 {
		f.hunt.hits = append(f.hunt.hits, shot)
		f.seedStack(shot)
		return
	}

	around := f.emptyNeighbours(shot)
	f.hunt.hits = append(f.hunt.hits, shot)
	first := f.hunt.first()
	switch {
	case shot.Row == first.Row:
		f.hunt.apply(eventRowHit)
		for _, p := range around {
			if p.Row == shot.Row {
				f.hunt.push(p)
			}
		}
	case shot.Col == first.Col:
		f.hunt.apply(eventColumnHit)
		for _, p := range around {
			if p.Col == shot.Col {
				f.hunt.push(p)
			}
		}
	}
}

// seedStack replaces the candidates with the Empty neighbours of p, so the
// highest-weight neighbour is popped first.
func (f *Field) seedStack(p game.Point) {
	around := f.emptyNeighbours(p)
	sort.SliceStable(around, func(i, j int) bool {
		return f.cell(around[i]).probability < f.cell(around[j]).probability
	})
	f.hunt.stack = f.hunt.stack[:0]
	for _, n := range around {
		f.hunt.push(n)
	}
}

// SinkMode returns the next candidate for finishing a hit ship. Stale
// candidates are dropped; off-axis ones are skipped once the direction is
// known. When the queue runs dry any untracked Hit square reseeds it.
func (f *Field) SinkMode() (game.Point, bool) {
	for {
		if len(f.hunt.stack) == 0 {
			return f.recoverStrayHit()
		}
		p, _ := f.hunt.pop()
		if !f.cell(p).IsEmpty() {
			continue
		}
		if !f.hunt.active() || f.onAxis(p) {
			return p, true
		}
	}
}

func (f *Field) onAxis(p game.Point) bool {
	first := f.hunt.first()
	dir := f.hunt.state.direction()
	if p.Row == first.Row {
		return dir != Vertical || p.Col == first.Col
	}
	return dir != Horizontal && p.Col == first.Col
}

func (f *Field) recoverStrayHit() (game.Point, bool) {
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if !f.cells[r][c].IsHit() {
				continue
			}
			f.seedStack(game.Point{Row: r, Col: c})
			if p, ok := f.hunt.pop(); ok {
				return p, true
			}
		}
	}
	return game.Point{}, false
}

// runStart finds where the tracked run begins along its axis, plus the axis:
// true for a run along a row.
func (f *Field) runStart() (game.Point, bool) {
	last, prev := f.hunt.lastTwo()
	start := last
	alongRow := last.Row == prev.Row
	for _, p := range f.hunt.hits {
		if alongRow && p.Row == last.Row && p.Col < start.Col {
			start.Col = p.Col
		}
		if !alongRow && p.Col == last.Col && p.Row < start.Row {
			start.Row = p.Row
		}
	}
	return start, alongRow
}

// SunkLength counts the contiguous Hit squares of the tracked run.
func (f *Field) SunkLength() int {
	if !f.hunt.active() {
		return 0
	}
	start, alongRow := f.runStart()
	n := 0
	for p := start; p.InBounds() && f.cell(p).IsHit(); n++ {
		if alongRow {
			p.Col++
		} else {
			p.Row++
		}
	}
	return n
}

// SetCellStateSunk marks length squares of the tracked run Sunk.
func (f *Field) SetCellStateSunk(length int) {
	if !f.hunt.active() {
		return
	}
	p, alongRow := f.runStart()
	for i := 0; i < length && p.InBounds(); i++ {
		f.cell(p).SetState(Sunk)
		if alongRow {
			p.Col++
		} else {
			p.Row++
		}
	}
}

// RemoveShip drops one alive ship of the given length. Single-cell runs
// never match.
func (f *Field) RemoveShip(length int) bool {
	if length <= 1 {
		return false
	}
	for i, l := range f.alive {
		if l == length {
			f.alive = append(f.alive[:i], f.alive[i+1:]...)
			return true
		}
	}
	return false
}

// ResetHunt forgets the tracked ship and its candidates.
func (f *Field) ResetHunt() { f.hunt.reset() }

// collapseFleet replaces the alive list by a single ship covering every
// ship square not yet hit, never counting more than limit hits.
func (f *Field) collapseFleet(limit int) {
	f.alive = append(f.alive[:0], f.maxHits-min(limit, f.hitOrSunk()))
}
