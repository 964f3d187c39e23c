package bot

import (
	"testing"

	"battleship-solver/internal/game"
)

var standardFleet = []int{5, 4, 3, 3, 2}

func pt(r, c int) game.Point { return game.Point{Row: r, Col: c} }

func TestCellLifecycle(t *testing.T) {
	var c Cell
	if !c.IsEmpty() || c.Probability() != 0 {
		t.Fatalf("new cell should be Empty with zero weight, got %v/%v", c.State(), c.Probability())
	}
	c.IncrementProbability()
	c.IncrementProbability()
	if c.Probability() != 2 {
		t.Errorf("Probability() = %v, want 2", c.Probability())
	}
	c.SetProbability(c.Probability() * 1.5)
	if c.Probability() != 3 {
		t.Errorf("Probability() = %v, want 3", c.Probability())
	}
	c.ResetProbability()
	if c.Probability() != 0 {
		t.Errorf("ResetProbability left %v", c.Probability())
	}

	c.SetState(Hit)
	if !c.IsHit() || c.IsEmpty() || c.IsSunk() {
		t.Errorf("state predicates wrong for Hit")
	}
	if c.blocksPlacement() {
		t.Errorf("Hit cells must allow placement")
	}
	c.SetState(Sunk)
	if !c.IsSunk() || !c.blocksPlacement() {
		t.Errorf("Sunk cells must block placement")
	}
	c.SetState(Miss)
	if !c.blocksPlacement() {
		t.Errorf("Miss cells must block placement")
	}

	for s, want := range map[CellState]string{Empty: "E", Hit: "H", Miss: "M", Sunk: "S"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}

func TestFieldCellReadsAreCopies(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()
	p := pt(4, 4)
	if !f.Cell(p).IsEmpty() || f.Cell(p).Probability() <= 0 {
		t.Fatalf("Cell(%v) = %v/%v, want Empty with weight", p, f.Cell(p).State(), f.Cell(p).Probability())
	}

	c := f.Cell(p)
	c.SetState(Hit)
	if f.Cell(p).IsHit() {
		t.Error("writing to a returned cell changed the field")
	}

	f.MarkSunk(p)
	if !f.Cell(p).IsSunk() || f.Cell(p).State() != Sunk {
		t.Errorf("Cell(%v).State() = %v, want Sunk", p, f.Cell(p).State())
	}
}

func TestNewFieldMaxHits(t *testing.T) {
	f := NewField(standardFleet)
	if f.MaxHits() != 17 {
		t.Errorf("MaxHits() = %d, want 17", f.MaxHits())
	}
	alive := f.AliveShips()
	alive[0] = 99
	if f.AliveShips()[0] != 5 {
		t.Errorf("AliveShips must return a copy")
	}
}

func TestUpdateProbabilityCenterBeatsCorners(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()

	center := []game.Point{pt(4, 4), pt(4, 5), pt(5, 4), pt(5, 5)}
	corners := []game.Point{pt(0, 0), pt(0, 9), pt(9, 0), pt(9, 9)}
	for _, c := range center {
		for _, k := range corners {
			if f.Cell(c).Probability() <= f.Cell(k).Probability() {
				t.Errorf("center %v (%v) should beat corner %v (%v)",
					c, f.Cell(c).Probability(), k, f.Cell(k).Probability())
			}
		}
	}
	// one horizontal and one vertical placement per ship
	if got := f.Cell(pt(0, 0)).Probability(); got != 10 {
		t.Errorf("corner weight = %v, want 10", got)
	}
	if got := f.Cell(pt(4, 4)).Probability(); got != 34 {
		t.Errorf("center weight = %v, want 34", got)
	}
}

func TestUpdateProbabilityIdempotent(t *testing.T) {
	f := NewField(standardFleet)
	f.MarkMiss(pt(3, 3))
	f.MarkMiss(pt(7, 1))
	f.HandleShotHit(pt(5, 5))

	f.UpdateProbability()
	first := f.cells
	f.UpdateProbability()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if first[r][c].probability != f.cells[r][c].probability {
				t.Fatalf("weight at (%d,%d) changed: %v -> %v", r, c, first[r][c].probability, f.cells[r][c].probability)
			}
		}
	}
}

func TestUpdateProbabilityBlockedCells(t *testing.T) {
	f := NewField([]int{2})
	// (0,0) can only be covered through (0,1) or (1,0)
	f.MarkMiss(pt(0, 1))
	f.MarkSunk(pt(1, 0))
	f.UpdateProbability()
	if got := f.Cell(pt(0, 0)).Probability(); got != 0 {
		t.Errorf("boxed-in corner weight = %v, want 0", got)
	}

	f = NewField([]int{2})
	f.HandleShotHit(pt(0, 1))
	f.UpdateProbability()
	if got := f.Cell(pt(0, 0)).Probability(); got != 2 {
		t.Errorf("placements through a Hit must count, weight = %v, want 2", got)
	}
}

func TestNextShotLastEqualMaximumWins(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()
	p, ok := f.NextShot()
	if !ok {
		t.Fatal("NextShot found nothing on a fresh board")
	}
	// the four center cells tie; (5,5) is the last of them in row-major order
	if p != pt(5, 5) {
		t.Errorf("NextShot() = %v, want (5,5)", p)
	}
}

func TestNextShotStrictMaximum(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()
	f.cell(pt(0, 0)).SetProbability(1000)
	if p, _ := f.NextShot(); p != pt(0, 0) {
		t.Errorf("NextShot() = %v, want (0,0)", p)
	}
}

func TestNextShotOnlyEmptyCells(t *testing.T) {
	f := NewField(standardFleet)
	rng := game.NewRand(7)
	for i := 0; i < 60; i++ {
		f.UpdateProbability()
		p, ok := f.NextShot()
		if !ok {
			t.Fatalf("shot %d: nothing found", i)
		}
		if !f.Cell(p).IsEmpty() {
			t.Fatalf("shot %d: NextShot returned %v in state %v", i, p, f.Cell(p).State())
		}
		if rng.Intn(10) == 0 {
			f.HandleShotHit(p)
			f.ResetHunt()
		} else {
			f.MarkMiss(p)
		}
	}
}

func TestNextShotLastCellFallback(t *testing.T) {
	f := NewField([]int{2})
	f.HandleShotHit(pt(3, 3))
	f.UpdateProbability()
	p, ok := f.NextShot()
	if !ok || p != pt(2, 3) {
		t.Errorf("NextShot() = %v,%v; want first empty neighbour (2,3)", p, ok)
	}

	f.MarkMiss(pt(2, 3))
	f.MarkMiss(pt(4, 3))
	if p, _ := f.NextShot(); p != pt(3, 4) {
		t.Errorf("NextShot() = %v, want (3,4)", p)
	}
}

func TestNextShotZeroWeightFallback(t *testing.T) {
	f := NewField([]int{3, 2})
	f.alive = []int{20} // fits nowhere: every weight stays 0
	f.MarkSunk(pt(9, 9))
	f.UpdateProbability()
	if p, ok := f.NextShot(); !ok || p != pt(8, 9) {
		t.Errorf("NextShot() = %v,%v; want (8,9)", p, ok)
	}
}

func TestDiagonalSkew(t *testing.T) {
	f := NewField([]int{2})
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			f.cells[r][c].SetProbability(2)
		}
	}
	boosted := f.DiagonalSkew()
	if len(boosted) != 32 {
		t.Fatalf("boosted %d cells, want 32", len(boosted))
	}
	if got := f.Cell(pt(1, 2)).Probability(); got != 3 {
		t.Errorf("lattice cell weight = %v, want 3", got)
	}
	if got := f.Cell(pt(0, 0)).Probability(); got != 2 {
		t.Errorf("off-lattice cell weight = %v, want 2", got)
	}

	// a blocked guard suppresses the boost at the transposed square
	f = NewField([]int{2})
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			f.cells[r][c].SetProbability(2)
		}
	}
	f.MarkMiss(pt(2, 1))
	boosted = f.DiagonalSkew()
	if len(boosted) != 31 {
		t.Fatalf("boosted %d cells, want 31", len(boosted))
	}
	if got := f.Cell(pt(1, 2)).Probability(); got != 2 {
		t.Errorf("guarded cell weight = %v, want 2", got)
	}
}

func TestHandleShotHitSeedsByProbability(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()
	f.HandleShotHit(pt(4, 0))

	if f.Direction() != Undetermined || f.hunt.state != huntFirstHit {
		t.Errorf("after first hit: direction %v state %v", f.Direction(), f.hunt.state)
	}
	want := []game.Point{pt(3, 0), pt(5, 0), pt(4, 1)} // weights 21, 22, 27
	got := f.SinkStack()
	if len(got) != len(want) {
		t.Fatalf("SinkStack() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SinkStack() = %v, want %v", got, want)
		}
	}

	p, ok := f.SinkMode()
	if !ok || p != pt(4, 1) {
		t.Fatalf("SinkMode() = %v,%v; want highest weight (4,1)", p, ok)
	}

	f.HandleShotHit(p)
	if f.Direction() != Horizontal {
		t.Errorf("Direction() = %v, want horizontal", f.Direction())
	}
	if hp := f.HitPoints(); len(hp) != 2 || hp[0] != pt(4, 0) {
		t.Errorf("HitPoints() = %v", hp)
	}
	if p, _ := f.SinkMode(); p != pt(4, 2) {
		t.Errorf("SinkMode() = %v, want (4,2) along the row", p)
	}
}

func TestHandleShotHitVertical(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()
	f.HandleShotHit(pt(5, 5))
	f.HandleShotHit(pt(6, 5))
	if f.Direction() != Vertical {
		t.Fatalf("Direction() = %v, want vertical", f.Direction())
	}
	stack := f.SinkStack()
	if top := stack[len(stack)-1]; top != pt(7, 5) {
		t.Errorf("top of stack = %v, want (7,5)", top)
	}
}

func TestSinkModeDiscardsStaleAndOffAxis(t *testing.T) {
	f := NewField(standardFleet)
	f.HandleShotHit(pt(4, 4))
	f.hunt.hits = append(f.hunt.hits, pt(4, 5))
	f.cell(pt(4, 5)).SetState(Hit)
	f.hunt.apply(eventRowHit)

	f.MarkMiss(pt(4, 6))
	f.hunt.stack = []game.Point{pt(4, 3), pt(3, 4), pt(4, 6)}
	p, ok := f.SinkMode()
	if !ok || p != pt(4, 3) {
		t.Fatalf("SinkMode() = %v,%v; want (4,3)", p, ok)
	}
	if len(f.SinkStack()) != 0 {
		t.Errorf("stale and off-axis entries should be consumed, left %v", f.SinkStack())
	}
}

func TestSinkModeRecoversStrayHit(t *testing.T) {
	f := NewField(standardFleet)
	f.cell(pt(6, 6)).SetState(Hit)
	f.UpdateProbability()
	p, ok := f.SinkMode()
	if !ok {
		t.Fatal("SinkMode should reseed from the stray hit")
	}
	if d := abs(p.Row-6) + abs(p.Col-6); d != 1 {
		t.Errorf("SinkMode() = %v, not a neighbour of (6,6)", p)
	}

	empty := NewField(standardFleet)
	if _, ok := empty.SinkMode(); ok {
		t.Error("SinkMode on a board without hits should find nothing")
	}
}

func TestSunkLengthAndSetCellStateSunk(t *testing.T) {
	f := NewField(standardFleet)
	f.UpdateProbability()
	for _, p := range []game.Point{pt(2, 4), pt(2, 3), pt(2, 5)} {
		f.HandleShotHit(p)
	}
	if n := f.SunkLength(); n != 3 {
		t.Fatalf("SunkLength() = %d, want 3", n)
	}
	f.SetCellStateSunk(3)
	for c := 3; c <= 5; c++ {
		if !f.Cell(pt(2, c)).IsSunk() {
			t.Errorf("(2,%d) should be Sunk", c)
		}
	}
	if f.Cell(pt(2, 6)).IsSunk() || f.Cell(pt(2, 2)).IsSunk() {
		t.Error("cells outside the run must not be Sunk")
	}

	v := NewField(standardFleet)
	v.UpdateProbability()
	for _, p := range []game.Point{pt(7, 0), pt(8, 0), pt(6, 0)} {
		v.HandleShotHit(p)
	}
	if n := v.SunkLength(); n != 3 {
		t.Errorf("vertical SunkLength() = %d, want 3", n)
	}
}

func TestRemoveShip(t *testing.T) {
	f := NewField(standardFleet)
	if f.RemoveShip(1) {
		t.Error("length 1 must never match")
	}
	if f.RemoveShip(6) {
		t.Error("length 6 is not in the fleet")
	}
	if !f.RemoveShip(3) {
		t.Fatal("length 3 should match")
	}
	got := f.AliveShips()
	want := []int{5, 4, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AliveShips() = %v, want %v", got, want)
		}
	}
}

func TestCollapseFleet(t *testing.T) {
	f := NewField(standardFleet)
	for c := 0; c < 5; c++ {
		f.MarkSunk(pt(0, c))
	}
	f.cell(pt(5, 5)).SetState(Hit)
	f.collapseFleet(endgameHitCap)
	if got := f.AliveShips(); len(got) != 1 || got[0] != 11 {
		t.Errorf("AliveShips() = %v, want [11]", got)
	}

	f.collapseFleet(3)
	if got := f.AliveShips(); got[0] != 14 {
		t.Errorf("capped AliveShips() = %v, want [14]", got)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
