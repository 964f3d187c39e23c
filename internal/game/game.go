package game

import "fmt"

// Game is the reference simulator for one match. It owns the hidden board
// and answers shots; it is not safe for concurrent use.
type Game struct {
	board     Board
	shipAt    [Size][Size]int // ship index + 1, 0 for water
	shot      [Size][Size]bool
	hitsLeft  []int
	sunk      int
	shotCount int
}

// NewGame starts a match on b.
func NewGame(b Board) *Game {
	g := &Game{board: b, hitsLeft: make([]int, len(b.Ships))}
	for i, s := range b.Ships {
		g.hitsLeft[i] = s.Size
		for _, p := range s.Cells() {
			g.shipAt[p.Row][p.Col] = i + 1
		}
	}
	return g
}

// Shoot fires at p and reports whether a ship occupies it. Repeated shots
// are counted but never sink anything twice.
func (g *Game) Shoot(p Point) (bool, error) {
	if !p.InBounds() {
		return false, fmt.Errorf("shot %v out of range", p)
	}
	g.shotCount++
	id := g.shipAt[p.Row][p.Col]
	if id == 0 {
		g.shot[p.Row][p.Col] = true
		return false, nil
	}
	if !g.shot[p.Row][p.Col] {
		g.shot[p.Row][p.Col] = true
		g.hitsLeft[id-1]--
		if g.hitsLeft[id-1] == 0 {
			g.sunk++
		}
	}
	return true, nil
}

func (g *Game) AllSunk() bool { return g.sunk == len(g.board.Ships) }

func (g *Game) NumberOfShipsSunk() int { return g.sunk }

// ShipSizes returns the fleet in placement order.
func (g *Game) ShipSizes() []int {
	out := make([]int, len(g.board.Ships))
	for i, s := range g.board.Ships {
		out[i] = s.Size
	}
	return out
}

func (g *Game) TotalShotsTaken() int { return g.shotCount }

// Board returns the hidden layout.
func (g *Game) Board() Board { return g.board }

// Occupied reports whether a ship covers p.
func (g *Game) Occupied(p Point) bool {
	return p.InBounds() && g.shipAt[p.Row][p.Col] != 0
}
