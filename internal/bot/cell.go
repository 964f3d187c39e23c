package bot

// CellState is what the bot knows about one square.
type CellState uint8

const (
	Empty CellState = iota
	Hit
	Miss
	Sunk
)

func (s CellState) String() string {
	switch s {
	case Empty:
		return "E"
	case Hit:
		return "H"
	case Miss:
		return "M"
	case Sunk:
		return "S"
	default:
		return ""
	}
}

// Cell is a square of the bot's view. Probability is the placement count
// from the last recompute and only drives targeting while the cell is Empty.
type Cell struct {
	state       CellState
	probability float64
}

func (c Cell) IsEmpty() bool { return c.state == Empty }
func (c Cell) IsHit() bool   { return c.state == Hit }
func (c Cell) IsSunk() bool  { return c.state == Sunk }

func (c Cell) State() CellState          { return c.state }
func (c *Cell) SetState(state CellState) { c.state = state }

func (c Cell) Probability() float64      { return c.probability }
func (c *Cell) SetProbability(p float64) { c.probability = p }
func (c *Cell) IncrementProbability()    { c.probability++ }
func (c *Cell) ResetProbability()        { c.probability = 0 }

// blocksPlacement reports whether no ship can lie across the cell.
func (c Cell) blocksPlacement() bool {
	return c.state != Empty && c.state != Hit
}
