package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// Size is the edge length of the square board.
const Size = 10

// DefaultShipSizes is the standard fleet. Total 17.
var DefaultShipSizes = []int{5, 4, 3, 3, 2}

// Point addresses a cell. Row grows downward, Col grows to the right.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Index is the row-major cell index used by the board commitment.
func (p Point) Index() int { return p.Row*Size + p.Col }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Ship is one placed ship. Vertical ships extend downward from (Row, Col),
// horizontal ones to the right.
type Ship struct {
	Row      int  `json:"row"`
	Col      int  `json:"col"`
	Size     int  `json:"size"`
	Vertical bool `json:"vertical"`
}

// Cells lists the coordinates the ship covers.
func (s Ship) Cells() []Point {
	out := make([]Point, 0, s.Size)
	for i := 0; i < s.Size; i++ {
		if s.Vertical {
			out = append(out, Point{Row: s.Row + i, Col: s.Col})
		} else {
			out = append(out, Point{Row: s.Row, Col: s.Col + i})
		}
	}
	return out
}

// Board is the hidden layout. Cell: 0=water, 1=ship.
type Board struct {
	Ships []Ship            `json:"ships"`
	Cells [Size][Size]uint8 `json:"cells"`
}

// NewBoard derives the cell grid from a ship list.
func NewBoard(ships []Ship) (Board, error) {
	b := Board{Ships: append([]Ship(nil), ships...)}
	for _, s := range ships {
		if s.Size <= 0 {
			return Board{}, fmt.Errorf("ship at %v has size %d", Point{s.Row, s.Col}, s.Size)
		}
		for _, p := range s.Cells() {
			if !p.InBounds() {
				return Board{}, fmt.Errorf("ship at %v leaves the board", Point{s.Row, s.Col})
			}
			if b.Cells[p.Row][p.Col] == 1 {
				return Board{}, fmt.Errorf("ships overlap at %v", p)
			}
			b.Cells[p.Row][p.Col] = 1
		}
	}
	return b, nil
}

// Validate checks the layout against the expected fleet.
func (b *Board) Validate(sizes []int) error {
	want := make(map[int]int)
	total := 0
	for _, s := range sizes {
		want[s]++
		total += s
	}
	for _, s := range b.Ships {
		want[s.Size]--
	}
	for size, n := range want {
		if n != 0 {
			return fmt.Errorf("fleet mismatch for ships of size %d", size)
		}
	}

	derived, err := NewBoard(b.Ships)
	if err != nil {
		return err
	}
	count := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := b.Cells[r][c]
			if v != 0 && v != 1 {
				return errors.New("board has non-binary cell")
			}
			if v != derived.Cells[r][c] {
				return fmt.Errorf("cell %v disagrees with ship list", Point{r, c})
			}
			count += int(v)
		}
	}
	if count != total {
		return fmt.Errorf("board must contain exactly %d ship cells, has %d", total, count)
	}
	return nil
}

// Flatten returns the cells in row-major order.
func (b *Board) Flatten() []uint8 {
	out := make([]uint8, 0, Size*Size)
	for r := 0; r < Size; r++ {
		out = append(out, b.Cells[r][:]...)
	}
	return out
}

const maxPlacementTries = 10000

// GenerateRandomBoard places the fleet without overlap. Ships may touch.
func GenerateRandomBoard(rng *rand.Rand, sizes []int) (Board, error) {
	var occupied [Size][Size]bool
	ships := make([]Ship, 0, len(sizes))
	tries := 0
	for _, size := range sizes {
		if size <= 0 || size > Size {
			return Board{}, fmt.Errorf("ship size %d does not fit a %dx%d board", size, Size, Size)
		}
		for {
			if tries > maxPlacementTries {
				return Board{}, errors.New("failed to place ships")
			}
			tries++
			s := Ship{Size: size, Vertical: rng.Intn(2) == 0, Row: rng.Intn(Size), Col: rng.Intn(Size)}
			if fits(&occupied, s) {
				for _, p := range s.Cells() {
					occupied[p.Row][p.Col] = true
				}
				ships = append(ships, s)
				break
			}
		}
	}
	return NewBoard(ships)
}

func fits(occupied *[Size][Size]bool, s Ship) bool {
	for _, p := range s.Cells() {
		if !p.InBounds() || occupied[p.Row][p.Col] {
			return false
		}
	}
	return true
}

// NewRand returns a deterministic source. Seed 0 is mapped to 1.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}
