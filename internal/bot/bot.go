package bot

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"battleship-solver/internal/game"
)

// ErrNoShot means neither sink mode nor the heat map produced a target
// although the game is not over. The field's bookkeeping has drifted from
// the real board and the game cannot continue.
var ErrNoShot = errors.New("no shot available: inconsistent board state")

const (
	// smallestShip is the length that triggers the parity boost when it is
	// the only ship left.
	smallestShip = 2
	// endgameHitCap bounds the hit count used when the fleet collapses into
	// a single remaining ship.
	endgameHitCap = 19
)

// Simulator is the game the bot plays against.
type Simulator interface {
	Shoot(p game.Point) (bool, error)
	AllSunk() bool
	NumberOfShipsSunk() int
	ShipSizes() []int
	TotalShotsTaken() int
}

// Mode names the strategy that chose a shot.
type Mode string

const (
	ModeSink        Mode = "sink"
	ModeProbability Mode = "probability"
)

// Shot is the outcome of one FireShot call.
type Shot struct {
	Point  game.Point `json:"point"`
	Hit    bool       `json:"hit"`
	Sunk   bool       `json:"sunk"`
	Mode   Mode       `json:"mode"`
	Skewed bool       `json:"skewed,omitempty"`
}

// Bot plays one game. Construct a new one per game.
type Bot struct {
	sim       Simulator
	field     *Field
	fleetSize int
	log       zerolog.Logger
}

type Option func(*Bot)

// WithLogger sets the logger used for per-shot decisions.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bot) { b.log = l }
}

// New reads the fleet from sim and prepares an empty field.
func New(sim Simulator, opts ...Option) *Bot {
	sizes := sim.ShipSizes()
	b := &Bot{
		sim:       sim,
		field:     NewField(sizes),
		fleetSize: len(sizes),
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Field exposes the bot's view of the board.
func (b *Bot) Field() *Field { return b.field }

// FireShot picks one target, fires it and folds the verdict into the field.
func (b *Bot) FireShot() (Shot, error) {
	f := b.field
	var out Shot

	if len(f.alive) == 1 && f.alive[0] == smallestShip && !f.Hunting() {
		// The recompute below starts from zero, so only the returned
		// squares survive the boost.
		f.DiagonalSkew()
		out.Skewed = true
	}

	f.UpdateProbability()

	p, ok := f.SinkMode()
	out.Mode = ModeSink
	if !ok {
		p, ok = f.NextShot()
		out.Mode = ModeProbability
	}
	if !ok {
		return out, ErrNoShot
	}
	return b.fire(p, out)
}

// fire shoots at p and folds the verdict into the field.
func (b *Bot) fire(p game.Point, out Shot) (Shot, error) {
	f := b.field
	out.Point = p
	sunkBefore := b.sim.NumberOfShipsSunk()

	hit, err := b.sim.Shoot(p)
	if err != nil {
		return out, fmt.Errorf("shoot %v: %w", p, err)
	}
	out.Hit = hit
	if hit {
		f.HandleShotHit(p)
	} else {
		f.MarkMiss(p)
	}

	out.Sunk = b.afterShot(sunkBefore, p)

	b.log.Debug().
		Stringer("point", p).
		Str("mode", string(out.Mode)).
		Bool("hit", out.Hit).
		Bool("sunk", out.Sunk).
		Ints("alive", f.alive).
		Msg("shot")
	return out, nil
}

// afterShot reconciles the field with a sink reported by the simulator.
func (b *Bot) afterShot(sunkBefore int, shot game.Point) bool {
	sunkAfter := b.sim.NumberOfShipsSunk()
	if sunkAfter <= sunkBefore {
		return false
	}
	f := b.field

	length := f.SunkLength()
	if f.RemoveShip(length) {
		f.SetCellStateSunk(length)
	} else {
		b.log.Debug().Int("length", length).Stringer("point", shot).Msg("sunk run matches no alive ship")
	}
	f.MarkSunk(shot)
	f.ResetHunt()

	if sunkAfter == b.fleetSize-1 {
		f.collapseFleet(endgameHitCap)
		b.log.Debug().Ints("alive", f.alive).Msg("last ship left")
	}
	return true
}
