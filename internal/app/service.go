package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"

	"battleship-solver/internal/codec"
	"battleship-solver/internal/game"
	"battleship-solver/internal/merkle"
	"battleship-solver/internal/zk"
)

// ErrBadProof means the referee produced a verdict its proof does not back.
var ErrBadProof = errors.New("shot proof rejected")

// Referee is a simulator whose every verdict is proven against a salted
// commitment of the board made before the first shot. The bot only sees a
// verdict after the proof has been verified.
type Referee struct {
	game   *game.Game
	secret codec.Secret
	salt   *big.Int
	root   *big.Int
	prover *zk.Prover
	last   *codec.ShotProofPayload
}

// Commit validates b against the fleet and commits it.
func Commit(b game.Board, sizes []int, prover *zk.Prover) (*Referee, error) {
	if err := b.Validate(sizes); err != nil {
		return nil, err
	}

	t, err := merkle.Commit(b.Flatten())
	if err != nil {
		return nil, err
	}

	// this is to make root unique for same boards
	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		return nil, err
	}
	salt := new(big.Int).SetBytes(saltBytes)
	salt.Mod(salt, ecc.BN254.ScalarField())

	return &Referee{
		game: game.NewGame(b),
		secret: codec.Secret{
			Board:   b,
			Tree:    t,
			SaltHex: fmt.Sprintf("0x%x", salt),
		},
		salt:   salt,
		root:   merkle.Salt(salt, t.Root()),
		prover: prover,
	}, nil
}

// RootHex is the public commitment.
func (r *Referee) RootHex() string { return fmt.Sprintf("0x%x", r.root) }

// Secret returns the private commitment state.
func (r *Referee) Secret() codec.Secret { return r.secret }

// LastProof is the payload backing the most recent verdict.
func (r *Referee) LastProof() *codec.ShotProofPayload { return r.last }

// Shoot resolves the shot on the hidden board, proves the verdict and
// verifies the proof before answering.
func (r *Referee) Shoot(p game.Point) (bool, error) {
	if _, err := r.game.Shoot(p); err != nil {
		return false, err
	}

	idx := p.Index()
	path, err := r.secret.Tree.Path(idx)
	if err != nil {
		return false, err
	}
	proof, pub, err := r.prover.Prove(zk.ShotWitness{
		Bit:   r.secret.Board.Cells[p.Row][p.Col],
		Index: idx,
		Path:  path,
		Salt:  r.salt,
		Root:  r.root,
	})
	if err != nil {
		return false, fmt.Errorf("prove shot %v: %w", p, err)
	}

	ok, err := r.prover.Verify(proof, pub, r.root)
	if err != nil {
		return false, fmt.Errorf("verify shot %v: %w", p, err)
	}
	if !ok || pub.Index != idx {
		return false, fmt.Errorf("shot %v: %w", p, ErrBadProof)
	}
	r.last = &codec.ShotProofPayload{Proof: proof, Public: pub}
	return pub.Hit == 1, nil
}

func (r *Referee) AllSunk() bool          { return r.game.AllSunk() }
func (r *Referee) NumberOfShipsSunk() int { return r.game.NumberOfShipsSunk() }
func (r *Referee) ShipSizes() []int       { return r.game.ShipSizes() }
func (r *Referee) TotalShotsTaken() int   { return r.game.TotalShotsTaken() }
