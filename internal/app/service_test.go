package app

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"battleship-solver/internal/bot"
	"battleship-solver/internal/game"
	"battleship-solver/internal/zk"
)

func TestCommitRejectsInvalidBoard(t *testing.T) {
	b := fixedBoard(t)
	if _, err := Commit(b, []int{5, 4, 3}, nil); err == nil {
		t.Error("fleet mismatch accepted")
	}
	b.Cells[9][9] = 1
	if _, err := Commit(b, game.DefaultShipSizes, nil); err == nil {
		t.Error("tampered board accepted")
	}
}

func TestCommitSaltsRoot(t *testing.T) {
	b := fixedBoard(t)
	r1, err := Commit(b, game.DefaultShipSizes, nil)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := Commit(b, game.DefaultShipSizes, nil)
	if !strings.HasPrefix(r1.RootHex(), "0x") {
		t.Errorf("RootHex() = %q", r1.RootHex())
	}
	if r1.RootHex() == r2.RootHex() {
		t.Error("same board committed to the same root twice")
	}
	if r1.Secret().Tree == nil || r1.LastProof() != nil {
		t.Error("unexpected commitment state")
	}
}

func TestRefereeGameMatchesPlainGame(t *testing.T) {
	if testing.Short() {
		t.Skip("proves every shot")
	}
	p, err := zk.LoadProver(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b := fixedBoard(t)

	plain := game.NewGame(b)
	want, err := PlayGame(plain, bot.New(plain))
	if err != nil {
		t.Fatal(err)
	}

	ref, err := Commit(b, game.DefaultShipSizes, p)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := Trace(ref, b, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Shots) != len(want) {
		t.Fatalf("proven game took %d shots, plain game %d", len(tr.Shots), len(want))
	}
	for i := range want {
		if tr.Shots[i] != want[i] {
			t.Fatalf("shot %d: %+v vs %+v", i, tr.Shots[i], want[i])
		}
	}
	if tr.RootHex != ref.RootHex() || ref.LastProof() == nil {
		t.Error("trace is missing the commitment")
	}
	last := ref.LastProof().Public
	if last.Hit != 1 || last.Index != tr.Shots[len(tr.Shots)-1].Point.Index() {
		t.Errorf("last proof = %+v", last)
	}
}
