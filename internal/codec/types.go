package codec

import (
	"battleship-solver/internal/bot"
	"battleship-solver/internal/game"
	"battleship-solver/internal/merkle"
	"battleship-solver/internal/zk"
)

// Secret is the referee's private commitment state.
type Secret struct {
	Board   game.Board   `json:"board"`
	Tree    *merkle.Tree `json:"tree"`
	SaltHex string       `json:"salt_hex"`
}

type ShotProofPayload struct {
	Proof  []byte        `json:"proof"`
	Public zk.ShotPublic `json:"public"` // salted root, cell index and hit
}

// Summary aggregates a bench run.
type Summary struct {
	Games        int     `json:"games"`
	Completed    int     `json:"completed"`
	Failed       int     `json:"failed"`
	TotalShots   int     `json:"totalShots"`
	AverageShots float64 `json:"averageShots"`
	MinShots     int     `json:"minShots"`
	MaxShots     int     `json:"maxShots"`
	Seed         int64   `json:"seed"`
	ElapsedMS    int64   `json:"elapsedMs"`
}

// GameTrace is the shot-by-shot record of a single game.
type GameTrace struct {
	Board   game.Board `json:"board"`
	Shots   []bot.Shot `json:"shots"`
	Total   int        `json:"total"`
	RootHex string     `json:"rootHex,omitempty"`
}
