package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"battleship-solver/internal/bot"
	"battleship-solver/internal/codec"
	"battleship-solver/internal/game"
)

// ErrShotLimit means a game did not finish within one shot per square.
var ErrShotLimit = errors.New("shot limit reached before all ships sunk")

const maxShotsPerGame = game.Size * game.Size

// PlayGame runs b against sim until every ship is sunk and returns the
// shots in order.
func PlayGame(sim bot.Simulator, b *bot.Bot) ([]bot.Shot, error) {
	shots := make([]bot.Shot, 0, 64)
	for !sim.AllSunk() {
		if len(shots) >= maxShotsPerGame {
			return shots, ErrShotLimit
		}
		s, err := b.FireShot()
		if err != nil {
			return shots, err
		}
		shots = append(shots, s)
	}
	return shots, nil
}

// BenchConfig controls a batch of independent games.
type BenchConfig struct {
	Games     int
	Workers   int
	Seed      int64
	ShipSizes []int
}

type tally struct {
	mu      sync.Mutex
	summary codec.Summary
}

func (t *tally) add(shots int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.summary.Failed++
		return
	}
	s := &t.summary
	if s.Completed == 0 || shots < s.MinShots {
		s.MinShots = shots
	}
	if shots > s.MaxShots {
		s.MaxShots = shots
	}
	s.Completed++
	s.TotalShots += shots
}

// RunBench plays cfg.Games games, each on its own random board with its own
// bot. Game i uses seed cfg.Seed+i, so a run is reproducible whatever the
// worker count. A game that fails is counted and logged; it does not stop
// the batch.
func RunBench(ctx context.Context, cfg BenchConfig, log zerolog.Logger) (codec.Summary, error) {
	if cfg.Games <= 0 {
		return codec.Summary{}, fmt.Errorf("games must be positive, got %d", cfg.Games)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sizes := cfg.ShipSizes
	if len(sizes) == 0 {
		sizes = game.DefaultShipSizes
	}

	start := time.Now()
	t := &tally{summary: codec.Summary{Games: cfg.Games, Seed: cfg.Seed}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	progress := max(cfg.Games/10, 1)
	for i := 0; i < cfg.Games; i++ {
		if gctx.Err() != nil {
			break
		}
		seed := cfg.Seed + int64(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shots, err := playSeeded(seed, sizes)
			if err != nil {
				log.Warn().Err(err).Int64("seed", seed).Msg("game failed")
			}
			t.add(shots, err)
			if (i+1)%progress == 0 {
				log.Debug().Int("game", i+1).Int("of", cfg.Games).Msg("bench progress")
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	s := t.summary
	if s.Completed > 0 {
		s.AverageShots = float64(s.TotalShots) / float64(s.Completed)
	}
	s.ElapsedMS = time.Since(start).Milliseconds()
	if err != nil {
		return s, err
	}
	log.Info().
		Int("games", s.Games).
		Int("failed", s.Failed).
		Float64("avg_shots", s.AverageShots).
		Int("min", s.MinShots).
		Int("max", s.MaxShots).
		Int64("elapsed_ms", s.ElapsedMS).
		Msg("bench finished")
	return s, nil
}

func playSeeded(seed int64, sizes []int) (int, error) {
	b, err := game.GenerateRandomBoard(game.NewRand(seed), sizes)
	if err != nil {
		return 0, err
	}
	sim := game.NewGame(b)
	if _, err := PlayGame(sim, bot.New(sim)); err != nil {
		return 0, err
	}
	return sim.TotalShotsTaken(), nil
}

// Trace plays one game against sim and records every shot.
func Trace(sim bot.Simulator, board game.Board, log zerolog.Logger) (codec.GameTrace, error) {
	b := bot.New(sim, bot.WithLogger(log))
	shots, err := PlayGame(sim, b)
	tr := codec.GameTrace{Board: board, Shots: shots, Total: sim.TotalShotsTaken()}
	if r, ok := sim.(*Referee); ok {
		tr.RootHex = r.RootHex()
	}
	return tr, err
}
