package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"battleship-solver/internal/app"
	"battleship-solver/internal/bot"
	"battleship-solver/internal/config"
	"battleship-solver/internal/game"
	"battleship-solver/internal/logging"
	"battleship-solver/internal/server"
	"battleship-solver/internal/zk"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		return
	}
	switch os.Args[1] {
	case "init":
		cmdInit()
	case "bench":
		cmdBench()
	case "play":
		cmdPlay()
	case "serve":
		cmdServe()
	default:
		usage(os.Stdout)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Battleship solver CLI

Commands:
  init   --out board.json [--seed N]
  bench  [--config battleship.yaml] [--games N] [--workers N] [--seed N]
  play   [--config battleship.yaml] [--board board.json] [--seed N] [--proven --keys ./keys] [--out trace.json]
  serve  [--config battleship.yaml] [--addr :8080]
`)
}

// setup registers the shared flags on fs. The returned func loads the
// config file and builds the logger once fs has been parsed.
func setup(fs *flag.FlagSet) func() (config.Config, zerolog.Logger) {
	cfgPath := fs.String("config", "", "YAML config file")
	level := fs.String("log-level", "", "log level override")
	return func() (config.Config, zerolog.Logger) {
		c, err := config.Load(*cfgPath)
		if err != nil {
			fatal(err)
		}
		if *level != "" {
			c.Log.Level = *level
		}
		l, err := logging.New(c.Log.Level, c.Log.Pretty, os.Stderr)
		if err != nil {
			fatal(err)
		}
		return c, l
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	out := fs.String("out", "board.json", "output board file")
	seed := fs.Int64("seed", time.Now().UnixNano(), "placement seed")
	sizes := fs.String("ships", "", "comma separated ship sizes")
	_ = fs.Parse(os.Args[2:])

	fleet := game.DefaultShipSizes
	if *sizes != "" {
		var err error
		if fleet, err = parseSizes(*sizes); err != nil {
			fatal(err)
		}
	}
	b, err := game.GenerateRandomBoard(game.NewRand(*seed), fleet)
	if err != nil {
		fatal(err)
	}
	if err := saveJSON(*out, b); err != nil {
		fatal(err)
	}
	fmt.Println("✓ wrote", *out)
}

func cmdBench() {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	load := setup(fs)
	games := fs.Int("games", 0, "number of games (overrides config)")
	workers := fs.Int("workers", -1, "parallel games, 0 = one per CPU (overrides config)")
	seed := fs.Int64("seed", 0, "first game seed (overrides config)")
	_ = fs.Parse(os.Args[2:])
	cfg, logger := load()
	if *games > 0 {
		cfg.Games = *games
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := app.RunBench(ctx, app.BenchConfig{
		Games:     cfg.Games,
		Workers:   cfg.Workers,
		Seed:      cfg.Seed,
		ShipSizes: cfg.ShipSizes,
	}, logger)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("The average # of shots required in %d games to sink all ships = %.2f\n", sum.Completed, sum.AverageShots)
	if sum.Failed > 0 {
		fmt.Printf("%d games aborted\n", sum.Failed)
		os.Exit(1)
	}
}

func cmdPlay() {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	load := setup(fs)
	boardPath := fs.String("board", "", "board file (random when empty)")
	seed := fs.Int64("seed", time.Now().UnixNano(), "placement seed for a random board")
	proven := fs.Bool("proven", false, "commit the board and prove every verdict")
	keysDir := fs.String("keys", "", "keys directory (overrides config)")
	out := fs.String("out", "", "write the game trace as JSON")
	_ = fs.Parse(os.Args[2:])
	cfg, logger := load()
	if *keysDir != "" {
		cfg.Proven.KeysDir = *keysDir
	}
	cfg.Proven.Enabled = cfg.Proven.Enabled || *proven

	var b game.Board
	if *boardPath != "" {
		if err := loadJSON(*boardPath, &b); err != nil {
			fatal(err)
		}
		if err := b.Validate(cfg.ShipSizes); err != nil {
			fatal(err)
		}
	} else {
		var err error
		if b, err = game.GenerateRandomBoard(game.NewRand(*seed), cfg.ShipSizes); err != nil {
			fatal(err)
		}
	}

	var sim bot.Simulator = game.NewGame(b)
	if cfg.Proven.Enabled {
		logger.Info().Str("keys", cfg.Proven.KeysDir).Msg("loading shot circuit")
		p, err := zk.LoadProver(cfg.Proven.KeysDir)
		if err != nil {
			fatal(err)
		}
		ref, err := app.Commit(b, cfg.ShipSizes, p)
		if err != nil {
			fatal(err)
		}
		fmt.Println("ROOT:", ref.RootHex())
		sim = ref
	}

	tr, err := app.Trace(sim, b, logger)
	if err != nil {
		fatal(err)
	}
	if *out != "" {
		if err := saveJSON(*out, tr); err != nil {
			fatal(err)
		}
		fmt.Println("✓ wrote", *out)
	}
	fmt.Printf("All ships sunk in %d shots\n", tr.Total)
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	load := setup(fs)
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(os.Args[2:])
	cfg, logger := load()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	srv := server.New(cfg, logger)
	mux := http.NewServeMux()
	srv.Routes(mux)
	logger.Info().Str("addr", cfg.Server.Addr).Msg("serving")
	if err := http.ListenAndServe(cfg.Server.Addr, server.WithCORS(mux)); err != nil {
		fatal(err)
	}
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad ship size %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func saveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
