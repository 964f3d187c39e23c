package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"battleship-solver/internal/app"
	"battleship-solver/internal/bot"
	"battleship-solver/internal/codec"
	"battleship-solver/internal/config"
	"battleship-solver/internal/game"
	"battleship-solver/internal/zk"
)

type Server struct {
	cfg config.Config
	log zerolog.Logger

	// In-memory state only
	mu        sync.RWMutex
	proverMu  sync.Mutex
	prover    *zk.Prover
	lastBench *codec.Summary
	played    int
	shots     int

	// Milliseconds since epoch when THIS server booted
	startAt int64
}

func New(cfg config.Config, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		startAt: time.Now().UnixMilli(),
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/bench", s.handleBench)
	mux.HandleFunc("/v1/play", s.handlePlay)
	mux.HandleFunc("/v1/status", s.handleStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// === Bench ===

type benchReq struct {
	Games   int   `json:"games"`
	Seed    int64 `json:"seed"`
	Workers int   `json:"workers"`
}

func (s *Server) handleBench(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req benchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "bad json")
		return
	}
	if req.Games <= 0 {
		req.Games = s.cfg.Games
	}
	if s.cfg.Server.MaxGames > 0 && req.Games > s.cfg.Server.MaxGames {
		writeJSON(w, 400, map[string]any{"error": "too many games", "max": s.cfg.Server.MaxGames})
		return
	}
	if req.Workers <= 0 {
		req.Workers = s.cfg.Workers
	}

	sum, err := app.RunBench(r.Context(), app.BenchConfig{
		Games:     req.Games,
		Workers:   req.Workers,
		Seed:      req.Seed,
		ShipSizes: s.cfg.ShipSizes,
	}, s.log)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}

	s.mu.Lock()
	s.lastBench = &sum
	s.played += sum.Completed
	s.shots += sum.TotalShots
	s.mu.Unlock()

	writeJSON(w, 200, sum)
}

// === Play ===

type playReq struct {
	Board  *game.Board `json:"board,omitempty"`
	Seed   int64       `json:"seed"`
	Proven bool        `json:"proven"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req playReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "bad json")
		return
	}

	var b game.Board
	if req.Board != nil {
		b = *req.Board
		if err := b.Validate(s.cfg.ShipSizes); err != nil {
			writeError(w, 400, err.Error())
			return
		}
	} else {
		var err error
		if b, err = game.GenerateRandomBoard(game.NewRand(req.Seed), s.cfg.ShipSizes); err != nil {
			writeError(w, 500, err.Error())
			return
		}
	}

	var sim bot.Simulator = game.NewGame(b)
	if req.Proven {
		p, err := s.loadProver()
		if err != nil {
			writeError(w, 500, err.Error())
			return
		}
		ref, err := app.Commit(b, s.cfg.ShipSizes, p)
		if err != nil {
			writeError(w, 400, err.Error())
			return
		}
		sim = ref
	}

	tr, err := app.Trace(sim, b, s.log)
	if err != nil {
		code := 500
		if errors.Is(err, app.ErrBadProof) {
			code = 502
		}
		writeJSON(w, code, map[string]any{"error": err.Error(), "trace": tr})
		return
	}

	s.mu.Lock()
	s.played++
	s.shots += tr.Total
	s.mu.Unlock()

	writeJSON(w, 200, tr)
}

// loadProver compiles the circuit on first use; setup is slow.
func (s *Server) loadProver() (*zk.Prover, error) {
	s.proverMu.Lock()
	defer s.proverMu.Unlock()
	if s.prover != nil {
		return s.prover, nil
	}
	p, err := zk.LoadProver(s.cfg.Proven.KeysDir)
	if err != nil {
		return nil, err
	}
	s.prover = p
	return p, nil
}

// === Status ===

func (s *Server) statusPayload() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	avg := 0.0
	if s.played > 0 {
		avg = float64(s.shots) / float64(s.played)
	}
	return map[string]any{
		"startedAt":    s.startAt,
		"gamesPlayed":  s.played,
		"averageShots": avg,
		"shipSizes":    s.cfg.ShipSizes,
		"lastBench":    s.lastBench,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, 200, s.statusPayload())
}

// === CORS ===

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// In dev we allow any origin. For production, set this to the specific origin(s).
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
