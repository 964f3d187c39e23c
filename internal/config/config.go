package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"battleship-solver/internal/game"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ProvenConfig enables the committed, proof-backed referee.
type ProvenConfig struct {
	Enabled bool   `yaml:"enabled"`
	KeysDir string `yaml:"keys_dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MaxGames caps the games a single bench request may ask for.
	MaxGames int `yaml:"max_games"`
}

type Config struct {
	Games     int          `yaml:"games"`
	Workers   int          `yaml:"workers"`
	Seed      int64        `yaml:"seed"`
	ShipSizes []int        `yaml:"ship_sizes"`
	Log       LogConfig    `yaml:"log"`
	Proven    ProvenConfig `yaml:"proven"`
	Server    ServerConfig `yaml:"server"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Games:     10000,
		Workers:   0,
		Seed:      1,
		ShipSizes: append([]int(nil), game.DefaultShipSizes...),
		Log:       LogConfig{Level: "info", Pretty: true},
		Proven:    ProvenConfig{KeysDir: "./keys"},
		Server:    ServerConfig{Addr: ":8080", MaxGames: 100000},
	}
}

// Load reads a YAML file over the defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Games <= 0 {
		return errors.New("games must be positive")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if len(c.ShipSizes) == 0 {
		return errors.New("ship_sizes must not be empty")
	}
	total := 0
	for _, s := range c.ShipSizes {
		if s < 1 || s > game.Size {
			return fmt.Errorf("ship size %d out of range", s)
		}
		total += s
	}
	if total > game.Size*game.Size {
		return fmt.Errorf("fleet of %d cells does not fit the board", total)
	}
	if c.Proven.Enabled && c.Proven.KeysDir == "" {
		return errors.New("proven.keys_dir required when proven is enabled")
	}
	return nil
}
