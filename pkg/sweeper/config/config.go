package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
)

// Config is the sweeper run configuration
type Config struct {
	Board   Board   `yaml:"board"`
	Bench   Bench   `yaml:"bench"`
	Engine  Engine  `yaml:"engine"`
	Log     Log     `yaml:"log"`
	Store   Store   `yaml:"store"`
	Metrics Metrics `yaml:"metrics"`
}

// Board describes the games to play
type Board struct {
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
	Mines  int `yaml:"mines"`
}

// Bench controls the benchmark harness
type Bench struct {
	Games   int    `yaml:"games"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"`
}

// Engine tunes inference
type Engine struct {
	RoundLimit int  `yaml:"round_limit"` // 0 means the board-size default
	Verify     bool `yaml:"verify"`      // cross-check every move with the SAT oracle
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Store selects the run ledger backend
type Store struct {
	Driver string `yaml:"driver"` // memory or sqlite
	Path   string `yaml:"path"`
}

type Metrics struct {
	Addr string `yaml:"addr"` // empty disables the /metrics listener
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Board:  Board{Height: 8, Width: 8, Mines: 8},
		Bench:  Bench{Games: 100, Workers: 4, Seed: 1},
		Log:    Log{Level: "info", Format: "text"},
		Store:  Store{Driver: "memory"},
		Engine: Engine{},
	}
}

// Load reads a YAML file on top of Default and validates the result
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations no run could use
func (c Config) Validate() error {
	var problems []string
	if c.Board.Height <= 0 || c.Board.Width <= 0 {
		problems = append(problems, fmt.Sprintf("board %dx%d", c.Board.Height, c.Board.Width))
	}
	if c.Board.Mines < 0 || c.Board.Mines > c.Board.Height*c.Board.Width {
		problems = append(problems, fmt.Sprintf("%d mines on %dx%d board", c.Board.Mines, c.Board.Height, c.Board.Width))
	}
	if c.Bench.Games < 0 {
		problems = append(problems, "negative games")
	}
	if c.Bench.Workers <= 0 {
		problems = append(problems, "workers must be positive")
	}
	if c.Engine.RoundLimit < 0 {
		problems = append(problems, "negative round_limit")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log format %q", c.Log.Format))
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "sqlite store needs a path")
		}
	default:
		problems = append(problems, fmt.Sprintf("store driver %q", c.Store.Driver))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), internalerr.ErrInvalidConfig)
	}
	return nil
}
