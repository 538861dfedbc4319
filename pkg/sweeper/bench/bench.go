// Package bench plays many seeded games concurrently and records them.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/sweeper/pkg/sweeper/board"
	"github.com/cognicore/sweeper/pkg/sweeper/config"
	"github.com/cognicore/sweeper/pkg/sweeper/game"
	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/metrics"
	"github.com/cognicore/sweeper/pkg/sweeper/store"
	"github.com/cognicore/sweeper/pkg/sweeper/store/memstore"
)

// Options describes a benchmark run. Store, Metrics and Logger are optional.
type Options struct {
	Height     int
	Width      int
	Mines      int
	Games      int
	Workers    int
	Seed       uint64
	RoundLimit int
	Verify     bool

	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// FromConfig maps a validated configuration onto Options.
func FromConfig(cfg config.Config) Options {
	return Options{
		Height:     cfg.Board.Height,
		Width:      cfg.Board.Width,
		Mines:      cfg.Board.Mines,
		Games:      cfg.Bench.Games,
		Workers:    cfg.Bench.Workers,
		Seed:       cfg.Bench.Seed,
		RoundLimit: cfg.Engine.RoundLimit,
		Verify:     cfg.Engine.Verify,
	}
}

// Summary aggregates one run.
type Summary struct {
	Games     int
	Won       int
	Lost      int
	Stalled   int
	MeanMoves float64
	Elapsed   time.Duration
}

func (s Summary) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Games)
}

// Rngs returns the board and agent sources for the game with the given seed.
// Both are derived from the seed alone so any game can be replayed.
func Rngs(seed uint64) (boardRng, agentRng *rand.Rand) {
	return rand.New(rand.NewPCG(seed, 0)), rand.New(rand.NewPCG(seed, 1))
}

// Run plays opts.Games games, game i seeded opts.Seed+i. The first failing
// game cancels the rest.
func Run(ctx context.Context, opts Options) (Summary, error) {
	g, err := grid.New(opts.Height, opts.Width)
	if err != nil {
		return Summary{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	st := opts.Store
	if st == nil {
		st = memstore.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	results := make([]game.Result, opts.Games)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < opts.Games; i++ {
		seed := opts.Seed + uint64(i)
		eg.Go(func() error {
			boardRng, agentRng := Rngs(seed)
			b, err := board.Random(g, opts.Mines, boardRng)
			if err != nil {
				return err
			}
			gopts := game.Options{
				Rng:        agentRng,
				Logger:     logger.With("seed", seed),
				RoundLimit: opts.RoundLimit,
				Verify:     opts.Verify,
			}
			if opts.Metrics != nil {
				gopts.Observer = opts.Metrics
			}
			res, err := game.Play(egCtx, b, gopts)
			if err != nil {
				if opts.Metrics != nil {
					opts.Metrics.GamesTotal.WithLabelValues("error").Inc()
				}
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res

			if opts.Metrics != nil {
				opts.Metrics.RecordGame(string(res.Outcome), res.SafeMoves, res.RandomMoves, res.Duration)
			}
			if err := st.SaveGame(egCtx, Record(res, seed, opts)); err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			logger.Debug("game finished", "id", res.ID, "outcome", res.Outcome, "moves", res.Moves)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Summary{}, err
	}

	sum := summarize(results)
	sum.Elapsed = time.Since(start)
	logger.Info("bench complete",
		"games", sum.Games, "won", sum.Won, "lost", sum.Lost, "stalled", sum.Stalled,
		"win_rate", sum.WinRate(), "elapsed", sum.Elapsed)
	return sum, nil
}

// Record converts a game result into a ledger row.
func Record(res game.Result, seed uint64, opts Options) store.GameRecord {
	return store.GameRecord{
		ID:           res.ID,
		Seed:         seed,
		Height:       opts.Height,
		Width:        opts.Width,
		Mines:        opts.Mines,
		Outcome:      string(res.Outcome),
		Moves:        res.Moves,
		SafeMoves:    res.SafeMoves,
		RandomMoves:  res.RandomMoves,
		MinesFlagged: res.MinesFlagged,
		Duration:     res.Duration,
		StartedAt:    res.StartedAt,
	}
}

func summarize(results []game.Result) Summary {
	var s Summary
	moves := 0
	for _, r := range results {
		s.Games++
		moves += r.Moves
		switch r.Outcome {
		case game.Won:
			s.Won++
		case game.Lost:
			s.Lost++
		case game.Stalled:
			s.Stalled++
		}
	}
	if s.Games > 0 {
		s.MeanMoves = float64(moves) / float64(s.Games)
	}
	return s
}
