// Package game plays one minesweeper game between a board and the agent.
package game

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sweeper/pkg/sweeper"
	"github.com/cognicore/sweeper/pkg/sweeper/board"
	"github.com/cognicore/sweeper/pkg/sweeper/knowledge"
	"github.com/cognicore/sweeper/pkg/sweeper/oracle"
	"github.com/cognicore/sweeper/pkg/sweeper/policy"
)

// Outcome is how a game ended.
type Outcome string

const (
	Won     Outcome = "won"
	Lost    Outcome = "lost"
	Stalled Outcome = "stalled" // no move left, mines not all flagged
)

// Options configures a game. The zero value plays with a random seed and
// no logging.
type Options struct {
	Rng        *mrand.Rand
	Logger     *slog.Logger
	Observer   knowledge.Observer
	RoundLimit int
	// Verify cross-checks the knowledge base with the SAT oracle after every
	// move. Expensive; meant for tests and audits.
	Verify bool
}

// Result summarizes a finished game.
type Result struct {
	ID           string
	Outcome      Outcome
	Moves        int
	SafeMoves    int
	RandomMoves  int
	MinesFlagged int
	Duration     time.Duration
	StartedAt    time.Time
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Play runs the agent against b until it wins, hits a mine, or runs out of
// moves. An error means the game was aborted: the context was cancelled,
// inference failed, or verification caught an unsound fact.
func Play(ctx context.Context, b *board.Board, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	start := time.Now()
	res := Result{ID: newID(start), StartedAt: start}
	logger = logger.With("game", res.ID)

	g := b.Grid()
	agent := sweeper.New(g, opts.Rng,
		knowledge.WithLogger(logger),
		knowledge.WithObserver(opts.Observer),
		knowledge.WithRoundLimit(opts.RoundLimit),
	)
	var orc *oracle.Oracle
	if opts.Verify {
		orc = oracle.New(g)
	}

	finish := func(o Outcome) (Result, error) {
		res.Outcome = o
		res.MinesFlagged = agent.Mines().Len()
		res.Duration = time.Since(start)
		logger.Debug("game over", "outcome", o, "moves", res.Moves, "flagged", res.MinesFlagged)
		return res, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		if b.Won(agent.Mines()) {
			return finish(Won)
		}

		m, ok := agent.NextMove()
		if !ok {
			return finish(Stalled)
		}
		res.Moves++
		if m.Kind == policy.Safe {
			res.SafeMoves++
		} else {
			res.RandomMoves++
		}

		if b.IsMine(m.Cell) {
			logger.Debug("hit mine", "cell", m.Cell, "kind", m.Kind)
			return finish(Lost)
		}

		count := b.NearbyMines(m.Cell)
		logger.Debug("move", "cell", m.Cell, "kind", m.Kind, "count", count)
		if err := agent.AddKnowledge(m.Cell, count); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("game %s move %d at %v: %w", res.ID, res.Moves, m.Cell, err)
		}
		if orc != nil {
			orc.Observe(m.Cell, count)
			if err := orc.Check(agent.Knowledge()); err != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("game %s move %d: verify: %w", res.ID, res.Moves, err)
			}
		}
	}
}
