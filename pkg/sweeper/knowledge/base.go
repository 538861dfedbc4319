// Package knowledge implements the minesweeper knowledge base: a set of
// sentences over board cells plus the mines and safes derived from them.
//
// Inference runs to a fixed point on every observation. A round first
// saturates (resolving every cell a sentence pins down, propagating the
// result into all sentences) and then applies subset inference: for
// sentences s1 ⊆ s2 the cells s2−s1 hold exactly s2.count−s1.count mines.
// Rounds repeat until one derives no new sentence.
//
// A Base is owned by a single agent and is not safe for concurrent use.
package knowledge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
)

// Base is the accumulated knowledge of one game.
type Base struct {
	grid      grid.Grid
	movesMade grid.Set
	safes     grid.Set
	mines     grid.Set
	sentences []*Sentence

	logger     *slog.Logger
	observer   Observer
	roundLimit int

	// err is sticky: once inference finds a contradiction the base is unusable.
	err error
}

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the logger used for inference tracing (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(b *Base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver installs an inference event observer.
func WithObserver(o Observer) Option {
	return func(b *Base) {
		if o != nil {
			b.observer = o
		}
	}
}

// WithRoundLimit overrides the maximum number of inference rounds per
// observation. Values <= 0 keep the default.
func WithRoundLimit(n int) Option {
	return func(b *Base) {
		if n > 0 {
			b.roundLimit = n
		}
	}
}

// DefaultRoundLimit bounds inference rounds for a board of n cells.
// Every round but the last adds a sentence not currently held, and the live
// sentence population stays within O(n²).
func DefaultRoundLimit(n int) int {
	return n*n + n + 1
}

// New creates an empty knowledge base for the given board.
func New(g grid.Grid, opts ...Option) *Base {
	b := &Base{
		grid:       g,
		movesMade:  grid.NewSet(),
		safes:      grid.NewSet(),
		mines:      grid.NewSet(),
		logger:     slog.New(slog.DiscardHandler),
		observer:   nopObserver{},
		roundLimit: DefaultRoundLimit(g.Size()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddKnowledge records that cell was revealed safe with count mines among
// its neighbors, then infers to a fixed point.
//
// Calling it twice for the same cell is tolerated. A contradiction leaves
// the base poisoned: the error is returned by this and every later call.
func (b *Base) AddKnowledge(cell grid.Cell, count int) error {
	if b.err != nil {
		return b.err
	}
	if !b.grid.Contains(cell) {
		return fmt.Errorf("add knowledge %v: outside %dx%d board: %w",
			cell, b.grid.Height, b.grid.Width, internalerr.ErrInvalidInput)
	}
	neighbors := b.grid.Neighbors(cell)
	if count < 0 || count > len(neighbors) {
		return fmt.Errorf("add knowledge %v: count %d not in [0,%d]: %w",
			cell, count, len(neighbors), internalerr.ErrInvalidInput)
	}

	b.logger.Debug("observation", "cell", cell, "count", count)

	b.movesMade.Add(cell)
	if err := b.markSafe(cell); err != nil {
		return b.fail(err)
	}
	if s := NewSentence(neighbors, count); s.Len() > 0 {
		b.sentences = append(b.sentences, s)
	}
	if err := b.infer(); err != nil {
		return b.fail(err)
	}
	return nil
}

// infer alternates saturation and subset inference until a round derives
// nothing new.
func (b *Base) infer() error {
	for round := 0; round < b.roundLimit; round++ {
		if err := b.saturate(); err != nil {
			return err
		}
		added, err := b.deriveSubsets()
		if err != nil {
			return err
		}
		b.observer.RoundCompleted()
		if added == 0 {
			b.logger.Debug("fixed point", "rounds", round+1, "sentences", len(b.sentences),
				"mines", b.mines.Len(), "safes", b.safes.Len())
			return nil
		}
	}
	return fmt.Errorf("after %d rounds: %w", b.roundLimit, internalerr.ErrNoFixedPoint)
}

// saturate resolves every cell that some sentence pins down. Each pass that
// does not return resolves at least one new cell, so the board size bounds it.
func (b *Base) saturate() error {
	for pass := 0; pass <= b.grid.Size(); pass++ {
		if err := b.prune(); err != nil {
			return err
		}

		mines, safes := grid.NewSet(), grid.NewSet()
		for _, s := range b.sentences {
			for c := range s.KnownMines() {
				mines.Add(c)
			}
			for c := range s.KnownSafes() {
				safes.Add(c)
			}
		}
		if mines.Empty() && safes.Empty() {
			return nil
		}

		for _, c := range mines.Sorted() {
			if err := b.markMine(c); err != nil {
				return err
			}
		}
		for _, c := range safes.Sorted() {
			if err := b.markSafe(c); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("saturation exceeded %d passes: %w", b.grid.Size()+1, internalerr.ErrNoFixedPoint)
}

// prune rebuilds the sentence list: resolved cells are stripped, empty
// sentences dropped, duplicates collapsed. It works on a snapshot and swaps
// the result in at the end.
func (b *Base) prune() error {
	next := make([]*Sentence, 0, len(b.sentences))
	counts := make(map[string]int, len(b.sentences))

	for _, s := range b.sentences {
		for _, c := range s.Cells() {
			switch {
			case b.mines.Has(c):
				s.MarkMine(c)
			case b.safes.Has(c):
				s.MarkSafe(c)
			}
		}
		if !s.Consistent() {
			return fmt.Errorf("sentence %v: %w", s, internalerr.ErrContradiction)
		}
		if s.Len() == 0 {
			continue
		}

		key := cellsKey(s.cells)
		if n, seen := counts[key]; seen {
			if n != s.count {
				return fmt.Errorf("sentences over %v claim %d and %d mines: %w",
					s.cells, n, s.count, internalerr.ErrContradiction)
			}
			continue
		}
		counts[key] = s.count
		next = append(next, s)
	}

	b.sentences = next
	return nil
}

// deriveSubsets applies subset inference over a snapshot of the current
// sentences and appends every new sentence it finds.
func (b *Base) deriveSubsets() (int, error) {
	snapshot := b.sentences
	seen := make(map[string]struct{}, len(snapshot))
	for _, s := range snapshot {
		seen[s.Key()] = struct{}{}
	}

	var derived []*Sentence
	for i, s1 := range snapshot {
		for j, s2 := range snapshot {
			if i == j || !s1.cells.SubsetOf(s2.cells) {
				continue
			}
			cells := s2.cells.Minus(s1.cells)
			if cells.Empty() {
				continue
			}
			cand := newSentence(cells, s2.count-s1.count)
			if !cand.Consistent() {
				return 0, fmt.Errorf("%v minus %v: %w", s2, s1, internalerr.ErrContradiction)
			}
			key := cand.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			derived = append(derived, cand)
			b.observer.SentenceDerived()
			b.logger.Debug("derived sentence", "sentence", cand.String(), "from", s2.String(), "minus", s1.String())
		}
	}

	b.sentences = append(b.sentences, derived...)
	return len(derived), nil
}

func (b *Base) markMine(c grid.Cell) error {
	if b.mines.Has(c) {
		return nil
	}
	if b.safes.Has(c) {
		return fmt.Errorf("cell %v proven both safe and mine: %w", c, internalerr.ErrContradiction)
	}
	b.mines.Add(c)
	for _, s := range b.sentences {
		s.MarkMine(c)
	}
	b.observer.CellResolved(true)
	b.logger.Debug("mine", "cell", c)
	return nil
}

func (b *Base) markSafe(c grid.Cell) error {
	if b.safes.Has(c) {
		return nil
	}
	if b.mines.Has(c) {
		return fmt.Errorf("cell %v proven both mine and safe: %w", c, internalerr.ErrContradiction)
	}
	b.safes.Add(c)
	for _, s := range b.sentences {
		s.MarkSafe(c)
	}
	b.observer.CellResolved(false)
	b.logger.Debug("safe", "cell", c)
	return nil
}

func (b *Base) fail(err error) error {
	if errors.Is(err, internalerr.ErrContradiction) {
		b.observer.Contradiction()
	}
	b.logger.Warn("knowledge base poisoned", "error", err)
	b.err = err
	return err
}

// Err returns the sticky inference error, if any.
func (b *Base) Err() error { return b.err }

// Grid returns the board dimensions.
func (b *Base) Grid() grid.Grid { return b.grid }

// Mines returns a copy of the cells proven to be mines.
func (b *Base) Mines() grid.Set { return b.mines.Clone() }

// Safes returns a copy of the cells proven to be safe.
func (b *Base) Safes() grid.Set { return b.safes.Clone() }

// MovesMade returns a copy of the cells already probed.
func (b *Base) MovesMade() grid.Set { return b.movesMade.Clone() }

func (b *Base) IsMine(c grid.Cell) bool { return b.mines.Has(c) }
func (b *Base) IsSafe(c grid.Cell) bool { return b.safes.Has(c) }
func (b *Base) Moved(c grid.Cell) bool  { return b.movesMade.Has(c) }

// Sentences returns copies of the live sentences.
func (b *Base) Sentences() []Sentence {
	out := make([]Sentence, len(b.sentences))
	for i, s := range b.sentences {
		out[i] = s.clone()
	}
	return out
}
