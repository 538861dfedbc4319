// Package policy picks the next cell to probe from what the knowledge base
// has proven. It never mutates the knowledge it reads.
package policy

import (
	"math/rand/v2"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
)

// View is the read-only slice of a knowledge base the policy needs.
type View interface {
	Grid() grid.Grid
	IsMine(c grid.Cell) bool
	IsSafe(c grid.Cell) bool
	Moved(c grid.Cell) bool
}

// Kind tells how a move was chosen.
type Kind int

const (
	Safe Kind = iota
	Random
)

func (k Kind) String() string {
	switch k {
	case Safe:
		return "safe"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// Move is a cell to probe.
type Move struct {
	Cell grid.Cell
	Kind Kind
}

// Policy selects moves.
type Policy struct {
	view View
	rng  *rand.Rand
}

// New returns a policy over view. A nil rng gets a randomly seeded source.
func New(view View, rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Policy{view: view, rng: rng}
}

// SafeMove returns the first proven-safe cell, in row-major order, that has
// not been probed yet.
func (p *Policy) SafeMove() (grid.Cell, bool) {
	for _, c := range p.view.Grid().Cells() {
		if p.view.IsSafe(c) && !p.view.Moved(c) && !p.view.IsMine(c) {
			return c, true
		}
	}
	return grid.Cell{}, false
}

// Candidates lists every cell not yet probed and not known to be a mine.
func (p *Policy) Candidates() []grid.Cell {
	var out []grid.Cell
	for _, c := range p.view.Grid().Cells() {
		if !p.view.Moved(c) && !p.view.IsMine(c) {
			out = append(out, c)
		}
	}
	return out
}

// RandomMove samples uniformly from Candidates.
func (p *Policy) RandomMove() (grid.Cell, bool) {
	candidates := p.Candidates()
	if len(candidates) == 0 {
		return grid.Cell{}, false
	}
	return candidates[p.rng.IntN(len(candidates))], true
}

// Next prefers a safe move and falls back to a random one.
func (p *Policy) Next() (Move, bool) {
	if c, ok := p.SafeMove(); ok {
		return Move{Cell: c, Kind: Safe}, true
	}
	if c, ok := p.RandomMove(); ok {
		return Move{Cell: c, Kind: Random}, true
	}
	return Move{}, false
}
