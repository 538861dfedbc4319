// Package board holds the ground truth of a game: where the mines are.
// Only the game loop and tests consult it; the agent never does.
package board

import (
	"fmt"
	"math/rand/v2"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
)

// Board is a mine layout on a grid.
type Board struct {
	grid  grid.Grid
	mines grid.Set
}

// New places mines at the given cells.
func New(g grid.Grid, mines []grid.Cell) (*Board, error) {
	set := grid.NewSet()
	for _, c := range mines {
		if !g.Contains(c) {
			return nil, fmt.Errorf("mine %v outside %dx%d board: %w", c, g.Height, g.Width, internalerr.ErrInvalidInput)
		}
		if set.Has(c) {
			return nil, fmt.Errorf("mine %v listed twice: %w", c, internalerr.ErrInvalidInput)
		}
		set.Add(c)
	}
	return &Board{grid: g, mines: set}, nil
}

// Random places n mines uniformly at random.
func Random(g grid.Grid, n int, rng *rand.Rand) (*Board, error) {
	if n < 0 || n > g.Size() {
		return nil, fmt.Errorf("%d mines on %d cells: %w", n, g.Size(), internalerr.ErrInvalidInput)
	}
	cells := g.Cells()
	mines := make([]grid.Cell, 0, n)
	for _, i := range rng.Perm(len(cells))[:n] {
		mines = append(mines, cells[i])
	}
	return New(g, mines)
}

func (b *Board) Grid() grid.Grid { return b.grid }

// IsMine reports the ground truth for c.
func (b *Board) IsMine(c grid.Cell) bool { return b.mines.Has(c) }

// Mines returns a copy of the mine layout.
func (b *Board) Mines() grid.Set { return b.mines.Clone() }

// NearbyMines counts mines among the in-bounds neighbors of c.
func (b *Board) NearbyMines(c grid.Cell) int {
	n := 0
	for _, nb := range b.grid.Neighbors(c) {
		if b.mines.Has(nb) {
			n++
		}
	}
	return n
}

// Won reports whether found is exactly the mine layout.
func (b *Board) Won(found grid.Set) bool {
	return b.mines.Equal(found)
}
