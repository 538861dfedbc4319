// Package grid provides board coordinates and neighbor enumeration.
// Nothing in this package holds game state.
package grid

import (
	"fmt"

	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
)

// Cell is a (row, column) board coordinate.
type Cell struct {
	Row int
	Col int
}

// C is shorthand for Cell{Row: row, Col: col}.
func C(row, col int) Cell {
	return Cell{Row: row, Col: col}
}

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Grid holds board dimensions.
type Grid struct {
	Height int
	Width  int
}

// New returns a grid of the given dimensions.
func New(height, width int) (Grid, error) {
	if height <= 0 || width <= 0 {
		return Grid{}, fmt.Errorf("grid %dx%d: %w", height, width, internalerr.ErrInvalidInput)
	}
	return Grid{Height: height, Width: width}, nil
}

// Size returns the number of cells on the board.
func (g Grid) Size() int {
	return g.Height * g.Width
}

// Contains reports whether c lies on the board.
func (g Grid) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Height && c.Col >= 0 && c.Col < g.Width
}

// Neighbors returns the in-bounds cells within one row and column of c,
// excluding c itself, in row-major order.
func (g Grid) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 8)
	for r := c.Row - 1; r <= c.Row+1; r++ {
		for col := c.Col - 1; col <= c.Col+1; col++ {
			n := Cell{Row: r, Col: col}
			if n == c || !g.Contains(n) {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// Cells returns every cell on the board in row-major order.
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, g.Size())
	for r := 0; r < g.Height; r++ {
		for col := 0; col < g.Width; col++ {
			out = append(out, Cell{Row: r, Col: col})
		}
	}
	return out
}
