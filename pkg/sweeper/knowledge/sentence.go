package knowledge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
)

// Sentence states that exactly Count of its cells are mines.
type Sentence struct {
	cells grid.Set
	count int
}

// NewSentence builds a sentence over the given cells. Duplicate cells
// collapse into one.
func NewSentence(cells []grid.Cell, count int) *Sentence {
	return &Sentence{cells: grid.NewSet(cells...), count: count}
}

func newSentence(cells grid.Set, count int) *Sentence {
	return &Sentence{cells: cells, count: count}
}

// Cells returns the sentence cells in row-major order.
func (s *Sentence) Cells() []grid.Cell { return s.cells.Sorted() }

// Count returns the number of mines among the cells.
func (s *Sentence) Count() int { return s.count }

// Len returns the number of cells.
func (s *Sentence) Len() int { return s.cells.Len() }

// KnownMines returns every cell when all of them must be mines.
// An empty sentence carries no mines, so count must be positive.
func (s *Sentence) KnownMines() grid.Set {
	if s.cells.Len() == s.count && s.count > 0 {
		return s.cells.Clone()
	}
	return grid.NewSet()
}

// KnownSafes returns every cell when none of them can be a mine.
func (s *Sentence) KnownSafes() grid.Set {
	if s.count == 0 {
		return s.cells.Clone()
	}
	return grid.NewSet()
}

// MarkMine removes a cell proven to be a mine and lowers the count.
// Calls for cells not in the sentence are no-ops.
func (s *Sentence) MarkMine(c grid.Cell) {
	if !s.cells.Has(c) {
		return
	}
	s.cells.Remove(c)
	s.count--
}

// MarkSafe removes a cell proven to be safe.
func (s *Sentence) MarkSafe(c grid.Cell) {
	s.cells.Remove(c)
}

// Consistent reports whether 0 <= count <= len(cells).
func (s *Sentence) Consistent() bool {
	return s.count >= 0 && s.count <= s.cells.Len()
}

// Equal compares cells and count by value.
func (s *Sentence) Equal(o *Sentence) bool {
	return s.count == o.count && s.cells.Equal(o.cells)
}

// Key is a canonical encoding of the sentence; equal sentences share a key.
func (s *Sentence) Key() string {
	return cellsKey(s.cells) + "=" + strconv.Itoa(s.count)
}

func (s *Sentence) String() string {
	return fmt.Sprintf("%s = %d", s.cells, s.count)
}

func (s *Sentence) clone() Sentence {
	return Sentence{cells: s.cells.Clone(), count: s.count}
}

func cellsKey(cells grid.Set) string {
	var sb strings.Builder
	for i, c := range cells.Sorted() {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(c.Row))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(c.Col))
	}
	return sb.String()
}
