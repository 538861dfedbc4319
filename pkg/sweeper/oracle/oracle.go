// Package oracle cross-checks a knowledge base with a SAT solver.
//
// Observations (revealed cell, neighbor count) are encoded as cardinality
// constraints over one boolean per cell, true meaning "mine". A fact is
// entailed when its negation is unsatisfiable together with the
// observations.
package oracle

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/internalerr"
	"github.com/cognicore/sweeper/pkg/sweeper/knowledge"
)

// View is what Check needs from a knowledge base.
type View interface {
	Mines() grid.Set
	Safes() grid.Set
	Sentences() []knowledge.Sentence
}

// Verdict is what the observations force about a single cell.
type Verdict int

const (
	Unknown Verdict = iota
	Mine
	Safe
)

func (v Verdict) String() string {
	switch v {
	case Mine:
		return "mine"
	case Safe:
		return "safe"
	default:
		return "unknown"
	}
}

// Oracle accumulates observations for one game.
type Oracle struct {
	grid grid.Grid
	obs  map[grid.Cell]int
}

// New returns an oracle with no observations.
func New(g grid.Grid) *Oracle {
	return &Oracle{grid: g, obs: make(map[grid.Cell]int)}
}

// Observe records that c was revealed with count neighboring mines.
func (o *Oracle) Observe(c grid.Cell, count int) {
	o.obs[c] = count
}

type problem struct {
	c    *logic.C
	vars map[grid.Cell]z.Lit
	root z.Lit
}

func (o *Oracle) encode() *problem {
	c := logic.NewC()
	vars := make(map[grid.Cell]z.Lit, o.grid.Size())
	for _, cell := range o.grid.Cells() {
		vars[cell] = c.Lit()
	}

	p := &problem{c: c, vars: vars, root: c.T}
	for _, cell := range o.grid.Cells() {
		count, ok := o.obs[cell]
		if !ok {
			continue
		}
		p.root = c.And(p.root, vars[cell].Not())
		p.root = c.And(p.root, p.exactly(o.grid.Neighbors(cell), count))
	}
	return p
}

// exactly encodes "k of cells are mines".
func (p *problem) exactly(cells []grid.Cell, k int) z.Lit {
	if len(cells) == 0 {
		if k == 0 {
			return p.c.T
		}
		return p.c.F
	}
	lits := make([]z.Lit, len(cells))
	for i, cell := range cells {
		lits[i] = p.vars[cell]
	}
	cs := p.c.CardSort(lits)
	return p.c.And(cs.Leq(k), cs.Geq(k))
}

// solver loads the circuit with the observations asserted.
func (p *problem) solver() *gini.Gini {
	g := gini.New()
	p.c.ToCnf(g)
	g.Add(p.root)
	g.Add(z.LitNull)
	return g
}

func sat(g *gini.Gini, assumptions ...z.Lit) bool {
	g.Assume(assumptions...)
	return g.Solve() == 1
}

// Check verifies that the observations are satisfiable and that every mine,
// safe, and sentence held by v follows from them.
func (o *Oracle) Check(v View) error {
	p := o.encode()

	sentences := v.Sentences()
	claims := make([]z.Lit, len(sentences))
	for i := range sentences {
		claims[i] = p.exactly(sentences[i].Cells(), sentences[i].Count())
	}

	g := p.solver()
	if !sat(g) {
		return fmt.Errorf("observations unsatisfiable: %w", internalerr.ErrContradiction)
	}
	for _, m := range v.Mines().Sorted() {
		if sat(g, p.vars[m].Not()) {
			return fmt.Errorf("mine %v not entailed: %w", m, internalerr.ErrContradiction)
		}
	}
	for _, s := range v.Safes().Sorted() {
		if sat(g, p.vars[s]) {
			return fmt.Errorf("safe %v not entailed: %w", s, internalerr.ErrContradiction)
		}
	}
	for i := range sentences {
		if sat(g, claims[i].Not()) {
			return fmt.Errorf("sentence %v not entailed: %w", sentences[i].String(), internalerr.ErrContradiction)
		}
	}
	return nil
}

// Forced reports whether the observations pin c down.
func (o *Oracle) Forced(c grid.Cell) (Verdict, error) {
	if !o.grid.Contains(c) {
		return Unknown, fmt.Errorf("cell %v: %w", c, internalerr.ErrInvalidInput)
	}
	p := o.encode()
	g := p.solver()

	canMine := sat(g, p.vars[c])
	canSafe := sat(g, p.vars[c].Not())
	switch {
	case !canMine && !canSafe:
		return Unknown, fmt.Errorf("observations unsatisfiable: %w", internalerr.ErrContradiction)
	case !canMine:
		return Safe, nil
	case !canSafe:
		return Mine, nil
	default:
		return Unknown, nil
	}
}
