// Package sweeper is the minesweeper agent: a knowledge base that infers
// mines and safes from revealed counts, plus a policy that turns that
// knowledge into moves.
package sweeper

import (
	"math/rand/v2"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/knowledge"
	"github.com/cognicore/sweeper/pkg/sweeper/policy"
)

// Agent is the player facade used by the game loop
type Agent struct {
	kb     *knowledge.Base
	policy *policy.Policy
}

// New creates an agent for a board of the given dimensions
func New(g grid.Grid, rng *rand.Rand, opts ...knowledge.Option) *Agent {
	kb := knowledge.New(g, opts...)
	return &Agent{
		kb:     kb,
		policy: policy.New(kb, rng),
	}
}

// AddKnowledge tells the agent that cell is safe and has count neighboring mines
func (a *Agent) AddKnowledge(cell grid.Cell, count int) error {
	return a.kb.AddKnowledge(cell, count)
}

// MakeSafeMove returns a proven-safe unprobed cell, if one is known
func (a *Agent) MakeSafeMove() (grid.Cell, bool) {
	return a.policy.SafeMove()
}

// MakeRandomMove returns a uniformly chosen unprobed cell not known to be a mine
func (a *Agent) MakeRandomMove() (grid.Cell, bool) {
	return a.policy.RandomMove()
}

// NextMove prefers a safe move over a random one
func (a *Agent) NextMove() (policy.Move, bool) {
	return a.policy.Next()
}

func (a *Agent) Mines() grid.Set     { return a.kb.Mines() }
func (a *Agent) Safes() grid.Set     { return a.kb.Safes() }
func (a *Agent) MovesMade() grid.Set { return a.kb.MovesMade() }

// Knowledge exposes the underlying knowledge base for inspection
func (a *Agent) Knowledge() *knowledge.Base { return a.kb }
