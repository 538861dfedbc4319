package sweeper

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sweeper/pkg/sweeper/grid"
	"github.com/cognicore/sweeper/pkg/sweeper/policy"
)

func TestAgentPlaysFromKnowledge(t *testing.T) {
	a := New(grid.Grid{Height: 3, Width: 3}, rand.New(rand.NewPCG(1, 2)))

	_, ok := a.MakeSafeMove()
	assert.False(t, ok, "nothing is known yet")

	m, ok := a.NextMove()
	require.True(t, ok)
	assert.Equal(t, policy.Random, m.Kind)

	require.NoError(t, a.AddKnowledge(grid.C(1, 1), 0))
	assert.Equal(t, 9, a.Safes().Len())
	assert.Zero(t, a.Mines().Len())
	assert.True(t, a.MovesMade().Has(grid.C(1, 1)))

	c, ok := a.MakeSafeMove()
	require.True(t, ok)
	assert.Equal(t, grid.C(0, 0), c)

	r, ok := a.MakeRandomMove()
	require.True(t, ok)
	assert.NotEqual(t, grid.C(1, 1), r)
	assert.Same(t, a.Knowledge(), a.Knowledge())
}

func TestAgentFlagsMine(t *testing.T) {
	a := New(grid.Grid{Height: 1, Width: 2}, nil)
	require.NoError(t, a.AddKnowledge(grid.C(0, 0), 1))
	assert.True(t, a.Mines().Equal(grid.NewSet(grid.C(0, 1))))

	_, ok := a.NextMove()
	assert.False(t, ok, "the only unprobed cell is a known mine")
}
