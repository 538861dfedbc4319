package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sweeper/pkg/sweeper/config"
	"github.com/cognicore/sweeper/pkg/sweeper/game"
	"github.com/cognicore/sweeper/pkg/sweeper/store"
	"github.com/cognicore/sweeper/pkg/sweeper/store/memstore"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "text")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "debug", "json").Debug("move", "count", 2)
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"count":2`)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, config.Default(), game.Result{ID: "01ABC", Outcome: game.Won, Moves: 5, SafeMoves: 4, RandomMoves: 1, MinesFlagged: 8, Duration: time.Millisecond})
	out := buf.String()
	assert.Contains(t, out, "01ABC")
	assert.Contains(t, out, "won")
	assert.Contains(t, out, "5 (4 safe, 1 random)")
}

func TestPrintStats(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.SaveGame(ctx, store.GameRecord{ID: "A", Height: 8, Width: 8, Mines: 8, Seed: 3, Outcome: "won", Moves: 50, MinesFlagged: 8}))
	require.NoError(t, st.SaveGame(ctx, store.GameRecord{ID: "B", Height: 8, Width: 8, Mines: 8, Seed: 4, Outcome: "lost", Moves: 2}))

	var buf bytes.Buffer
	require.NoError(t, printStats(ctx, &buf, st, 10))
	out := buf.String()
	assert.Contains(t, out, "games 2  won 1  lost 1")
	assert.Contains(t, out, "win rate 50.0%")
	assert.Contains(t, out, "8x8/8")
	assert.Less(t, strings.Index(out, "B "), strings.Index(out, "A "), "newest first")
}

func TestPlayCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"play", "--height", "5", "--width", "5", "--mines", "3", "--seed", "7", "--verify"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "5x5, 3 mines, seed 7")
	assert.Contains(t, out.String(), "outcome")
}

func TestPlayCommandRejectsBadBoard(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"play", "--height", "2", "--width", "2", "--mines", "5"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}
